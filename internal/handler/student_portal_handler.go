package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Ayushant/skillspan-hub/internal/middleware"
	"github.com/Ayushant/skillspan-hub/internal/model"
	"github.com/Ayushant/skillspan-hub/internal/response"
	"github.com/Ayushant/skillspan-hub/internal/service"
	"github.com/Ayushant/skillspan-hub/internal/validator"
)

// StudentPortalHandler handles the student-facing quiz endpoints.
type StudentPortalHandler struct {
	sessionService   *service.SessionService
	dashboardService *service.DashboardService
}

// NewStudentPortalHandler creates a new StudentPortalHandler.
func NewStudentPortalHandler(sessionService *service.SessionService, dashboardService *service.DashboardService) *StudentPortalHandler {
	return &StudentPortalHandler{sessionService: sessionService, dashboardService: dashboardService}
}

// GetDashboard godoc
// GET /api/v1/student/dashboard
// Returns the student's current session, history, and aggregate stats.
func (h *StudentPortalHandler) GetDashboard(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	dashboard, err := h.dashboardService.GetStudentDashboard(c.Request.Context(), principal.ID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, dashboard)
}

// GetSession godoc
// GET /api/v1/student/session
// Returns the student's open session, if any.
func (h *StudentPortalHandler) GetSession(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	session, err := h.sessionService.GetCurrent(c.Request.Context(), principal.ID)
	if err != nil {
		if errors.Is(err, service.ErrNoSession) {
			response.Fail(c, http.StatusNotFound, response.ErrNoSession)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": session})
}

// StartSession godoc
// POST /api/v1/student/session/start
// Starts the countdown. The start timestamp is stamped server-side; calling
// start again returns a conflict.
func (h *StudentPortalHandler) StartSession(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	session, err := h.sessionService.Start(c.Request.Context(), principal.ID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoSession):
			response.Fail(c, http.StatusNotFound, response.ErrNoSession)
		case errors.Is(err, service.ErrAlreadyStarted):
			response.Fail(c, http.StatusConflict, response.ErrSessionTerminal)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": session})
}

// GetQuestions godoc
// GET /api/v1/student/session/questions
// Returns the question set with correct answers stripped. Only available
// while the session is active.
func (h *StudentPortalHandler) GetQuestions(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	questions, err := h.sessionService.GetQuestions(c.Request.Context(), principal.ID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoSession):
			response.Fail(c, http.StatusNotFound, response.ErrNoSession)
		case errors.Is(err, service.ErrSessionNotActive):
			response.Fail(c, http.StatusConflict, response.ErrSessionNotActive)
		case errors.Is(err, service.ErrQuestionSetEmpty):
			response.Fail(c, http.StatusNotFound, response.ErrQuestionSetMissing)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"questions": questions})
}

// GetState godoc
// GET /api/v1/student/session/state
// Rehydrates a reconnecting client: status, server-side remaining time,
// autosaved answers, and review flags.
func (h *StudentPortalHandler) GetState(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	state, err := h.sessionService.GetState(c.Request.Context(), principal.ID)
	if err != nil {
		if errors.Is(err, service.ErrNoSession) {
			response.Fail(c, http.StatusNotFound, response.ErrNoSession)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, state)
}

// RecordAnswer godoc
// PUT /api/v1/student/session/answers
// Records the selected option for one question, last-write-wins.
func (h *StudentPortalHandler) RecordAnswer(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.RecordAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	err := h.sessionService.RecordSelection(c.Request.Context(), principal.ID, req.QuestionID, model.AnswerOption(req.SelectedAnswer))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoSession):
			response.Fail(c, http.StatusNotFound, response.ErrNoSession)
		case errors.Is(err, service.ErrSessionNotActive):
			response.Fail(c, http.StatusConflict, response.ErrSessionNotActive)
		case errors.Is(err, service.ErrInvalidOption):
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidOption)
		case errors.Is(err, service.ErrUnknownQuestion):
			response.Fail(c, http.StatusBadRequest, response.ErrUnknownQuestion)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"status": "saved"})
}

// ToggleReview godoc
// POST /api/v1/student/session/answers/:question_id/review
// Flips the review flag on one question.
func (h *StudentPortalHandler) ToggleReview(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	questionID, err := uuid.Parse(c.Param("question_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	marked, err := h.sessionService.ToggleReview(c.Request.Context(), principal.ID, questionID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoSession):
			response.Fail(c, http.StatusNotFound, response.ErrNoSession)
		case errors.Is(err, service.ErrSessionNotActive):
			response.Fail(c, http.StatusConflict, response.ErrSessionNotActive)
		case errors.Is(err, service.ErrUnknownQuestion):
			response.Fail(c, http.StatusBadRequest, response.ErrUnknownQuestion)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"marked_for_review": marked})
}

// SubmitSession godoc
// POST /api/v1/student/session/submit
// Finishes the session and returns the graded result. A repeated submit
// returns the already-recorded result unchanged.
func (h *StudentPortalHandler) SubmitSession(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	session, err := h.sessionService.Submit(c.Request.Context(), principal.ID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoSession):
			response.Fail(c, http.StatusNotFound, response.ErrNoSession)
		case errors.Is(err, service.ErrSessionNotActive):
			response.Fail(c, http.StatusConflict, response.ErrSessionNotStarted)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": session})
}
