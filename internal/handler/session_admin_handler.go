package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Ayushant/skillspan-hub/internal/config"
	"github.com/Ayushant/skillspan-hub/internal/model"
	"github.com/Ayushant/skillspan-hub/internal/repository"
	"github.com/Ayushant/skillspan-hub/internal/response"
	"github.com/Ayushant/skillspan-hub/internal/service"
)

const monitorKeepAlive = 30 * time.Second

// SessionAdminHandler handles university-admin session control: granting,
// force-stopping, listing results, and the live monitor stream.
type SessionAdminHandler struct {
	sessionService *service.SessionService
	licenseService *service.LicenseService
	rdb            *redis.Client
	cfg            *config.Config
	log            zerolog.Logger
}

// NewSessionAdminHandler creates a new SessionAdminHandler.
func NewSessionAdminHandler(sessionService *service.SessionService, licenseService *service.LicenseService, rdb *redis.Client, cfg *config.Config, log zerolog.Logger) *SessionAdminHandler {
	return &SessionAdminHandler{
		sessionService: sessionService,
		licenseService: licenseService,
		rdb:            rdb,
		cfg:            cfg,
		log:            log.With().Str("component", "session_admin_handler").Logger(),
	}
}

// GrantAll godoc
// POST /api/v1/admin/sessions/grant-all
// Creates not_started sessions for every licensed student of the university.
// Students already holding an open session are skipped.
func (h *SessionAdminHandler) GrantAll(c *gin.Context) {
	_, universityID, ok := adminUniversity(c)
	if !ok {
		return
	}

	granted, err := h.sessionService.GrantAll(c.Request.Context(), universityID, h.cfg.QuizDurationMinutes)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"granted": granted})
}

// GrantSession godoc
// POST /api/v1/admin/students/:id/grant-session
// Grants a fresh attempt to a single student, e.g. a retake after a force
// stop. Rejected while the student still holds an open session.
func (h *SessionAdminHandler) GrantSession(c *gin.Context) {
	_, universityID, ok := adminUniversity(c)
	if !ok {
		return
	}

	studentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	license, err := h.licenseService.StudentLicense(c.Request.Context(), universityID, studentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if !license.IsActive {
		response.Fail(c, http.StatusConflict, response.ErrConflict)
		return
	}

	session, err := h.sessionService.Grant(c.Request.Context(), studentID, universityID, h.cfg.QuizDurationMinutes)
	if err != nil {
		if errors.Is(err, service.ErrAlreadyGranted) {
			response.Fail(c, http.StatusConflict, response.ErrConflict)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"session": session})
}

// StopAll godoc
// POST /api/v1/admin/sessions/stop-all
// Force-stops every active session of the university. Each session completes
// with a score computed from its recorded answers.
func (h *SessionAdminHandler) StopAll(c *gin.Context) {
	_, universityID, ok := adminUniversity(c)
	if !ok {
		return
	}

	stopped, err := h.sessionService.StopAll(c.Request.Context(), universityID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"stopped": stopped})
}

// StopSession godoc
// POST /api/v1/admin/sessions/:id/stop
// Force-stops a single active session.
func (h *SessionAdminHandler) StopSession(c *gin.Context) {
	principal, _, ok := adminUniversity(c)
	if !ok {
		return
	}

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	// Ownership check before any transition.
	session, err := h.sessionService.GetSession(c.Request.Context(), sessionID)
	if err != nil {
		if errors.Is(err, service.ErrNoSession) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if !principal.CanManageUniversity(session.UniversityID) {
		response.Fail(c, http.StatusForbidden, response.ErrWrongUniversity)
		return
	}

	stopped, changed, err := h.sessionService.ForceStop(c.Request.Context(), sessionID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if !changed {
		response.Fail(c, http.StatusConflict, response.ErrSessionNotActive)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": stopped})
}

// ListSessions godoc
// GET /api/v1/admin/sessions
// Lists the university's sessions with student identities, optionally
// filtered by status, paginated.
func (h *SessionAdminHandler) ListSessions(c *gin.Context) {
	_, universityID, ok := adminUniversity(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	var status *model.SessionStatus
	if raw := c.Query("status"); raw != "" {
		s := model.SessionStatus(raw)
		switch s {
		case model.SessionStatusNotStarted, model.SessionStatusActive,
			model.SessionStatusCompleted, model.SessionStatusExpired:
			status = &s
		default:
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
			return
		}
	}

	sessions, total, err := h.sessionService.ListByUniversity(c.Request.Context(), universityID, status, page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"sessions": sessions},
		response.NewPagination(page, perPage, int(total)))
}

// MonitorSSE godoc
// GET /api/v1/admin/sessions/monitor
// Streams live session events for the university over Server-Sent Events:
// an initial snapshot, then every start/submit/stop/expire as it happens.
func (h *SessionAdminHandler) MonitorSSE(c *gin.Context) {
	_, universityID, ok := adminUniversity(c)
	if !ok {
		return
	}

	reqCtx := c.Request.Context()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	// Initial snapshot: all non-terminal plus the recent completed rows.
	sessions, _, err := h.sessionService.ListByUniversity(reqCtx, universityID, nil, 1, 100)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	c.SSEvent("message", gin.H{"type": "snapshot", "sessions": sessions})
	c.Writer.Flush()

	channelName := config.CacheKey.SessionMonitorChannel(universityID.String())
	pubsub := h.rdb.Subscribe(reqCtx, channelName)
	defer pubsub.Close()
	ch := pubsub.Channel()

	keepAlive := time.NewTicker(monitorKeepAlive)
	defer keepAlive.Stop()

	pingPayload, _ := json.Marshal(map[string]string{"type": "ping"})

	h.log.Info().Str("university_id", universityID.String()).Msg("Admin attached to live monitor SSE")

	for {
		select {
		case <-reqCtx.Done():
			h.log.Info().Str("university_id", universityID.String()).Msg("Admin disconnected from live monitor SSE")
			return

		case msg := <-ch:
			// Forward raw JSON directly, no deserialization needed.
			c.Writer.Write([]byte("data: "))
			c.Writer.Write([]byte(msg.Payload))
			c.Writer.Write([]byte("\n\n"))
			c.Writer.Flush()

		case <-keepAlive.C:
			c.Writer.Write([]byte("data: "))
			c.Writer.Write(pingPayload)
			c.Writer.Write([]byte("\n\n"))
			c.Writer.Flush()
		}
	}
}
