package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/Ayushant/skillspan-hub/internal/middleware"
	"github.com/Ayushant/skillspan-hub/internal/model"
	"github.com/Ayushant/skillspan-hub/internal/service"
	ws "github.com/Ayushant/skillspan-hub/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams the live quiz session: selections and review toggles in,
// the server countdown and grading results out.
type WSHandler struct {
	sessionService *service.SessionService
	log            zerolog.Logger
	upgrader       websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(sessionService *service.SessionService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		sessionService: sessionService,
		log:            log.With().Str("component", "ws_handler").Logger(),
		upgrader:       buildUpgrader(allowedOrigins),
	}
}

// SessionStream godoc
// WS /ws/v1/student/session/stream
// Upgrades to WebSocket for real-time answering and the once-per-second
// countdown. When the countdown hits zero the server submits on the
// student's behalf and pushes the graded result before closing.
func (h *WSHandler) SessionStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	studentID := claims.UserID

	rawConn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	conn := ws.Wrap(rawConn)
	defer conn.Close()

	session, err := h.sessionService.GetCurrent(c.Request.Context(), studentID)
	if err != nil || session.Status != model.SessionStatusActive {
		conn.WriteError("no active session")
		return
	}

	wsLog := h.log.With().
		Str("student_id", studentID.String()).
		Str("session_id", session.ID.String()).
		Logger()

	wsLog.Info().Msg("Student connected")

	streamCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.tickLoop(streamCtx, cancel, conn, wsLog, session, studentID)

	for {
		var msg ws.RequestPayload
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}

		switch msg.Action {
		case ws.ActionAnswer:
			h.handleAnswer(streamCtx, conn, studentID, &msg)
		case ws.ActionReview:
			h.handleReview(streamCtx, conn, studentID, &msg)
		case ws.ActionSubmit:
			h.handleSubmit(context.Background(), conn, wsLog, studentID)
			cancel()
			return
		case ws.ActionPing:
			conn.WriteTyped(ws.PongResponse{Event: ws.EventPong})
		default:
			wsLog.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
			conn.WriteError("unknown action: " + string(msg.Action))
		}
	}
}

// tickLoop pushes the server countdown every second. Zero triggers the
// automatic submit; the stream closes right after the graded event.
func (h *WSHandler) tickLoop(ctx context.Context, cancel context.CancelFunc, conn *ws.Conn, wsLog zerolog.Logger, session *model.QuizSession, studentID uuid.UUID) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			remaining, err := h.sessionService.Remaining(ctx, session)
			if err != nil {
				if ctx.Err() == nil {
					wsLog.Error().Err(err).Msg("Countdown read failed")
				}
				continue
			}

			if err := conn.WriteTyped(ws.TickResponse{
				Event:            ws.EventTick,
				RemainingSeconds: remaining.Seconds(),
			}); err != nil {
				cancel()
				return
			}

			if remaining == 0 {
				wsLog.Info().Msg("Time up, auto-submitting")
				h.handleSubmit(context.Background(), conn, wsLog, studentID)
				cancel()
				conn.Close()
				return
			}
		}
	}
}

func (h *WSHandler) handleAnswer(ctx context.Context, conn *ws.Conn, studentID uuid.UUID, msg *ws.RequestPayload) {
	if msg.QuestionID == "" || msg.Answer == "" {
		conn.WriteError("question_id and answer are required")
		return
	}

	questionID, err := uuid.Parse(msg.QuestionID)
	if err != nil {
		conn.WriteError("invalid question_id format")
		return
	}

	err = h.sessionService.RecordSelection(ctx, studentID, questionID, model.AnswerOption(msg.Answer))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidOption):
			conn.WriteError("answer must be one of A, B, C, D")
		case errors.Is(err, service.ErrUnknownQuestion):
			conn.WriteError("question is not part of the quiz")
		case errors.Is(err, service.ErrSessionNotActive), errors.Is(err, service.ErrNoSession):
			conn.WriteError("session is no longer active")
		default:
			h.log.Error().Err(err).Str("student_id", studentID.String()).Msg("Answer save error")
			conn.WriteError("save failed")
		}
		return
	}

	conn.WriteTyped(ws.SavedResponse{Event: ws.EventSaved, QuestionID: msg.QuestionID})
}

func (h *WSHandler) handleReview(ctx context.Context, conn *ws.Conn, studentID uuid.UUID, msg *ws.RequestPayload) {
	questionID, err := uuid.Parse(msg.QuestionID)
	if err != nil {
		conn.WriteError("invalid question_id format")
		return
	}

	marked, err := h.sessionService.ToggleReview(ctx, studentID, questionID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownQuestion):
			conn.WriteError("question is not part of the quiz")
		case errors.Is(err, service.ErrSessionNotActive), errors.Is(err, service.ErrNoSession):
			conn.WriteError("session is no longer active")
		default:
			conn.WriteError("review toggle failed")
		}
		return
	}

	conn.WriteTyped(ws.ReviewResponse{Event: ws.EventReview, QuestionID: msg.QuestionID, Marked: marked})
}

func (h *WSHandler) handleSubmit(ctx context.Context, conn *ws.Conn, wsLog zerolog.Logger, studentID uuid.UUID) {
	session, err := h.sessionService.Submit(ctx, studentID)
	if err != nil {
		wsLog.Error().Err(err).Msg("Submit error")
		conn.WriteError("submit failed")
		return
	}

	resp := ws.GradedResponse{Event: ws.EventGraded, Status: string(session.Status)}
	if session.Score != nil {
		resp.Score = *session.Score
	}
	if session.CorrectAnswers != nil {
		resp.CorrectAnswers = *session.CorrectAnswers
	}
	if session.TotalQuestions != nil {
		resp.TotalQuestions = *session.TotalQuestions
	}

	wsLog.Info().Int("score", resp.Score).Int("correct", resp.CorrectAnswers).Int("total", resp.TotalQuestions).Msg("Session submitted and graded")
	conn.WriteTyped(resp)
}
