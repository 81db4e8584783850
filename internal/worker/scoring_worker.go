package worker

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Ayushant/skillspan-hub/internal/config"
	"github.com/Ayushant/skillspan-hub/internal/model"
	"github.com/Ayushant/skillspan-hub/internal/service"
)

const scorePollTimeout = 1 * time.Second

// ScoringWorker consumes persist_scores_queue and expires the sessions the
// deadline sweep found, grading whatever answers were recorded. Sessions
// that turn out to be already terminal (the student submitted while the ID
// sat in the queue) are skipped: the guarded transition makes the race
// harmless.
type ScoringWorker struct {
	sessionService *service.SessionService
	rdb            *redis.Client
	log            zerolog.Logger
}

// NewScoringWorker creates a new ScoringWorker.
func NewScoringWorker(sessionService *service.SessionService, rdb *redis.Client, log zerolog.Logger) *ScoringWorker {
	return &ScoringWorker{
		sessionService: sessionService,
		rdb:            rdb,
		log:            log.With().Str("component", "scoring_worker").Logger(),
	}
}

// Start begins the infinite worker loop. Call in a goroutine.
func (w *ScoringWorker) Start(ctx context.Context) {
	w.log.Info().Msg("Worker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopped")
			return
		default:
			w.processNext(ctx)
		}
	}
}

func (w *ScoringWorker) processNext(ctx context.Context) {
	item, err := w.rdb.BLPop(ctx, scorePollTimeout, config.WorkerKey.PersistScoresQueue).Result()
	if err != nil {
		if err != redis.Nil && ctx.Err() == nil {
			w.log.Error().Err(err).Msg("BLPop error")
		}
		return
	}

	if len(item) < 2 {
		return
	}

	sessionID, err := uuid.Parse(item[1])
	if err != nil {
		w.log.Error().Err(err).Str("raw", item[1]).Msg("Invalid session ID in queue")
		return
	}

	if err := w.expire(ctx, sessionID); err != nil {
		w.log.Error().Err(err).Str("session_id", sessionID.String()).Msg("Expire error, requeueing")
		w.rdb.RPush(ctx, config.WorkerKey.PersistScoresQueue, item[1])
		time.Sleep(5 * time.Second)
	}
}

func (w *ScoringWorker) expire(ctx context.Context, sessionID uuid.UUID) error {
	session, err := w.sessionService.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, service.ErrNoSession) {
			return nil
		}
		return err
	}
	if session.Status != model.SessionStatusActive {
		return nil
	}

	changed, err := w.sessionService.Expire(ctx, session)
	if err != nil {
		return err
	}
	if changed {
		w.log.Info().
			Str("session_id", sessionID.String()).
			Str("student_id", session.StudentID.String()).
			Msg("Session expired and graded")
	}
	return nil
}
