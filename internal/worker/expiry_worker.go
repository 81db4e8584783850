package worker

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Ayushant/skillspan-hub/internal/config"
	"github.com/Ayushant/skillspan-hub/internal/service"
)

const (
	sweepInterval        = 15 * time.Second
	licenseSweepInterval = 10 * time.Minute
	sweepLimit           = 200
)

// ExpiryWorker is the server-side deadline authority. It periodically sweeps
// for active sessions whose countdown has run out and queues them for
// grading, so a closed laptop lid never leaves a session active forever. A
// slower second sweep retires universities whose license window has lapsed.
type ExpiryWorker struct {
	sessionService    *service.SessionService
	universityService *service.UniversityService
	rdb               *redis.Client
	log               zerolog.Logger
}

// NewExpiryWorker creates a new ExpiryWorker.
func NewExpiryWorker(sessionService *service.SessionService, universityService *service.UniversityService, rdb *redis.Client, log zerolog.Logger) *ExpiryWorker {
	return &ExpiryWorker{
		sessionService:    sessionService,
		universityService: universityService,
		rdb:               rdb,
		log:               log.With().Str("component", "expiry_worker").Logger(),
	}
}

// Start begins the sweep loops. Call in a goroutine.
func (w *ExpiryWorker) Start(ctx context.Context) {
	w.log.Info().Msg("Worker started")

	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	licenseTicker := time.NewTicker(licenseSweepInterval)
	defer licenseTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopped")
			return
		case <-ticker.C:
			w.sweep(ctx)
		case <-licenseTicker.C:
			w.sweepLicenses(ctx)
		}
	}
}

func (w *ExpiryWorker) sweepLicenses(ctx context.Context) {
	expired, err := w.universityService.ExpireOverdue(ctx)
	if err != nil {
		w.log.Error().Err(err).Msg("License sweep failed")
		return
	}
	if expired > 0 {
		w.log.Info().Int64("expired", expired).Msg("Universities past their license window retired")
	}
}

func (w *ExpiryWorker) sweep(ctx context.Context) {
	overdue, err := w.sessionService.ListOverdue(ctx, sweepLimit)
	if err != nil {
		w.log.Error().Err(err).Msg("Sweep query failed")
		return
	}
	if len(overdue) == 0 {
		return
	}

	queued := 0
	for _, session := range overdue {
		if err := w.rdb.RPush(ctx, config.WorkerKey.PersistScoresQueue, session.ID.String()).Err(); err != nil {
			w.log.Error().Err(err).Str("session_id", session.ID.String()).Msg("Queue overdue session failed")
			continue
		}
		queued++
	}

	w.log.Info().Int("queued", queued).Msg("Overdue sessions queued for grading")
}
