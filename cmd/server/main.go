package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/Ayushant/skillspan-hub/internal/config"
	"github.com/Ayushant/skillspan-hub/internal/database"
	"github.com/Ayushant/skillspan-hub/internal/handler"
	"github.com/Ayushant/skillspan-hub/internal/logger"
	"github.com/Ayushant/skillspan-hub/internal/repository"
	"github.com/Ayushant/skillspan-hub/internal/router"
	"github.com/Ayushant/skillspan-hub/internal/service"
	"github.com/Ayushant/skillspan-hub/internal/validator"
	"github.com/Ayushant/skillspan-hub/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting SkillSpan Hub")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	profileRepo := repository.NewProfileRepository(pool)
	universityRepo := repository.NewUniversityRepository(pool)
	licenseRepo := repository.NewLicenseRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	sessionRepo := repository.NewSessionRepository(pool)
	answerRepo := repository.NewAnswerRepository(pool)
	dashboardRepo := repository.NewDashboardRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, rdb, profileRepo, universityRepo)
	quizService := service.NewQuizService(questionRepo, rdb)
	questionService := service.NewQuestionService(questionRepo, quizService)
	sessionService := service.NewSessionService(sessionRepo, answerRepo, quizService, rdb, log)
	licenseService := service.NewLicenseService(pool, licenseRepo, profileRepo, authService)
	universityService := service.NewUniversityService(pool, universityRepo, authService)
	dashboardService := service.NewDashboardService(dashboardRepo, sessionRepo)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:          handler.NewAuthHandler(authService),
		StudentPortal: handler.NewStudentPortalHandler(sessionService, dashboardService),
		StudentMgmt:   handler.NewStudentManagementHandler(licenseService, authService),
		SessionAdmin:  handler.NewSessionAdminHandler(sessionService, licenseService, rdb, cfg, log),
		University:    handler.NewUniversityHandler(universityService, licenseService),
		Question:      handler.NewQuestionHandler(questionService),
		Dashboard:     handler.NewDashboardHandler(dashboardService),
		System:        handler.NewSystemHandler(rdb, log),
		WS:            handler.NewWSHandler(sessionService, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	autosaveWorker := worker.NewAutosaveWorker(answerRepo, rdb, log)
	scoringWorker := worker.NewScoringWorker(sessionService, rdb, log)
	expiryWorker := worker.NewExpiryWorker(sessionService, universityService, rdb, log)

	go autosaveWorker.Start(workerCtx)
	go scoringWorker.Start(workerCtx)
	go expiryWorker.Start(workerCtx)

	// ─── Prewarm Redis Caches ─────────────────────────────────────────
	// Load the question set and answer key into Redis BEFORE accepting
	// traffic, so the first active session never races the lazy rebuild.
	if err := quizService.PrewarmCache(ctx); err != nil {
		log.Warn().Err(err).Msg("Cache prewarm failed")
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop background workers and wait for queues to drain.
	workerCancel()
	time.Sleep(2 * time.Second) // Allow workers to drain.

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
