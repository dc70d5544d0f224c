package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/stemsi/riskprofile-backend/internal/assessment"
	"github.com/stemsi/riskprofile-backend/internal/catalog"
	"github.com/stemsi/riskprofile-backend/internal/config"
	"github.com/stemsi/riskprofile-backend/internal/database"
	"github.com/stemsi/riskprofile-backend/internal/handler"
	"github.com/stemsi/riskprofile-backend/internal/logger"
	"github.com/stemsi/riskprofile-backend/internal/middleware"
	"github.com/stemsi/riskprofile-backend/internal/router"
	"github.com/stemsi/riskprofile-backend/internal/scoring"
	"github.com/stemsi/riskprofile-backend/internal/service"
	"github.com/stemsi/riskprofile-backend/internal/session"
	"github.com/stemsi/riskprofile-backend/internal/validator"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("storage", cfg.StorageDriver).
		Msg("Starting risk profile backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Load Question Catalog ─────────────────────────────────────────
	cat, err := catalog.LoadOrDefault(cfg.CatalogPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.CatalogPath).Msg("Failed to load question catalog")
	}
	pipeline, err := scoring.NewPipeline(cat, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build scoring pipeline")
	}
	bounds := pipeline.Bounds()
	log.Info().
		Int("questions", cat.Len()).
		Int("raw_min", bounds.Min).
		Int("raw_max", bounds.Max).
		Msg("Question catalog loaded")

	// ─── Connect to Durable Storage ────────────────────────────────────
	store, closeStore, err := database.OpenStore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open storage")
	}
	defer closeStore()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, rdb)
	userService := service.NewUserService(store, authService)
	assessmentService := service.NewAssessmentService(
		assessment.NewNavigator(cat),
		pipeline,
		session.NewRedisStore(rdb, cfg.SessionTTL),
		service.NewResultRecorder(store, log),
		log,
	)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:       handler.NewAuthHandler(authService, userService, log),
		Assessment: handler.NewAssessmentHandler(assessmentService, log),
		WS:         handler.NewWSHandler(assessmentService, authService, log, cfg.AllowedOrigins),
	}

	authLimiter := middleware.NewRateLimiter(cfg.AuthRateLimit, time.Minute)
	go authLimiter.Run(ctx)

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, authLimiter, handlers, cfg, log)

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// In-flight requests may still be recording results; let them finish.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}
	cancel()

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
