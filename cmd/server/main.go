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

	"github.com/personal-system/personal-backend/internal/cache"
	"github.com/personal-system/personal-backend/internal/config"
	"github.com/personal-system/personal-backend/internal/database"
	"github.com/personal-system/personal-backend/internal/handler"
	"github.com/personal-system/personal-backend/internal/logger"
	"github.com/personal-system/personal-backend/internal/middleware"
	"github.com/personal-system/personal-backend/internal/repository"
	"github.com/personal-system/personal-backend/internal/router"
	"github.com/personal-system/personal-backend/internal/service"
	"github.com/personal-system/personal-backend/internal/validator"
	"github.com/personal-system/personal-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		boot := logger.Bootstrap(os.Stderr)
		boot.Fatal().Err(err).Msg("Invalid configuration")
	}

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Str("timezone", cfg.Timezone).
		Msg("Starting Personal Backend")

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

	// ─── Connect to Redis (optional) ───────────────────────────────────
	// Without Redis the KPIs are computed on every request and the
	// finance stream is not served.
	var (
		kpiCache    service.KPICache
		publisher   service.EventPublisher
		financeFeed handler.FinanceFeed
	)
	healthChecks := map[string]handler.HealthCheck{"database": pool.Ping}

	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, running without KPI cache and finance stream")
	} else {
		defer rdb.Close()
		fc := cache.NewFinanceCache(rdb, cfg.KPICacheTTL)
		kpiCache, publisher, financeFeed = fc, fc, fc
		healthChecks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	// ─── Initialize Repositories ───────────────────────────────────────
	studentRepo := repository.NewStudentRepository(pool)
	planRepo := repository.NewPlanRepository(pool)
	sessionRepo := repository.NewSessionRepository(pool)
	paymentRepo := repository.NewPaymentRepository(pool)
	trainerRepo := repository.NewTrainerRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	now := service.NewClock(cfg.Location())

	authService := service.NewAuthService(cfg, trainerRepo, log)
	studentService := service.NewStudentService(studentRepo, paymentRepo, sessionRepo, kpiCache, now, log)
	planService := service.NewPlanService(planRepo, studentRepo, now, log)
	sessionService := service.NewSessionService(sessionRepo, studentRepo, planRepo, paymentRepo, now, log)
	paymentService := service.NewPaymentService(paymentRepo, studentRepo, kpiCache, publisher, now, log)
	financeService := service.NewFinanceService(paymentRepo, studentRepo, kpiCache, now, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:    handler.NewAuthHandler(authService),
		Student: handler.NewStudentHandler(studentService, planService),
		Plan:    handler.NewPlanHandler(planService),
		Session: handler.NewSessionHandler(sessionService),
		Payment: handler.NewPaymentHandler(paymentService, financeService),
		Health:  handler.NewHealthHandler(healthChecks),
	}
	if financeFeed != nil {
		handlers.FinanceStream = handler.NewFinanceStreamHandler(financeFeed, financeService, cfg.AllowedOrigins, log)
	}

	// ─── Start Background Workers ─────────────────────────────────────
	if financeFeed != nil {
		go worker.NewKPIWarmer(financeFeed, financeService, log).Start(ctx)
	}

	// Rate limiter for the login route (10 attempts per minute per IP).
	loginLimiter := middleware.NewRateLimiter(ctx, 10, time.Minute)

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, loginLimiter, cfg, log)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
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
