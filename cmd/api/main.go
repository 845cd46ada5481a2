package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"matchday-backend/internal/api"
	"matchday-backend/internal/auth"
	"matchday-backend/internal/config"
	"matchday-backend/internal/db"
	"matchday-backend/internal/logger"
	"matchday-backend/internal/metrics"
	"matchday-backend/internal/middleware"
	"matchday-backend/internal/notify"
	"matchday-backend/internal/projection"
	"matchday-backend/internal/repository/postgres"
	"matchday-backend/internal/scheduler"
	"matchday-backend/internal/services"
	"matchday-backend/internal/worker"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	if os.Getenv("APP_MIGRATE") == "true" {
		if err := db.RunMigrations(ctx, pool); err != nil {
			log.Error("migrations", "err", err)
			os.Exit(1)
		}
	}

	metrics.Init()

	clock := clockwork.NewRealClock()
	repos := postgres.NewRepositories(pool)
	wp := worker.NewPool(cfg.WorkerCount)
	defer wp.Stop()

	proj := projection.New(clock)
	loader := projection.NewLoader(repos.Users, repos.Matches, repos.Predictions, proj, log)
	if err := loader.LoadAll(ctx); err != nil {
		log.Error("initial projection load", "err", err)
		os.Exit(1)
	}

	listener := notify.NewListener(pool, log, loader.Handle)
	go func() {
		if err := listener.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error("notify listener", "err", err)
		}
	}()

	promoter := scheduler.NewPromoter(repos.Matches, clock, log, cfg.PromoteInterval)
	if err := promoter.Start(); err != nil {
		log.Error("promotion scheduler", "err", err)
		os.Exit(1)
	}
	defer promoter.Stop()

	tm := auth.NewTokenManager(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.AccessTTL, cfg.RefreshTTL)
	userSvc := services.NewUserService(repos.Users, tm)
	pickSvc := services.NewPredictionService(repos.Users, repos.Matches, repos.Predictions, proj, clock, log)
	scoringSvc := services.NewScoringService(repos.Scoring, repos.Users, repos.Matches, repos.Predictions, repos.AuditLogs, wp, clock, log)

	r := api.NewRouter(api.Deps{
		Cfg:     cfg,
		Users:   userSvc,
		Picks:   pickSvc,
		Scoring: scoringSvc,
		Proj:    proj,
		AuthMW:  middleware.NewAuthMiddleware(tm),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server", "err", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
