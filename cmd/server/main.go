package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/canteenlab/jukebox/internal/api"
	"github.com/canteenlab/jukebox/internal/config"
	"github.com/canteenlab/jukebox/internal/db"
	"github.com/canteenlab/jukebox/internal/hub"
	"github.com/canteenlab/jukebox/internal/metrics"
	"github.com/canteenlab/jukebox/internal/ratelimiter"
	"github.com/canteenlab/jukebox/internal/repository"
	"github.com/canteenlab/jukebox/internal/service"
	"github.com/canteenlab/jukebox/internal/worker"
	"github.com/canteenlab/jukebox/internal/youtube"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync() //nolint:errcheck

	// ---- configuration ----
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	// ---- database ----
	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err := db.Migrate(cfg.DatabaseURL); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}
	logger.Info("database migrations applied")

	// ---- core dependencies ----
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	meta, err := youtube.NewClient(ctx, youtube.Options{
		APIKey:           cfg.YouTubeAPIKey,
		QPS:              cfg.YouTubeQPS,
		MaxSearchResults: cfg.SearchMaxResults,
		OnCall:           m.PlatformHook(),
	})
	if err != nil {
		logger.Fatal("failed to create video platform client", zap.Error(err))
	}

	limiter := ratelimiter.New(cfg.RateLimitWindow, cfg.RateLimitMax)

	onDelivered, onDropped, onLive := m.HubHooks()
	broadcast := hub.New(cfg.HubMaxConnections, cfg.BroadcastTimeout, logger, hub.MetricHooks{
		OnDelivered: onDelivered,
		OnDropped:   onDropped,
		OnLive:      onLive,
	})

	repo := repository.NewPgTrackRepository(pool)
	svc := service.NewQueueService(repo, meta, limiter, broadcast, cfg.MaxDurationSeconds, logger,
		service.MetricHooks{OnSubmit: m.SubmitHook()})

	// ---- background workers ----
	// Context for all background goroutines; cancelled on shutdown signal.
	workerCtx, cancelWorkers := context.WithCancel(ctx)
	defer cancelWorkers()

	sweeper := worker.NewSweeper(limiter, cfg.RateSweepInterval, logger)
	go sweeper.Run(workerCtx)

	// ---- HTTP server ----
	router := api.NewRouter(svc, broadcast, reg, logger)
	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start server in a goroutine so it does not block the shutdown listener.
	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// ---- graceful shutdown ----
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutdown signal received")

	// 1. Stop accepting new HTTP requests.
	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	// 2. Stop background workers.
	cancelWorkers()

	// 3. Tear down live connections so clients reconnect elsewhere.
	broadcast.Close()

	logger.Info("server stopped cleanly")
}
