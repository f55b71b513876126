package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hszk-dev/tvcast/internal/api/handler"
	"github.com/hszk-dev/tvcast/internal/api/middleware"
	"github.com/hszk-dev/tvcast/internal/catalog"
	"github.com/hszk-dev/tvcast/internal/config"
	"github.com/hszk-dev/tvcast/internal/domain/repository"
	"github.com/hszk-dev/tvcast/internal/infrastructure/cache"
	"github.com/hszk-dev/tvcast/internal/infrastructure/jsonfile"
	"github.com/hszk-dev/tvcast/internal/infrastructure/postgres"
	"github.com/hszk-dev/tvcast/internal/retry"
	"github.com/hszk-dev/tvcast/internal/schedule"
	"github.com/hszk-dev/tvcast/internal/usecase"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	ctx := context.Background()

	repo, cleanup, err := newChannelRepository(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	windowMode, err := schedule.ParseMode(cfg.Guide.WindowMode)
	if err != nil {
		return fmt.Errorf("invalid schedule window mode: %w", err)
	}

	client := catalog.NewClient(catalog.ClientConfig{
		APIKey:  cfg.YouTube.APIKey,
		BaseURL: cfg.YouTube.BaseURL,
		Timeout: cfg.YouTube.Timeout,
	})
	cachedCatalog := usecase.NewCachedCatalog(
		client,
		cache.NewMemory(cfg.Cache.Capacity, cfg.Cache.TTL),
		retry.Policy{
			MaxRetries:    cfg.Retry.MaxRetries,
			BaseDelay:     cfg.Retry.BaseDelay,
			BackoffFactor: cfg.Retry.BackoffFactor,
		},
	)

	guideSvc := usecase.NewGuideService(repo, cachedCatalog, usecase.GuideServiceConfig{
		PerSourceLimit: cfg.Guide.PerSourceLimit,
		MaxItems:       cfg.Guide.MaxItems,
		ScheduleItems:  cfg.Guide.ScheduleItems,
		WindowMode:     windowMode,
		SlotMinutes:    cfg.Guide.SlotMinutes,
		FetchParallel:  cfg.Guide.FetchParallel,
	}, logger)
	channelSvc := usecase.NewChannelService(repo)

	r := setupRouter(logger, handler.NewChannelHandler(channelSvc, guideSvc))

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server",
			slog.Int("port", cfg.Server.Port),
			slog.String("store_backend", cfg.Store.Backend),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("server error: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutting down server", slog.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

func newChannelRepository(ctx context.Context, cfg *config.Config, logger *slog.Logger) (repository.ChannelRepository, func(), error) {
	switch cfg.Store.Backend {
	case "file":
		logger.Info("using file channel store", slog.String("path", cfg.Store.DataFile))
		return jsonfile.NewChannelRepository(cfg.Store.DataFile), func() {}, nil
	case "postgres":
		client, err := postgres.NewClient(ctx, postgres.DefaultClientConfig(cfg.Database.DSN()))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		logger.Info("using postgres channel store", slog.String("host", cfg.Database.Host))
		return postgres.NewChannelRepository(client.Pool()), client.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

func setupRouter(logger *slog.Logger, channels *handler.ChannelHandler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))

	r.Get("/health", handler.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/guide", channels.Guide)
		r.Route("/channels", func(r chi.Router) {
			r.Get("/", channels.List)
			r.Post("/", channels.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", channels.Get)
				r.Put("/", channels.Update)
				r.Delete("/", channels.Delete)
				r.Get("/schedule", channels.Schedule)
				r.Get("/videos", channels.Videos)
			})
		})
	})

	return r
}
