package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	httpHandlers "github.com/gatekit/ratelimit/internal/adapters/http/handlers"
	httpMiddleware "github.com/gatekit/ratelimit/internal/adapters/http/middleware"
	"github.com/gatekit/ratelimit/internal/adapters/sink/logsink"
	memorystorage "github.com/gatekit/ratelimit/internal/adapters/storage/memory"
	redisstorage "github.com/gatekit/ratelimit/internal/adapters/storage/redis"
	"github.com/gatekit/ratelimit/internal/config"
	"github.com/gatekit/ratelimit/internal/core/ports"
	"github.com/gatekit/ratelimit/internal/core/services"
	"github.com/gatekit/ratelimit/internal/observability"
)

func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	if level, err := zerolog.ParseLevel(cfg.Log.Level); err == nil {
		logger = logger.Level(level)
	} else {
		logger.Warn().Str("level", cfg.Log.Level).Msg("unknown log level, keeping info")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.Init(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init tracing")
	}

	storage, closeFn, err := initStorage(cfg.Storage, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init storage")
	}
	defer closeFn()

	limiter, err := services.NewService(storage, logsink.New(logger))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create limiter")
	}

	composite, err := services.NewComposite(limiter, cfg.RateLimit.Burst, cfg.RateLimit.Sustained)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create composite limiter")
	}

	authLimit, err := httpMiddleware.NewRateLimit(limiter, cfg.RateLimit.Auth)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create auth middleware")
	}
	apiLimit, err := httpMiddleware.NewRateLimit(limiter, cfg.RateLimit.API)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create api middleware")
	}
	publicLimit := httpMiddleware.NewRateLimitFunc(composite.Check)

	r := chi.NewRouter()
	r.Use(httpMiddleware.WithRequestContext(logger))

	r.Group(func(r chi.Router) {
		r.Use(publicLimit)
		r.Get("/ping", httpHandlers.Ping)
	})
	r.Route("/auth", func(r chi.Router) {
		r.Use(authLimit)
		r.Post("/login", httpHandlers.Login)
	})
	r.Route("/api", func(r chi.Router) {
		r.Use(apiLimit)
		r.Get("/quote", httpHandlers.Quote)
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("port", cfg.Server.Port).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server error")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("tracing shutdown failed")
	}
}

func initStorage(cfg config.StorageConfig, logger zerolog.Logger) (ports.Store, func(), error) {
	switch cfg.Type {
	case "redis":
		storage, err := redisstorage.New(redisstorage.Config{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, nil, err
		}
		return storage, func() {
			if err := storage.Close(); err != nil {
				logger.Error().Err(err).Msg("failed to close redis storage")
			}
		}, nil
	case "memory":
		storage := memorystorage.New()
		return storage, func() {
			_ = storage.Close()
		}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}
