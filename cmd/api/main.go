package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Ahmadreza-Avandi/mami-land/internal/cache"
	"github.com/Ahmadreza-Avandi/mami-land/internal/config"
	"github.com/Ahmadreza-Avandi/mami-land/internal/database"
	"github.com/Ahmadreza-Avandi/mami-land/internal/handlers"
	"github.com/Ahmadreza-Avandi/mami-land/internal/jobs"
	"github.com/Ahmadreza-Avandi/mami-land/internal/log"
	"github.com/Ahmadreza-Avandi/mami-land/internal/repository"
	"github.com/Ahmadreza-Avandi/mami-land/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment)

	ctx := context.Background()

	dbPool, err := database.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect postgres")
	}

	if err := database.EnsureSchema(ctx, dbPool); err != nil {
		logger.Fatal().Err(err).Msg("failed to ensure schema")
	}

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		// Redis only backs rate limiting, so a missing instance
		// degrades the service rather than killing it.
		logger.Warn().Err(err).Msg("redis unavailable, rate limiting disabled")
		redisClient = nil
	}

	handlerSet := handlers.NewHandlerSet(logger, dbPool, redisClient, cfg)

	if err := handlerSet.AuthService().EnsureBootstrapAdmin(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to bootstrap admin account")
	}

	httpServer := server.NewHTTPServer(cfg, logger, handlerSet)

	scheduler := jobs.NewScheduler(repository.NewAccessCodeRepository(dbPool), logger)
	if err := scheduler.Start(); err != nil {
		logger.Error().Err(err).Msg("scheduler start failed")
	}

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	waitForShutdown(logger, httpServer, scheduler, dbPool, redisClient)
}

func waitForShutdown(logger zerolog.Logger, srv *server.HTTPServer, scheduler *jobs.Scheduler, db *pgxpool.Pool, redisClient *redis.Client) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
		if err := srv.Shutdown(context.Background()); err != nil {
			logger.Error().Err(err).Msg("forced shutdown failed")
		}
	}

	scheduler.Stop()

	db.Close()
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("redis close error")
		}
	}

	logger.Info().Msg("server exited cleanly")
}
