package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/caelus-deploy/caelus/pkg/app"
	"github.com/caelus-deploy/caelus/pkg/cache"
	"github.com/caelus-deploy/caelus/pkg/config"
	"github.com/caelus-deploy/caelus/pkg/database"
	"github.com/caelus-deploy/caelus/pkg/events"
	"github.com/caelus-deploy/caelus/pkg/logger"
	"github.com/caelus-deploy/caelus/pkg/telemetry"
)

// The worker consumes outbox events: catalog events keep the gateway's
// product cache coherent and reconcile requests run deployment jobs. It
// serves no HTTP.
func main() {
	cfg, err := config.Load()
	if errors.Is(err, config.ErrHelp) {
		return
	}
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg.ServiceName += "-worker"
	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("worker failed", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	log.Info("worker stopped")
}

func run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	tel, err := telemetry.Setup(ctx, cfg)
	if err != nil {
		return err
	}
	defer tel.Shutdown(context.WithoutCancel(ctx)) //nolint:errcheck

	if err := telemetry.SetupSentry(cfg); err != nil {
		log.Warn("failed to setup sentry, continuing without crash reporting", "error", err)
	}
	defer telemetry.SentryFlush()

	pool, err := database.NewPool(ctx, cfg.DatabaseURL, log)
	if err != nil {
		return err
	}
	defer pool.Close()
	log.Info("database pool connected")

	// Close waits up to 30s for in-flight handlers.
	eventBus, err := events.NewEventBus(cfg, log)
	if err != nil {
		return err
	}
	defer eventBus.Close() //nolint:errcheck

	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		return err
	}
	defer redisClient.Close() //nolint:errcheck
	log.Info("redis connected")

	a := &app.Application{
		Db:       pool,
		Logger:   log,
		EventBus: eventBus,
		Redis:    redisClient,
	}
	if err := registerSubscribers(ctx, a, workerID(cfg.ServiceName)); err != nil {
		return err
	}

	<-ctx.Done()
	log.Info("shutting down worker")
	return nil
}

// workerID names this process in the jobs it claims.
func workerID(service string) string {
	host, err := os.Hostname()
	if err != nil {
		host = "unknown"
	}
	return fmt.Sprintf("%s@%s:%d", service, host, os.Getpid())
}
