package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/caelus-deploy/caelus/pkg/auth"
	"github.com/caelus-deploy/caelus/pkg/cache"
	"github.com/caelus-deploy/caelus/pkg/config"
	"github.com/caelus-deploy/caelus/pkg/httpx"
	"github.com/caelus-deploy/caelus/pkg/logger"
	"github.com/caelus-deploy/caelus/pkg/telemetry"
	adminApi "github.com/caelus-deploy/caelus/services/admin/application/api"
	adminServices "github.com/caelus-deploy/caelus/services/admin/application/services"
	"github.com/caelus-deploy/caelus/services/admin/infrastructure/gateway"
)

// The admin process holds no database: every read and write goes through the
// gateway. Redis only backs the operator session.
func main() {
	cfg, err := config.Load()
	if errors.Is(err, config.ErrHelp) {
		return
	}
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg.ServiceName += "-admin"
	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("admin server failed", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	log.Info("admin server stopped")
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

	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		return err
	}
	defer redisClient.Close() //nolint:errcheck
	log.Info("redis connected")

	sessionStore := auth.NewSessionStore(
		redisClient,
		[]byte(cfg.SessionAuthKey),
		[]byte(cfg.SessionEncryptionKey),
		cfg.IsProduction(),
	)

	gw, err := gateway.New(cfg.GatewayURL,
		gateway.WithTimeout(cfg.GatewayTimeout),
		gateway.WithLogger(log),
	)
	if err != nil {
		return err
	}
	svcs := adminServices.New(gw, log)

	r := httpx.NewRouter(
		httpx.ServerConfig{
			ServiceName:        cfg.ServiceName,
			IsDevelopment:      cfg.IsDevelopment(),
			CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		},
		httpx.Middlewares{
			Recovery: logger.Recovery(log),
			Sentry:   telemetry.SentryMiddleware(),
			Tracing:  otelhttp.NewMiddleware(cfg.ServiceName),
			Logger:   logger.Middleware(log),
		},
	)
	r.Get("/health", httpx.HealthHandler(httpx.HealthCheck{Name: "redis", Checker: redisClient}))
	r.Get("/metrics", tel.Metrics.ServeHTTP)
	adminApi.AdminRoutes(r, svcs, sessionStore, log)

	srv := httpx.NewServer(cfg.AdminAddr, r)
	log.Info("admin server listening", "addr", srv.Addr, "gateway", cfg.GatewayURL, "env", cfg.Environment)
	return httpx.Serve(ctx, srv, httpx.ShutdownGrace)
}
