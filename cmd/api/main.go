package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	_ "github.com/caelus-deploy/caelus/docs/swagger"
	"github.com/caelus-deploy/caelus/pkg/app"
	"github.com/caelus-deploy/caelus/pkg/auth"
	"github.com/caelus-deploy/caelus/pkg/cache"
	"github.com/caelus-deploy/caelus/pkg/config"
	"github.com/caelus-deploy/caelus/pkg/database"
	"github.com/caelus-deploy/caelus/pkg/events"
	"github.com/caelus-deploy/caelus/pkg/httpx"
	"github.com/caelus-deploy/caelus/pkg/logger"
	"github.com/caelus-deploy/caelus/pkg/telemetry"
	accountsApi "github.com/caelus-deploy/caelus/services/accounts/application/api"
	catalogApi "github.com/caelus-deploy/caelus/services/catalog/application/api"
)

// @title					Caelus Deploy Gateway API
// @version				1.0
// @description			Products, template versions, users and deployments.
// @contact.name			Caelus Platform Team
// @contact.email			platform@caelus.example
// @license.name			MIT
// @license.url			https://opensource.org/licenses/MIT
// @host					localhost:8080
// @BasePath				/api
// @schemes				http https
func main() {
	cfg, err := config.Load()
	if errors.Is(err, config.ErrHelp) {
		return
	}
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("gateway failed", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	log.Info("gateway stopped")
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

	// Events written by the repositories reach subscribers only through the
	// forwarder, so it must run before the first request.
	eventBus, err := events.NewEventBusWithForwarder(cfg, log)
	if err != nil {
		return err
	}
	defer eventBus.Close() //nolint:errcheck
	if err := eventBus.StartForwarder(ctx); err != nil {
		return err
	}

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
	r.Get("/health", httpx.HealthHandler(
		httpx.HealthCheck{Name: "database", Checker: pool},
		httpx.HealthCheck{Name: "redis", Checker: redisClient},
		httpx.HealthCheck{Name: "event_bus", Checker: eventBus},
	))
	r.Get("/metrics", tel.Metrics.ServeHTTP)
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	r.Route("/api", func(r chi.Router) {
		r.Use(auth.ForwardedEmail(log))
		registerRoutes(r, a)
	})

	srv := httpx.NewServer(cfg.APIAddr, r)
	log.Info("gateway listening", "addr", srv.Addr, "env", cfg.Environment)
	return httpx.Serve(ctx, srv, httpx.ShutdownGrace)
}

// registerRoutes mounts all service routes under /api.
// Accounts resolves canonical templates through the catalog services.
func registerRoutes(r chi.Router, a *app.Application) {
	catalog := catalogApi.CatalogRoutes(r, a)
	accountsApi.AccountsRoutes(r, a, catalog)
}
