package app

import (
	"github.com/gorilla/sessions"

	"github.com/caelus-deploy/caelus/pkg/cache"
	"github.com/caelus-deploy/caelus/pkg/database"
	"github.com/caelus-deploy/caelus/pkg/events"
	"github.com/caelus-deploy/caelus/pkg/logger"
)

// Application holds shared infrastructure dependencies for the gateway services.
// Pass it to each bounded context's Routes call during server initialization.
//
// Logging: app.Logger is backed by a trace-aware handler. Use slog's context methods
// and trace_id, span_id, request_id and operator are injected automatically:
//
//	app.Logger.InfoContext(ctx, "template created", "product_id", id)
//	app.Logger.ErrorContext(ctx, "failed to save", "error", err)
//
// Use app.Logger.Info/Error (no context) only for startup and shutdown messages.
type Application struct {
	Db           *database.Database
	Logger       logger.Logger
	EventBus     *events.EventBus // nil disables outbox publishing
	Redis        *cache.RedisClient
	SessionStore sessions.Store // Redis-backed session store; only the admin process sets it
}
