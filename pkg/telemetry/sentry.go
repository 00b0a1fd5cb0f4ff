package telemetry

import (
	"fmt"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	sentryhttp "github.com/getsentry/sentry-go/http"

	"github.com/caelus-deploy/caelus/pkg/config"
	"github.com/caelus-deploy/caelus/pkg/operator"
)

const sentryFlushTimeout = 2 * time.Second

// SetupSentry initializes the Sentry SDK. An empty DSN disables it.
func SetupSentry(cfg *config.Config) error {
	if cfg.SentryDSN == "" {
		return nil
	}
	rate := 0.2
	if !cfg.IsProduction() {
		rate = 1.0
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.SentryDSN,
		Environment:      cfg.Environment,
		Release:          cfg.ServiceName + "@" + cfg.ServiceVersion,
		ServerName:       cfg.ServiceName,
		TracesSampleRate: rate,
		AttachStacktrace: true,
		BeforeSend:       scrubEvent,
	})
	if err != nil {
		return fmt.Errorf("telemetry: sentry init: %w", err)
	}
	return nil
}

// scrubEvent drops cookies and the session cookie header from captured
// requests. The operator email stays, set deliberately by SentryOperator.
func scrubEvent(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
	if event.Request != nil {
		event.Request.Cookies = ""
		delete(event.Request.Headers, "Cookie")
		delete(event.Request.Headers, "Authorization")
	}
	return event
}

// SentryFlush waits briefly for buffered events before exit.
func SentryFlush() {
	sentry.Flush(sentryFlushTimeout)
}

// SentryMiddleware captures panics and re-panics so Recovery still answers 500.
func SentryMiddleware() func(http.Handler) http.Handler {
	return sentryhttp.New(sentryhttp.Options{Repanic: true, Timeout: sentryFlushTimeout}).Handle
}

// SentryOperator tags the request hub with the resolved operator email.
// It must run after SentryMiddleware and after the identity is on the context.
func SentryOperator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub := sentry.GetHubFromContext(r.Context())
		email, err := operator.EmailFromCtx(r.Context())
		if hub != nil && err == nil {
			hub.Scope().SetUser(sentry.User{Email: email})
			hub.Scope().SetTag("operator", email)
		}
		next.ServeHTTP(w, r)
	})
}
