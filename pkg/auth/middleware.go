package auth

import (
	"net/http"

	"github.com/gorilla/sessions"

	"github.com/caelus-deploy/caelus/pkg/httpx"
	"github.com/caelus-deploy/caelus/pkg/logger"
	"github.com/caelus-deploy/caelus/pkg/operator"
)

// ForwardedEmail is a chi middleware for the backend gateway. It copies the
// proxy-set X-Auth-Request-Email into the request context when present and
// well-formed. It never rejects: the gateway sits behind the authenticating proxy.
func ForwardedEmail(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get(operator.HeaderEmail)
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}
			email, err := operator.Normalize(raw)
			if err != nil {
				log.WarnContext(r.Context(), "ignoring malformed operator header", "value", raw)
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(operator.WithEmail(r.Context(), email)))
		})
	}
}

// RequireOperator is a chi middleware that resolves the operator identity for
// the admin API: the proxy header wins, otherwise the email captured in the
// session cookie is used. Returns 401 Unauthorized when neither is available.
//
// After this middleware, handlers can safely call operator.EmailFromCtx(r.Context()).
func RequireOperator(store sessions.Store, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if raw := r.Header.Get(operator.HeaderEmail); raw != "" {
				email, err := operator.Normalize(raw)
				if err != nil {
					log.WarnContext(r.Context(), "invalid operator header", "value", raw)
					httpx.JSONError(w, http.StatusUnauthorized, "invalid operator identity")
					return
				}
				next.ServeHTTP(w, r.WithContext(operator.WithEmail(r.Context(), email)))
				return
			}

			email, err := SessionEmail(r, store)
			if err != nil {
				log.WarnContext(r.Context(), "operator identity missing", "error", err)
				httpx.JSONError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			next.ServeHTTP(w, r.WithContext(operator.WithEmail(r.Context(), email)))
		})
	}
}
