package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/sessions"

	"github.com/caelus-deploy/caelus/pkg/logger"
	"github.com/caelus-deploy/caelus/pkg/operator"
)

// newTestStore returns a gorilla CookieStore (no Redis required) for unit tests.
// In production the RedisStore is used; the sessions.Store interface is identical.
func newTestStore() sessions.Store {
	return sessions.NewCookieStore(
		[]byte("test-auth-key-must-be-32-bytes!!"),
		[]byte("test-enc-key-must-be-32-bytes!!!"),
	)
}

// requestWithSessionEmail builds a request carrying a session cookie that
// holds the given operator email.
func requestWithSessionEmail(t *testing.T, store sessions.Store, email string) *http.Request {
	t.Helper()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/session", nil)
	if _, err := SaveSessionEmail(w, r, store, email); err != nil {
		t.Fatalf("save session email: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/admin/products", nil)
	for _, c := range w.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

// captureEmail returns a handler recording the operator email it sees.
func captureEmail(got *string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got, _ = operator.EmailFromCtx(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireOperator_Header(t *testing.T) {
	var got string
	r := httptest.NewRequest(http.MethodGet, "/admin/products", nil)
	r.Header.Set(operator.HeaderEmail, "  Ops@Caelus.Example ")
	w := httptest.NewRecorder()

	RequireOperator(newTestStore(), logger.Discard())(captureEmail(&got)).ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got != "ops@caelus.example" {
		t.Fatalf("expected normalized email in context, got %q", got)
	}
}

func TestRequireOperator_HeaderWinsOverSession(t *testing.T) {
	store := newTestStore()
	var got string
	r := requestWithSessionEmail(t, store, "session@caelus.example")
	r.Header.Set(operator.HeaderEmail, "proxy@caelus.example")
	w := httptest.NewRecorder()

	RequireOperator(store, logger.Discard())(captureEmail(&got)).ServeHTTP(w, r)

	if got != "proxy@caelus.example" {
		t.Fatalf("expected proxy email, got %q", got)
	}
}

func TestRequireOperator_SessionFallback(t *testing.T) {
	store := newTestStore()
	var got string
	r := requestWithSessionEmail(t, store, "session@caelus.example")
	w := httptest.NewRecorder()

	RequireOperator(store, logger.Discard())(captureEmail(&got)).ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got != "session@caelus.example" {
		t.Fatalf("expected session email, got %q", got)
	}
}

func TestRequireOperator_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"no header no session", ""},
		{"malformed header", "not-an-email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Fatal("next handler should not be called")
			})
			r := httptest.NewRequest(http.MethodGet, "/admin/products", nil)
			if tt.header != "" {
				r.Header.Set(operator.HeaderEmail, tt.header)
			}
			w := httptest.NewRecorder()

			RequireOperator(newTestStore(), logger.Discard())(next).ServeHTTP(w, r)

			if w.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", w.Code)
			}
		})
	}
}

func TestRequireOperator_ClearedSession(t *testing.T) {
	store := newTestStore()
	r := requestWithSessionEmail(t, store, "session@caelus.example")

	w := httptest.NewRecorder()
	if err := ClearSession(w, r, store); err != nil {
		t.Fatalf("clear session: %v", err)
	}

	// A client that ignores Max-Age and replays the logout cookie is still anonymous.
	after := httptest.NewRequest(http.MethodGet, "/admin/products", nil)
	for _, c := range w.Result().Cookies() {
		after.AddCookie(c)
	}
	if _, err := SessionEmail(after, store); !errors.Is(err, ErrNoSessionEmail) {
		t.Fatalf("expected ErrNoSessionEmail after clear, got %v", err)
	}

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler should not be called")
	})
	rec := httptest.NewRecorder()
	RequireOperator(store, logger.Discard())(next).ServeHTTP(rec, after)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with the logout cookie, got %d", rec.Code)
	}
}

func TestSaveSessionEmail_Invalid(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/session", nil)
	if _, err := SaveSessionEmail(w, r, newTestStore(), "Ops <ops@caelus.example>"); err == nil {
		t.Fatal("expected error for display-name address")
	}
	if len(w.Result().Cookies()) != 0 {
		t.Fatal("no cookie should be written for an invalid email")
	}
}

func TestForwardedEmail(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"absent", "", ""},
		{"valid", "Dev@Caelus.Example", "dev@caelus.example"},
		{"malformed is ignored", "nope", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			r := httptest.NewRequest(http.MethodGet, "/api/products", nil)
			if tt.header != "" {
				r.Header.Set(operator.HeaderEmail, tt.header)
			}
			w := httptest.NewRecorder()

			ForwardedEmail(logger.Discard())(captureEmail(&got)).ServeHTTP(w, r)

			if w.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", w.Code)
			}
			if got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
