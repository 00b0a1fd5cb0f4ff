package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/caelus-deploy/caelus/pkg/logger"
	"github.com/caelus-deploy/caelus/pkg/operator"
	appsvcs "github.com/caelus-deploy/caelus/services/admin/application/services"
	"github.com/caelus-deploy/caelus/services/admin/infrastructure/gateway"
	catalogapi "github.com/caelus-deploy/caelus/services/catalog/application/api"
	catalogsvcs "github.com/caelus-deploy/caelus/services/catalog/application/services"
	"github.com/caelus-deploy/caelus/services/catalog/infrastructure/persistence/memory"
)

type testEnv struct {
	admin   http.Handler
	catalog *catalogsvcs.Services

	mu       sync.Mutex
	seenByGW []string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{}

	store := memory.NewStore()
	env.catalog = catalogsvcs.NewWithRepositories(store.Products(), store.Templates(), nil, logger.Discard())

	backend := chi.NewRouter()
	backend.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			env.mu.Lock()
			env.seenByGW = append(env.seenByGW, r.Header.Get(operator.HeaderEmail))
			env.mu.Unlock()
			next.ServeHTTP(w, r)
		})
	})
	catalogapi.Mount(backend, env.catalog)
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	gw, err := gateway.New(srv.URL)
	if err != nil {
		t.Fatalf("gateway.New: %v", err)
	}
	sessionStore := sessions.NewCookieStore(
		[]byte("test-auth-key-must-be-32-bytes!!"),
		[]byte("test-enc-key-must-be-32-bytes!!!"),
	)

	r := chi.NewRouter()
	AdminRoutes(r, appsvcs.New(gw, logger.Discard()), sessionStore, logger.Discard())
	env.admin = r
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body any, cookies []*http.Cookie, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	e.admin.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return v
}

type product struct {
	ID         int64  `json:"id"`
	TemplateID *int64 `json:"template_id"`
}

type template struct {
	ID int64 `json:"id"`
}

func TestAdminAPI_RequiresOperator(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/admin/products", nil, nil, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	w = env.do(t, http.MethodGet, "/session", nil, nil, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 from GET /session, got %d", w.Code)
	}
	w = env.do(t, http.MethodGet, "/admin/products", nil, nil, map[string]string{operator.HeaderEmail: "Ops <ops@example.com>"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for malformed header, got %d", w.Code)
	}
}

func TestAdminAPI_SessionLifecycle(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/session", map[string]string{"email": "not-an-email"}, nil, nil)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}

	w = env.do(t, http.MethodPost, "/session", map[string]string{"email": "Ops@Example.com"}, nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	cookies := w.Result().Cookies()

	got := decode[map[string]string](t, env.do(t, http.MethodGet, "/session", nil, cookies, nil))
	if got["email"] != "ops@example.com" || got["source"] != "session" {
		t.Fatalf("session = %v", got)
	}

	got = decode[map[string]string](t, env.do(t, http.MethodGet, "/session", nil, cookies, map[string]string{operator.HeaderEmail: "proxy@example.com"}))
	if got["email"] != "proxy@example.com" || got["source"] != "header" {
		t.Fatalf("header identity = %v", got)
	}

	if w := env.do(t, http.MethodGet, "/admin/products", nil, cookies, nil); w.Code != http.StatusOK {
		t.Fatalf("expected 200 with session, got %d", w.Code)
	}

	w = env.do(t, http.MethodDelete, "/session", nil, cookies, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if w := env.do(t, http.MethodGet, "/admin/products", nil, w.Result().Cookies(), nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", w.Code)
	}
}

func TestAdminAPI_TemplateFlow(t *testing.T) {
	env := newTestEnv(t)
	hdr := map[string]string{operator.HeaderEmail: "ops@example.com"}

	p, err := env.catalog.Product.Create(context.Background(), "web", nil)
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	base := "/admin/products/" + strconv.FormatInt(p.ID, 10)

	w := env.do(t, http.MethodPost, base+"/templates", map[string]string{"docker_image_url": "img:1"}, nil, hdr)
	if w.Code != http.StatusCreated {
		t.Fatalf("create T1: %d %s", w.Code, w.Body.String())
	}
	first := decode[struct {
		Template template `json:"template"`
		Product  product  `json:"product"`
		Promoted bool     `json:"promoted"`
	}](t, w)
	if !first.Promoted || first.Product.TemplateID == nil || *first.Product.TemplateID != first.Template.ID {
		t.Fatalf("T1 not promoted: %+v", first)
	}

	w = env.do(t, http.MethodPost, base+"/templates", map[string]string{"docker_image_url": "img:2"}, nil, hdr)
	second := decode[struct {
		Template template `json:"template"`
		Promoted bool     `json:"promoted"`
	}](t, w)
	if second.Promoted {
		t.Fatal("T2 must not be promoted")
	}

	list := decode[[]template](t, env.do(t, http.MethodGet, base+"/templates", nil, nil, hdr))
	if len(list) != 2 || list[0].ID != second.Template.ID {
		t.Fatalf("expected newest first, got %+v", list)
	}

	w = env.do(t, http.MethodPut, base+"/canonical", map[string]int64{"template_id": second.Template.ID}, nil, hdr)
	if w.Code != http.StatusOK {
		t.Fatalf("set canonical: %d %s", w.Code, w.Body.String())
	}
	w = env.do(t, http.MethodPut, base+"/canonical", map[string]int64{"template_id": 999}, nil, hdr)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for foreign template, got %d", w.Code)
	}
	w = env.do(t, http.MethodPut, base+"/canonical", map[string]int64{}, nil, hdr)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for missing template_id, got %d", w.Code)
	}

	w = env.do(t, http.MethodDelete, base+"/templates/"+strconv.FormatInt(second.Template.ID, 10), nil, nil, hdr)
	if w.Code != http.StatusOK {
		t.Fatalf("delete: %d %s", w.Code, w.Body.String())
	}
	deleted := decode[struct {
		Product  product `json:"product"`
		Decision struct {
			Next   *int64 `json:"next"`
			Reason string `json:"reason"`
		} `json:"decision"`
	}](t, w)
	if deleted.Decision.Reason != "replaced" || deleted.Decision.Next == nil || *deleted.Decision.Next != first.Template.ID {
		t.Fatalf("delete decision = %+v", deleted.Decision)
	}

	env.mu.Lock()
	defer env.mu.Unlock()
	for _, email := range env.seenByGW {
		if email != "ops@example.com" {
			t.Fatalf("gateway saw operator %q", email)
		}
	}
	if len(env.seenByGW) == 0 {
		t.Fatal("gateway saw no requests")
	}
}

func TestAdminAPI_InvalidPath(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodGet, "/admin/products/abc/templates", nil, nil, map[string]string{operator.HeaderEmail: "ops@example.com"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}
