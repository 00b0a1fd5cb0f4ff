package validator_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	pkgvalidator "github.com/caelus-deploy/caelus/pkg/validator"
)

type productReq struct {
	Name        string  `json:"name"        validate:"required,notblank,max=10"`
	Description *string `json:"description" validate:"omitempty,max=5"`
}

type sessionReq struct {
	Email string `json:"email" validate:"required,email"`
}

type deploymentReq struct {
	TemplateID *int64 `json:"template_id" validate:"required_without=ProductID,omitempty,gt=0"`
	ProductID  *int64 `json:"product_id"  validate:"omitempty,gt=0"`
	Domainname string `json:"domainname"  validate:"required,hostname_rfc1123"`
}

type untagged struct {
	Count int `validate:"gte=1"`
}

func TestFormatValidationErrors(t *testing.T) {
	long := "123456"
	tests := []struct {
		name string
		in   any
		want map[string]string
	}{
		{"valid", &productReq{Name: "caelus-web"}, map[string]string{}},
		{"required", &productReq{}, map[string]string{"name": "This field is required"}},
		{"blank", &productReq{Name: "  \t"}, map[string]string{"name": "Must not be blank"}},
		{"max", &productReq{Name: "12345678901", Description: &long}, map[string]string{
			"name":        "Maximum length is 10",
			"description": "Maximum length is 5",
		}},
		{"email", &sessionReq{Email: "not-an-email"}, map[string]string{"email": "Must be a valid email address"}},
		{"go field name without json tag", &untagged{}, map[string]string{"Count": "Must be greater than or equal to 1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pkgvalidator.FormatValidationErrors(pkgvalidator.Validate(tt.in))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("fields mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFormatValidationErrors_nonValidationError(t *testing.T) {
	if m := pkgvalidator.FormatValidationErrors(http.ErrNoCookie); len(m) != 0 {
		t.Errorf("expected empty map for non-validation error, got %v", m)
	}
}

func post(body string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	return r
}

func TestValidateRequest_valid(t *testing.T) {
	w := httptest.NewRecorder()
	req, ok := pkgvalidator.ValidateRequest[productReq](w, post(`{"name":"caelus-web"}`))
	if !ok {
		t.Fatalf("expected ok=true, got body %s", w.Body.String())
	}
	if req.Name != "caelus-web" {
		t.Errorf("unexpected Name: %q", req.Name)
	}
}

func TestValidateRequest_failures(t *testing.T) {
	tests := []struct {
		name       string
		body       *http.Request
		wantStatus int
		wantBody   string
	}{
		{"malformed", post("{bad json"), http.StatusBadRequest, "Invalid JSON"},
		{"empty", httptest.NewRequest(http.MethodPost, "/", http.NoBody), http.StatusBadRequest, "Request body is required"},
		{"missing field", post(`{}`), http.StatusUnprocessableEntity, "Validation failed"},
		{"blank name", post(`{"name":"   "}`), http.StatusUnprocessableEntity, "Must not be blank"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			if _, ok := pkgvalidator.ValidateRequest[productReq](w, tt.body); ok {
				t.Fatal("expected ok=false")
			}
			if w.Code != tt.wantStatus {
				t.Errorf("expected %d, got %d", tt.wantStatus, w.Code)
			}
			if !strings.Contains(w.Body.String(), tt.wantBody) {
				t.Errorf("expected %q in body, got %s", tt.wantBody, w.Body.String())
			}
		})
	}
}

func TestValidateRequest_tooLarge(t *testing.T) {
	w := httptest.NewRecorder()
	r := post(`{"name":"` + strings.Repeat("x", 64) + `"}`)
	r.Body = http.MaxBytesReader(w, r.Body, 16)

	if _, ok := pkgvalidator.ValidateRequest[productReq](w, r); ok {
		t.Fatal("expected ok=false for oversized body")
	}
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413, got %d", w.Code)
	}
}

func TestValidateRequest_deployment(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantOK   bool
		wantBody string
	}{
		{"template only", `{"template_id":3,"domainname":"cloud.example.com"}`, true, ""},
		{"product only", `{"product_id":5,"domainname":"cloud.example.com"}`, true, ""},
		{"neither", `{"domainname":"cloud.example.com"}`, false, "template_id"},
		{"bad hostname", `{"template_id":3,"domainname":"not a host!"}`, false, "Must be a valid hostname"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			_, ok := pkgvalidator.ValidateRequest[deploymentReq](w, post(tt.body))
			if ok != tt.wantOK {
				t.Fatalf("ok=%v, want %v; body %s", ok, tt.wantOK, w.Body.String())
			}
			if !tt.wantOK && !strings.Contains(w.Body.String(), tt.wantBody) {
				t.Errorf("expected %q in body, got %s", tt.wantBody, w.Body.String())
			}
		})
	}
}
