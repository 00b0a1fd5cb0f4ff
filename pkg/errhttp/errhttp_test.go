package errhttp

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/caelus-deploy/caelus/pkg/httpx"
	accountsdomain "github.com/caelus-deploy/caelus/services/accounts/domain"
	admindomain "github.com/caelus-deploy/caelus/services/admin/domain"
	catalogdomain "github.com/caelus-deploy/caelus/services/catalog/domain"
)

func TestWriteError_StatusCodes(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"invalid path id", fmt.Errorf("%w: id=\"x\"", httpx.ErrInvalidPathID), http.StatusBadRequest},
		{"invalid query", fmt.Errorf("%w: limit=\"x\"", httpx.ErrInvalidQuery), http.StatusBadRequest},
		{"ErrJobNotFound", accountsdomain.ErrJobNotFound, http.StatusNotFound},
		{"ErrDeploymentInProgress", fmt.Errorf("upgrade deployment: %w", accountsdomain.ErrDeploymentInProgress), http.StatusConflict},
		{"ErrInvalidUpgrade", accountsdomain.ErrInvalidUpgrade, http.StatusConflict},
		{"ErrInvalidUserValues", fmt.Errorf("%w: title", accountsdomain.ErrInvalidUserValues), http.StatusUnprocessableEntity},
		{"ErrProductNotFound", catalogdomain.ErrProductNotFound, http.StatusNotFound},
		{"wrapped ErrTemplateNotFound", fmt.Errorf("set canonical: %w", catalogdomain.ErrTemplateNotFound), http.StatusNotFound},
		{"ErrUserNotFound", accountsdomain.ErrUserNotFound, http.StatusNotFound},
		{"ErrDeploymentNotFound", accountsdomain.ErrDeploymentNotFound, http.StatusNotFound},
		{"admin ErrNotFound", admindomain.ErrNotFound, http.StatusNotFound},
		{"ErrProductAlreadyExists", catalogdomain.ErrProductAlreadyExists, http.StatusConflict},
		{"ErrTemplateAlreadyExists", catalogdomain.ErrTemplateAlreadyExists, http.StatusConflict},
		{"ErrUserAlreadyExists", accountsdomain.ErrUserAlreadyExists, http.StatusConflict},
		{"ErrNoCanonicalTemplate", accountsdomain.ErrNoCanonicalTemplate, http.StatusConflict},
		{"ErrInvalidProduct", fmt.Errorf("%w: too long", catalogdomain.ErrInvalidProduct), http.StatusUnprocessableEntity},
		{"ErrInvalidDeployment", accountsdomain.ErrInvalidDeployment, http.StatusUnprocessableEntity},
		{"admin ErrValidationFailed", admindomain.ErrValidationFailed, http.StatusUnprocessableEntity},
		{"admin ErrTransportFailure", fmt.Errorf("%w: connection refused", admindomain.ErrTransportFailure), http.StatusBadGateway},
		{"unknown error", errors.New("something unexpected"), http.StatusInternalServerError},
		{"generic wrapped error", fmt.Errorf("context: %w", errors.New("db down")), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteError(w, tt.err)

			if w.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
		})
	}
}

func TestWriteError_JSONBody(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, fmt.Errorf("get product: %w", catalogdomain.ErrProductNotFound))

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("response body is not valid JSON: %v", err)
	}
	if body["error"] != "get product: product not found" {
		t.Fatalf("unexpected error message: %q", body["error"])
	}
}

func TestWriteError_HidesInternalErrors(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, errors.New("pq: password authentication failed"))

	var body map[string]string
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body["error"] != "Internal Server Error" {
		t.Fatalf("expected generic message, got %q", body["error"])
	}
}

func TestWriteError_ContentType(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, catalogdomain.ErrProductNotFound)

	ct := w.Header().Get("Content-Type")
	if ct == "" {
		t.Fatal("Content-Type header not set")
	}
}

type fieldErr struct{ fields map[string]string }

func (e fieldErr) Error() string                  { return "rejected" }
func (e fieldErr) Unwrap() error                  { return admindomain.ErrValidationFailed }
func (e fieldErr) FieldErrors() map[string]string { return e.fields }

func TestWriteError_KeepsFieldErrors(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, fmt.Errorf("create template: %w", fieldErr{map[string]string{"docker_image_url": "Must not be blank"}}))

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}
	var body httpx.ErrorBody
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error != "Validation failed" || body.Fields["docker_image_url"] != "Must not be blank" {
		t.Errorf("unexpected body: %+v", body)
	}
}

func TestWriteError_ValidationWithoutFields(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, fieldErr{})

	var body httpx.ErrorBody
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if w.Code != http.StatusUnprocessableEntity || body.Error != "rejected" || body.Fields != nil {
		t.Errorf("unexpected response %d %+v", w.Code, body)
	}
}
