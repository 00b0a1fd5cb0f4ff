package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/caelus-deploy/caelus/services/admin/domain"
	"github.com/caelus-deploy/caelus/services/admin/domain/models"
)

func TestClient_AccountsRequestShape(t *testing.T) {
	tmpl := int64(12)
	tests := []struct {
		name       string
		call       func(ctx context.Context, c *Client) error
		wantMethod string
		wantURI    string
		wantBody   string
	}{
		{
			name:       "list users",
			call:       func(ctx context.Context, c *Client) error { _, err := c.ListUsers(ctx); return err },
			wantMethod: http.MethodGet,
			wantURI:    "/api/users",
		},
		{
			name: "create user",
			call: func(ctx context.Context, c *Client) error {
				_, err := c.CreateUser(ctx, "dev@caelus.example")
				return err
			},
			wantMethod: http.MethodPost,
			wantURI:    "/api/users",
			wantBody:   `{"email":"dev@caelus.example"}`,
		},
		{
			name:       "get user",
			call:       func(ctx context.Context, c *Client) error { _, err := c.GetUser(ctx, 4); return err },
			wantMethod: http.MethodGet,
			wantURI:    "/api/users/4",
		},
		{
			name:       "delete user",
			call:       func(ctx context.Context, c *Client) error { return c.DeleteUser(ctx, 4) },
			wantMethod: http.MethodDelete,
			wantURI:    "/api/users/4",
		},
		{
			name:       "list deployments",
			call:       func(ctx context.Context, c *Client) error { _, err := c.ListDeployments(ctx, 4); return err },
			wantMethod: http.MethodGet,
			wantURI:    "/api/users/4/deployments",
		},
		{
			name: "create deployment",
			call: func(ctx context.Context, c *Client) error {
				_, err := c.CreateDeployment(ctx, 4, models.NewDeployment{
					TemplateID: &tmpl,
					Domainname: "shop.example.com",
					UserValues: json.RawMessage(`{"title":"shop"}`),
				})
				return err
			},
			wantMethod: http.MethodPost,
			wantURI:    "/api/users/4/deployments",
			wantBody:   `{"template_id":12,"domainname":"shop.example.com","user_values_json":{"title":"shop"}}`,
		},
		{
			name:       "upgrade deployment",
			call:       func(ctx context.Context, c *Client) error { _, err := c.UpgradeDeployment(ctx, 4, 7, 13); return err },
			wantMethod: http.MethodPatch,
			wantURI:    "/api/users/4/deployments/7",
			wantBody:   `{"template_id":13}`,
		},
		{
			name:       "get deployment",
			call:       func(ctx context.Context, c *Client) error { _, err := c.GetDeployment(ctx, 4, 7); return err },
			wantMethod: http.MethodGet,
			wantURI:    "/api/users/4/deployments/7",
		},
		{
			name:       "delete deployment",
			call:       func(ctx context.Context, c *Client) error { return c.DeleteDeployment(ctx, 4, 7) },
			wantMethod: http.MethodDelete,
			wantURI:    "/api/users/4/deployments/7",
		},
		{
			name:       "list all jobs",
			call:       func(ctx context.Context, c *Client) error { _, err := c.ListJobs(ctx, models.JobFilter{}); return err },
			wantMethod: http.MethodGet,
			wantURI:    "/api/jobs",
		},
		{
			name: "list filtered jobs",
			call: func(ctx context.Context, c *Client) error {
				_, err := c.ListJobs(ctx, models.JobFilter{Status: "failed", DeploymentID: 7, Limit: 5})
				return err
			},
			wantMethod: http.MethodGet,
			wantURI:    "/api/jobs?deployment_id=7&limit=5&status=failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotMethod, gotURI, gotBody string
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				gotMethod, gotURI = r.Method, r.URL.RequestURI()
				b, _ := io.ReadAll(r.Body)
				gotBody = string(b)

				switch {
				case r.Method == http.MethodDelete:
					w.WriteHeader(http.StatusNoContent)
				case r.Method == http.MethodGet && (strings.HasSuffix(r.URL.Path, "/users") ||
					strings.HasSuffix(r.URL.Path, "/deployments") || r.URL.Path == "/api/jobs"):
					_, _ = w.Write([]byte(`[]`))
				default:
					_, _ = w.Write([]byte(`{"id":1}`))
				}
			})

			if err := tt.call(context.Background(), c); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if gotMethod != tt.wantMethod || gotURI != tt.wantURI {
				t.Errorf("request = %s %s, want %s %s", gotMethod, gotURI, tt.wantMethod, tt.wantURI)
			}
			if strings.TrimSpace(gotBody) != tt.wantBody {
				t.Errorf("body = %q, want %q", gotBody, tt.wantBody)
			}
		})
	}
}

func TestClient_DecodesDeployment(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":7,"deployment_uid":"web-dev-a1b2c3","user_id":4,"template_id":13,
			"applied_template_id":12,"domainname":"shop.example.com","user_values_json":null,
			"status":"upgrading","generation":2,"last_error":null,"created_at":"2025-01-15T10:30:00Z"}`))
	})

	got, err := c.UpgradeDeployment(context.Background(), 4, 7, 13)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	applied := int64(12)
	want := &models.Deployment{
		ID: 7, UID: "web-dev-a1b2c3", UserID: 4, TemplateID: 13, AppliedTemplateID: &applied,
		Domainname: "shop.example.com", UserValues: json.RawMessage(`null`), Status: "upgrading", Generation: 2,
		CreatedAt: time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("deployment mismatch (-want +got):\n%s", diff)
	}
}

func TestClient_DeploymentInProgress(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":"deployment has a reconcile job in progress"}`))
	})
	err := c.DeleteDeployment(context.Background(), 4, 7)
	if !errors.Is(err, domain.ErrValidationFailed) || !strings.Contains(err.Error(), "in progress") {
		t.Fatalf("expected a validation failure naming the open job, got %v", err)
	}
}
