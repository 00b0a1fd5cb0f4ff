package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/caelus-deploy/caelus/services/admin/domain"
	"github.com/caelus-deploy/caelus/services/admin/domain/models"
)

var _ domain.Accounts = (*Client)(nil)

func (c *Client) ListUsers(ctx context.Context) ([]models.User, error) {
	var out []models.User
	if err := c.do(ctx, http.MethodGet, "/users", nil, &out); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return out, nil
}

func (c *Client) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	var out models.User
	if err := c.do(ctx, http.MethodGet, userPath(userID), nil, &out); err != nil {
		return nil, fmt.Errorf("get user %d: %w", userID, err)
	}
	return &out, nil
}

func (c *Client) CreateUser(ctx context.Context, email string) (*models.User, error) {
	in := struct {
		Email string `json:"email"`
	}{email}
	var out models.User
	if err := c.do(ctx, http.MethodPost, "/users", in, &out); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &out, nil
}

func (c *Client) DeleteUser(ctx context.Context, userID int64) error {
	if err := c.do(ctx, http.MethodDelete, userPath(userID), nil, nil); err != nil {
		return fmt.Errorf("delete user %d: %w", userID, err)
	}
	return nil
}

func (c *Client) ListDeployments(ctx context.Context, userID int64) ([]models.Deployment, error) {
	var out []models.Deployment
	if err := c.do(ctx, http.MethodGet, userPath(userID)+"/deployments", nil, &out); err != nil {
		return nil, fmt.Errorf("list deployments of user %d: %w", userID, err)
	}
	return out, nil
}

func (c *Client) GetDeployment(ctx context.Context, userID, deploymentID int64) (*models.Deployment, error) {
	var out models.Deployment
	if err := c.do(ctx, http.MethodGet, deploymentPath(userID, deploymentID), nil, &out); err != nil {
		return nil, fmt.Errorf("get deployment %d: %w", deploymentID, err)
	}
	return &out, nil
}

func (c *Client) CreateDeployment(ctx context.Context, userID int64, in models.NewDeployment) (*models.Deployment, error) {
	var out models.Deployment
	if err := c.do(ctx, http.MethodPost, userPath(userID)+"/deployments", in, &out); err != nil {
		return nil, fmt.Errorf("create deployment for user %d: %w", userID, err)
	}
	return &out, nil
}

func (c *Client) UpgradeDeployment(ctx context.Context, userID, deploymentID, templateID int64) (*models.Deployment, error) {
	in := struct {
		TemplateID int64 `json:"template_id"`
	}{templateID}
	var out models.Deployment
	if err := c.do(ctx, http.MethodPatch, deploymentPath(userID, deploymentID), in, &out); err != nil {
		return nil, fmt.Errorf("upgrade deployment %d: %w", deploymentID, err)
	}
	return &out, nil
}

func (c *Client) DeleteDeployment(ctx context.Context, userID, deploymentID int64) error {
	if err := c.do(ctx, http.MethodDelete, deploymentPath(userID, deploymentID), nil, nil); err != nil {
		return fmt.Errorf("delete deployment %d: %w", deploymentID, err)
	}
	return nil
}

func (c *Client) ListJobs(ctx context.Context, f models.JobFilter) ([]models.Job, error) {
	q := url.Values{}
	if f.Status != "" {
		q.Set("status", f.Status)
	}
	if f.DeploymentID > 0 {
		q.Set("deployment_id", strconv.FormatInt(f.DeploymentID, 10))
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	path := "/jobs"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var out []models.Job
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return out, nil
}

func userPath(userID int64) string {
	return "/users/" + strconv.FormatInt(userID, 10)
}

func deploymentPath(userID, deploymentID int64) string {
	return userPath(userID) + "/deployments/" + strconv.FormatInt(deploymentID, 10)
}
