package services

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/caelus-deploy/caelus/pkg/logger"
	"github.com/caelus-deploy/caelus/services/admin/domain"
	"github.com/caelus-deploy/caelus/services/admin/domain/models"
)

var jobStatuses = []string{"queued", "running", "done", "failed"}

// Accounts manages users, their deployments and the reconcile jobs those
// deployments queue. Checks here only catch input the gateway would reject
// anyway; the gateway stays authoritative.
type Accounts struct {
	acc domain.Accounts
	log logger.Logger
}

// NewAccounts returns an Accounts service backed by acc.
func NewAccounts(acc domain.Accounts, log logger.Logger) *Accounts {
	return &Accounts{acc: acc, log: log}
}

func (a *Accounts) Users(ctx context.Context) ([]models.User, error) {
	return a.acc.ListUsers(ctx)
}

func (a *Accounts) User(ctx context.Context, userID int64) (*models.User, error) {
	if err := validateIDs(userID); err != nil {
		return nil, err
	}
	return a.acc.GetUser(ctx, userID)
}

func (a *Accounts) CreateUser(ctx context.Context, email string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", domain.ErrValidationFailed)
	}
	u, err := a.acc.CreateUser(ctx, email)
	if err != nil {
		return nil, err
	}
	a.log.InfoContext(ctx, "user created", "user_id", u.ID)
	return u, nil
}

// DeleteUser removes a user; the gateway soft-deletes their deployments.
func (a *Accounts) DeleteUser(ctx context.Context, userID int64) error {
	if err := validateIDs(userID); err != nil {
		return err
	}
	if err := a.acc.DeleteUser(ctx, userID); err != nil {
		return err
	}
	a.log.InfoContext(ctx, "user deleted", "user_id", userID)
	return nil
}

func (a *Accounts) Deployments(ctx context.Context, userID int64) ([]models.Deployment, error) {
	if err := validateIDs(userID); err != nil {
		return nil, err
	}
	out, err := a.acc.ListDeployments(ctx, userID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Deployment{}
	}
	return out, nil
}

func (a *Accounts) Deployment(ctx context.Context, userID, deploymentID int64) (*models.Deployment, error) {
	if err := validateIDs(userID, deploymentID); err != nil {
		return nil, err
	}
	return a.acc.GetDeployment(ctx, userID, deploymentID)
}

// CreateDeployment queues a new deployment. Exactly how the template is
// picked is left to the gateway; at least one of TemplateID and ProductID
// must be set.
func (a *Accounts) CreateDeployment(ctx context.Context, userID int64, in models.NewDeployment) (*models.Deployment, error) {
	if err := validateIDs(userID); err != nil {
		return nil, err
	}
	if in.TemplateID == nil && in.ProductID == nil {
		return nil, fmt.Errorf("%w: a template or a product is required", domain.ErrValidationFailed)
	}
	for _, id := range []*int64{in.TemplateID, in.ProductID} {
		if id != nil {
			if err := validateIDs(*id); err != nil {
				return nil, err
			}
		}
	}
	if strings.TrimSpace(in.Domainname) == "" {
		return nil, fmt.Errorf("%w: domainname is required", domain.ErrValidationFailed)
	}
	if len(in.UserValues) > 0 && !json.Valid(in.UserValues) {
		return nil, fmt.Errorf("%w: user values are not valid JSON", domain.ErrValidationFailed)
	}

	d, err := a.acc.CreateDeployment(ctx, userID, in)
	if err != nil {
		return nil, err
	}
	a.log.InfoContext(ctx, "deployment created",
		"user_id", userID,
		"deployment_id", d.ID,
		"template_id", d.TemplateID,
	)
	return d, nil
}

// UpgradeDeployment moves a deployment to a newer template of its product.
func (a *Accounts) UpgradeDeployment(ctx context.Context, userID, deploymentID, templateID int64) (*models.Deployment, error) {
	if err := validateIDs(userID, deploymentID, templateID); err != nil {
		return nil, err
	}
	d, err := a.acc.UpgradeDeployment(ctx, userID, deploymentID, templateID)
	if err != nil {
		return nil, err
	}
	a.log.InfoContext(ctx, "deployment upgrade queued",
		"deployment_id", deploymentID,
		"template_id", templateID,
		"generation", d.Generation,
	)
	return d, nil
}

func (a *Accounts) DeleteDeployment(ctx context.Context, userID, deploymentID int64) error {
	if err := validateIDs(userID, deploymentID); err != nil {
		return err
	}
	if err := a.acc.DeleteDeployment(ctx, userID, deploymentID); err != nil {
		return err
	}
	a.log.InfoContext(ctx, "deployment delete queued", "deployment_id", deploymentID)
	return nil
}

// Jobs lists reconcile jobs, oldest first.
func (a *Accounts) Jobs(ctx context.Context, f models.JobFilter) ([]models.Job, error) {
	if f.Status != "" && !slices.Contains(jobStatuses, f.Status) {
		return nil, fmt.Errorf("%w: status must be one of %s", domain.ErrValidationFailed, strings.Join(jobStatuses, ", "))
	}
	if f.DeploymentID < 0 || f.Limit < 0 {
		return nil, fmt.Errorf("%w: filters must not be negative", domain.ErrValidationFailed)
	}
	out, err := a.acc.ListJobs(ctx, f)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Job{}
	}
	return out, nil
}
