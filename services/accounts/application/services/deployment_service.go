package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/caelus-deploy/caelus/pkg/logger"
	"github.com/caelus-deploy/caelus/pkg/values"
	accountsdomain "github.com/caelus-deploy/caelus/services/accounts/domain"
	"github.com/caelus-deploy/caelus/services/accounts/domain/models"
	"github.com/caelus-deploy/caelus/services/accounts/domain/repositories"
	domainsvcs "github.com/caelus-deploy/caelus/services/accounts/domain/services"
)

// DeploymentService manages a user's deployments. Every change that alters
// what should run queues a reconcile job; see JobService for the other half.
type DeploymentService struct {
	repo    repositories.DeploymentRepository
	users   repositories.UserRepository
	catalog repositories.TemplateCatalog
	uids    *domainsvcs.UIDGenerator
	log     logger.Logger
}

// NewDeploymentService returns a DeploymentService.
func NewDeploymentService(
	repo repositories.DeploymentRepository,
	users repositories.UserRepository,
	catalog repositories.TemplateCatalog,
	log logger.Logger,
) *DeploymentService {
	return &DeploymentService{
		repo:    repo,
		users:   users,
		catalog: catalog,
		uids:    domainsvcs.NewUIDGenerator(),
		log:     log,
	}
}

// Create deploys a template for a user. The template is chosen by sel; when
// only a product is named its canonical template is used at this moment.
// userValues must satisfy the template's user schema.
func (s *DeploymentService) Create(
	ctx context.Context,
	userID int64,
	sel domainsvcs.TemplateSelector,
	domainname string,
	userValues json.RawMessage,
) (*models.Deployment, error) {
	name, err := models.NewDomainname(domainname)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", accountsdomain.ErrInvalidDeployment, err)
	}
	userValues = values.AbsentIfNull(userValues)
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	templateID, err := domainsvcs.ResolveTemplate(ctx, s.catalog, sel)
	if err != nil {
		return nil, fmt.Errorf("resolve template: %w", err)
	}
	tmpl, err := s.catalog.Template(ctx, templateID)
	if err != nil {
		return nil, fmt.Errorf("get template: %w", err)
	}
	if _, err := domainsvcs.RenderValues(tmpl, userValues); err != nil {
		return nil, err
	}
	uid, err := s.uids.New(tmpl.ProductName, user.Email.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", accountsdomain.ErrInvalidDeployment, err)
	}

	d := &models.Deployment{
		UID:        uid,
		UserID:     userID,
		TemplateID: templateID,
		Domainname: name,
		UserValues: userValues,
	}
	if err := s.repo.Save(ctx, d); err != nil {
		return nil, fmt.Errorf("save deployment: %w", err)
	}
	s.log.InfoContext(ctx, "deployment created",
		"user_id", userID, "deployment_id", d.ID, "deployment_uid", uid, "template_id", templateID)
	return d, nil
}

// Upgrade moves a deployment to a newer template of the same product. The
// deployment's user values must satisfy the target template's schema.
func (s *DeploymentService) Upgrade(ctx context.Context, userID, id, templateID int64) (*models.Deployment, error) {
	d, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("get deployment: %w", err)
	}
	target, err := s.catalog.Template(ctx, templateID)
	if err != nil {
		return nil, fmt.Errorf("get template: %w", err)
	}
	current, err := s.catalog.Template(ctx, d.TemplateID)
	switch {
	case errors.Is(err, accountsdomain.ErrTemplateNotFound):
		// The running template was deleted; only the version order is checked.
		current = nil
	case err != nil:
		return nil, fmt.Errorf("get current template: %w", err)
	}
	if err := domainsvcs.CheckUpgrade(d, current, target); err != nil {
		return nil, err
	}
	if _, err := domainsvcs.RenderValues(target, d.UserValues); err != nil {
		return nil, err
	}

	upgraded, err := s.repo.Upgrade(ctx, userID, id, templateID)
	if err != nil {
		return nil, fmt.Errorf("upgrade deployment: %w", err)
	}
	s.log.InfoContext(ctx, "deployment upgrade queued",
		"user_id", userID, "deployment_id", id,
		"from_template_id", d.TemplateID, "template_id", templateID,
		"generation", upgraded.Generation)
	return upgraded, nil
}

// Get returns one deployment of a user.
func (s *DeploymentService) Get(ctx context.Context, userID, id int64) (*models.Deployment, error) {
	d, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("get deployment: %w", err)
	}
	return d, nil
}

// List returns the active deployments of an active user.
func (s *DeploymentService) List(ctx context.Context, userID int64) ([]*models.Deployment, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	deployments, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list deployments: %w", err)
	}
	return deployments, nil
}

// Delete hides a deployment of a user and queues the teardown of its release.
func (s *DeploymentService) Delete(ctx context.Context, userID, id int64) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return fmt.Errorf("delete deployment: %w", err)
	}
	s.log.InfoContext(ctx, "deployment delete queued", "user_id", userID, "deployment_id", id)
	return nil
}
