package services

import (
	"context"
	"fmt"

	"github.com/caelus-deploy/caelus/pkg/logger"
	catalogdomain "github.com/caelus-deploy/caelus/services/catalog/domain"
	"github.com/caelus-deploy/caelus/services/catalog/domain/models"
	"github.com/caelus-deploy/caelus/services/catalog/domain/repositories"
	domainsvcs "github.com/caelus-deploy/caelus/services/catalog/domain/services"
)

// TemplateService manages the templates of a product. It never chooses a
// canonical template: creating one leaves the pointer alone, and deleting the
// canonical one only clears it.
type TemplateService struct {
	repo     repositories.TemplateRepository
	products *ProductService
	log      logger.Logger
}

// NewTemplateService returns a TemplateService. products is used to
// invalidate a product's cache entry when a deletion clears its pointer.
func NewTemplateService(repo repositories.TemplateRepository, products *ProductService, log logger.Logger) *TemplateService {
	return &TemplateService{repo: repo, products: products, log: log}
}

// Create validates and persists a new template for productID with no values.
func (s *TemplateService) Create(ctx context.Context, productID int64, imageRef *string) (*models.Template, error) {
	return s.CreateWithValues(ctx, productID, imageRef, models.TemplateValues{})
}

// CreateWithValues validates and persists a new template carrying default
// values and a values schema.
func (s *TemplateService) CreateWithValues(ctx context.Context, productID int64, imageRef *string, vals models.TemplateValues) (*models.Template, error) {
	t := models.NewTemplate(productID, imageRef, vals)
	if err := domainsvcs.ValidateTemplateForCreation(t); err != nil {
		return nil, fmt.Errorf("%w: %w", catalogdomain.ErrInvalidTemplate, err)
	}
	if err := s.repo.Save(ctx, t); err != nil {
		return nil, fmt.Errorf("save template: %w", err)
	}
	s.log.InfoContext(ctx, "template created", "product_id", productID, "template_id", t.ID)
	return t, nil
}

// Get returns one template of a product.
func (s *TemplateService) Get(ctx context.Context, productID, id int64) (*models.Template, error) {
	t, err := s.repo.GetByID(ctx, productID, id)
	if err != nil {
		return nil, fmt.Errorf("get template: %w", err)
	}
	return t, nil
}

// Find returns a template by id regardless of the product it belongs to.
func (s *TemplateService) Find(ctx context.Context, id int64) (*models.Template, error) {
	t, err := s.repo.Find(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find template: %w", err)
	}
	return t, nil
}

// List returns the product's active templates in insertion order.
func (s *TemplateService) List(ctx context.Context, productID int64) ([]*models.Template, error) {
	templates, err := s.repo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	return templates, nil
}

// Delete removes a template. When it was canonical the product's pointer is
// cleared by the repository and the product's cache entry is dropped.
func (s *TemplateService) Delete(ctx context.Context, productID, id int64) error {
	cleared, err := s.repo.Delete(ctx, productID, id)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	if cleared {
		s.products.Invalidate(ctx, productID)
	}
	s.log.InfoContext(ctx, "template deleted", "product_id", productID, "template_id", id, "was_canonical", cleared)
	return nil
}
