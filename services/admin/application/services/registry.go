package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/caelus-deploy/caelus/pkg/logger"
	"github.com/caelus-deploy/caelus/services/admin/domain"
	"github.com/caelus-deploy/caelus/services/admin/domain/models"
	domainsvcs "github.com/caelus-deploy/caelus/services/admin/domain/services"
)

// Registry reads and mutates the template versions of products through the
// gateway. It never writes a product's canonical pointer.
type Registry struct {
	gw  domain.Gateway
	log logger.Logger
}

// NewRegistry returns a Registry backed by gw.
func NewRegistry(gw domain.Gateway, log logger.Logger) *Registry {
	return &Registry{gw: gw, log: log}
}

// Products returns every active product with its current pointer.
func (r *Registry) Products(ctx context.Context) ([]models.Product, error) {
	return r.gw.ListProducts(ctx)
}

// Product returns one product with its current pointer.
func (r *Registry) Product(ctx context.Context, productID int64) (*models.Product, error) {
	if err := validateIDs(productID); err != nil {
		return nil, err
	}
	return r.gw.GetProduct(ctx, productID)
}

// CreateProduct adds a product. It has no templates and no canonical pointer.
func (r *Registry) CreateProduct(ctx context.Context, name string, description *string) (*models.Product, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: product name is required", domain.ErrValidationFailed)
	}
	p, err := r.gw.CreateProduct(ctx, name, description)
	if err != nil {
		return nil, err
	}
	r.log.InfoContext(ctx, "product created", "product_id", p.ID)
	return p, nil
}

// DeleteProduct removes a product together with its templates.
func (r *Registry) DeleteProduct(ctx context.Context, productID int64) error {
	if err := validateIDs(productID); err != nil {
		return err
	}
	if err := r.gw.DeleteProduct(ctx, productID); err != nil {
		return err
	}
	r.log.InfoContext(ctx, "product deleted", "product_id", productID)
	return nil
}

// ListTemplates returns the product's templates in the order the gateway
// stores them. An empty slice is a valid result; an unknown product is ErrNotFound.
func (r *Registry) ListTemplates(ctx context.Context, productID int64) ([]models.Template, error) {
	if err := validateIDs(productID); err != nil {
		return nil, err
	}
	templates, err := r.gw.ListTemplates(ctx, productID)
	if err != nil {
		return nil, err
	}
	if templates == nil {
		templates = []models.Template{}
	}
	return templates, nil
}

// ListTemplatesNewestFirst is ListTemplates in canonical order.
func (r *Registry) ListTemplatesNewestFirst(ctx context.Context, productID int64) ([]models.Template, error) {
	templates, err := r.ListTemplates(ctx, productID)
	if err != nil {
		return nil, err
	}
	return domainsvcs.SortNewestFirst(templates), nil
}

// CreateTemplate adds a template to the product. The new template is not canonical.
func (r *Registry) CreateTemplate(ctx context.Context, productID int64, imageRef *string) (*models.Template, error) {
	if err := validateIDs(productID); err != nil {
		return nil, err
	}
	t, err := r.gw.CreateTemplate(ctx, productID, imageRef)
	if err != nil {
		return nil, err
	}
	r.log.InfoContext(ctx, "template created", "product_id", productID, "template_id", t.ID)
	return t, nil
}

// DeleteTemplate removes a template owned by the product.
func (r *Registry) DeleteTemplate(ctx context.Context, productID, templateID int64) error {
	if err := validateIDs(productID, templateID); err != nil {
		return err
	}
	if err := r.gw.DeleteTemplate(ctx, productID, templateID); err != nil {
		return err
	}
	r.log.InfoContext(ctx, "template deleted", "product_id", productID, "template_id", templateID)
	return nil
}

func validateIDs(ids ...int64) error {
	for _, id := range ids {
		if id <= 0 {
			return fmt.Errorf("%w: id must be positive, got %d", domain.ErrValidationFailed, id)
		}
	}
	return nil
}
