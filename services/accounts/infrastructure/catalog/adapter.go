// Package catalog adapts the catalog bounded context to the accounts
// TemplateCatalog port.
package catalog

import (
	"context"
	"errors"
	"fmt"

	accountsdomain "github.com/caelus-deploy/caelus/services/accounts/domain"
	"github.com/caelus-deploy/caelus/services/accounts/domain/models"
	catalogsvcs "github.com/caelus-deploy/caelus/services/catalog/application/services"
	catalogdomain "github.com/caelus-deploy/caelus/services/catalog/domain"
)

// Adapter implements repositories.TemplateCatalog over the catalog services.
type Adapter struct {
	svcs *catalogsvcs.Services
}

// NewAdapter returns an Adapter reading from svcs.
func NewAdapter(svcs *catalogsvcs.Services) *Adapter {
	return &Adapter{svcs: svcs}
}

// Template returns an active template together with its product's name and
// the template's values.
func (a *Adapter) Template(ctx context.Context, templateID int64) (*models.TemplateInfo, error) {
	t, err := a.svcs.Template.Find(ctx, templateID)
	if err != nil {
		if errors.Is(err, catalogdomain.ErrTemplateNotFound) {
			return nil, fmt.Errorf("%w: %d", accountsdomain.ErrTemplateNotFound, templateID)
		}
		return nil, err
	}
	p, err := a.svcs.Product.GetByID(ctx, t.ProductID)
	if err != nil {
		return nil, fmt.Errorf("template %d product: %w", templateID, err)
	}
	return &models.TemplateInfo{
		ID:            t.ID,
		ProductID:     t.ProductID,
		ProductName:   p.Name.String(),
		DefaultValues: t.Values.Defaults,
		ValuesSchema:  t.Values.Schema,
	}, nil
}

// CanonicalTemplate returns the product's canonical template. An unknown
// product surfaces as the catalog's ErrProductNotFound.
func (a *Adapter) CanonicalTemplate(ctx context.Context, productID int64) (int64, error) {
	p, err := a.svcs.Product.GetByID(ctx, productID)
	if err != nil {
		return 0, err
	}
	if p.TemplateID == nil {
		return 0, fmt.Errorf("%w: product %d", accountsdomain.ErrNoCanonicalTemplate, productID)
	}
	return *p.TemplateID, nil
}
