// Package services contains stateless domain services for the accounts bounded context.
package services

import (
	"context"
	"fmt"

	accountsdomain "github.com/caelus-deploy/caelus/services/accounts/domain"
	"github.com/caelus-deploy/caelus/services/accounts/domain/repositories"
)

// TemplateSelector names the template a deployment should run: either an
// explicit template, a product whose canonical template is used, or both (the
// template must then belong to the product).
type TemplateSelector struct {
	TemplateID *int64
	ProductID  *int64
}

// ResolveTemplate turns a TemplateSelector into a concrete template id.
func ResolveTemplate(ctx context.Context, catalog repositories.TemplateCatalog, sel TemplateSelector) (int64, error) {
	switch {
	case sel.TemplateID != nil:
		t, err := catalog.Template(ctx, *sel.TemplateID)
		if err != nil {
			return 0, err
		}
		if sel.ProductID != nil && t.ProductID != *sel.ProductID {
			return 0, fmt.Errorf("%w: template %d does not belong to product %d",
				accountsdomain.ErrTemplateNotFound, *sel.TemplateID, *sel.ProductID)
		}
		return *sel.TemplateID, nil
	case sel.ProductID != nil:
		return catalog.CanonicalTemplate(ctx, *sel.ProductID)
	default:
		return 0, fmt.Errorf("%w: template_id or product_id is required", accountsdomain.ErrInvalidDeployment)
	}
}
