package repositories

import (
	"context"

	"github.com/caelus-deploy/caelus/services/catalog/domain/models"
)

// ProductRepository is the persistence interface for the Product aggregate.
// Only active (not soft-deleted) products are visible through it.
type ProductRepository interface {
	// Save inserts p and fills in its ID and CreatedAt.
	// Returns ErrProductAlreadyExists when an active product has the same name.
	Save(ctx context.Context, p *models.Product) error
	GetByID(ctx context.Context, id int64) (*models.Product, error)
	List(ctx context.Context) ([]*models.Product, error)

	// SetTemplate points the product at templateID and returns the updated product.
	// Returns ErrTemplateNotFound when templateID is not an active template of the product.
	SetTemplate(ctx context.Context, productID, templateID int64) (*models.Product, error)

	// Delete soft-deletes the product.
	Delete(ctx context.Context, id int64) error
}

// TemplateRepository is the persistence interface for Templates.
type TemplateRepository interface {
	// Save inserts t and fills in its ID and CreatedAt. Never touches the
	// product's canonical pointer.
	Save(ctx context.Context, t *models.Template) error
	GetByID(ctx context.Context, productID, id int64) (*models.Template, error)

	// Find returns an active template of an active product by id alone.
	Find(ctx context.Context, id int64) (*models.Template, error)

	// ListByProduct returns the product's active templates in insertion order.
	// Returns ErrProductNotFound for an unknown product.
	ListByProduct(ctx context.Context, productID int64) ([]*models.Template, error)

	// Delete soft-deletes the template. When the product pointed at it, the
	// pointer is cleared in the same transaction and clearedCanonical is true.
	Delete(ctx context.Context, productID, id int64) (clearedCanonical bool, err error)
}
