package models

import "time"

// Product is the catalog aggregate. TemplateID is the canonical pointer: nil
// means no template is canonical, otherwise it names an active Template of
// this product.
type Product struct {
	ID          int64
	Name        ProductName
	Description *string
	TemplateID  *int64
	CreatedAt   time.Time
}

// NewProduct constructs a Product that has not been persisted yet.
// ID and CreatedAt are assigned by the repository.
func NewProduct(name ProductName, description *string) *Product {
	return &Product{
		Name:        name,
		Description: description,
	}
}

// IsCanonical reports whether templateID is the product's canonical template.
func (p *Product) IsCanonical(templateID int64) bool {
	return p.TemplateID != nil && *p.TemplateID == templateID
}
