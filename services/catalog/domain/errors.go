package domain

import "errors"

// Sentinel errors for the catalog domain. Use errors.Is() to check these.
var (
	// ErrProductNotFound indicates the product does not exist or was deleted.
	ErrProductNotFound = errors.New("product not found")

	// ErrProductAlreadyExists indicates an active product with the same name exists.
	ErrProductAlreadyExists = errors.New("product already exists")

	// ErrInvalidProduct indicates the product fields violate domain constraints.
	ErrInvalidProduct = errors.New("invalid product")

	// ErrTemplateNotFound indicates the template does not exist, was deleted,
	// or does not belong to the product it was addressed through.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrTemplateAlreadyExists indicates the product already has an active
	// template with the same image reference.
	ErrTemplateAlreadyExists = errors.New("template already exists")

	// ErrInvalidTemplate indicates the template fields violate domain constraints.
	ErrInvalidTemplate = errors.New("invalid template")
)
