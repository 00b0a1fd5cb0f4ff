package handlers

import (
	"encoding/json"
	"time"

	"github.com/caelus-deploy/caelus/services/catalog/domain/models"
)

// CreateProductRequest is the request body for POST /products.
type CreateProductRequest struct {
	Name        string  `json:"name"        validate:"required,notblank,max=255" example:"caelus-web"`
	Description *string `json:"description" validate:"omitempty,max=4096" example:"Public website"`
} // @name CreateProductRequest

// UpdateProductRequest is the request body for PUT /products/{id}.
type UpdateProductRequest struct {
	TemplateID *int64 `json:"template_id" validate:"required,gt=0" example:"12"`
} // @name UpdateProductRequest

// CreateTemplateRequest is the request body for POST /products/{id}/templates.
type CreateTemplateRequest struct {
	ImageRef      *string         `json:"docker_image_url"    validate:"omitempty,max=2048" example:"ghcr.io/caelus/web:1.4.0"`
	DefaultValues json.RawMessage `json:"default_values_json" swaggertype:"object"`
	ValuesSchema  json.RawMessage `json:"values_schema_json"  swaggertype:"object"`
} // @name CreateTemplateRequest

// ProductResponse is the wire form of a product. TemplateID is null when no
// template is canonical.
type ProductResponse struct {
	ID          int64     `json:"id"          example:"1"`
	Name        string    `json:"name"        example:"caelus-web"`
	Description *string   `json:"description" example:"Public website"`
	TemplateID  *int64    `json:"template_id" example:"12"`
	CreatedAt   time.Time `json:"created_at"  example:"2025-01-15T10:30:00Z"`
} // @name ProductResponse

// TemplateResponse is the wire form of a template.
type TemplateResponse struct {
	ID            int64           `json:"id"                            example:"12"`
	ImageRef      *string         `json:"docker_image_url"              example:"ghcr.io/caelus/web:1.4.0"`
	ProductID     int64           `json:"product_id"                    example:"1"`
	DefaultValues json.RawMessage `json:"default_values_json,omitempty" swaggertype:"object"`
	ValuesSchema  json.RawMessage `json:"values_schema_json,omitempty"  swaggertype:"object"`
	CreatedAt     time.Time       `json:"created_at"                    example:"2025-01-15T10:30:00Z"`
} // @name TemplateResponse

// ErrorResponse is returned on all error responses.
type ErrorResponse struct {
	Error string `json:"error" example:"product not found"`
} // @name ErrorResponse

func toProductResponse(p *models.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Name:        p.Name.String(),
		Description: p.Description,
		TemplateID:  p.TemplateID,
		CreatedAt:   p.CreatedAt,
	}
}

func toTemplateResponse(t *models.Template) TemplateResponse {
	return TemplateResponse{
		ID:            t.ID,
		ImageRef:      t.ImageRef,
		ProductID:     t.ProductID,
		DefaultValues: t.Values.Defaults,
		ValuesSchema:  t.Values.Schema,
		CreatedAt:     t.CreatedAt,
	}
}
