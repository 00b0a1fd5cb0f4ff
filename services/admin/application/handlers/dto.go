package handlers

// SessionRequest is the request body for POST /session.
type SessionRequest struct {
	Email string `json:"email" validate:"required,email,max=254" example:"ops@caelus.example"`
} // @name SessionRequest

// SessionResponse reports the operator identity the admin API acts as.
type SessionResponse struct {
	Email  string `json:"email"  example:"ops@caelus.example"`
	Source string `json:"source" example:"session" enums:"header,session"`
} // @name SessionResponse

// CreateTemplateRequest is the request body for POST /admin/products/{id}/templates.
type CreateTemplateRequest struct {
	ImageRef *string `json:"docker_image_url" validate:"omitempty,max=2048" example:"ghcr.io/caelus/web:1.4.0"`
} // @name AdminCreateTemplateRequest

// SetCanonicalRequest is the request body for PUT /admin/products/{id}/canonical.
type SetCanonicalRequest struct {
	TemplateID int64 `json:"template_id" validate:"required,gt=0" example:"12"`
} // @name SetCanonicalRequest

// ErrorResponse is returned on all error responses.
type ErrorResponse struct {
	Error string `json:"error" example:"not found"`
} // @name AdminErrorResponse
