package handlers

import (
	"encoding/json"
	"time"

	"github.com/caelus-deploy/caelus/services/accounts/domain/models"
)

// CreateUserRequest is the request body for POST /users.
type CreateUserRequest struct {
	Email string `json:"email" validate:"required,email" example:"dev@caelus.example"`
} // @name CreateUserRequest

// CreateDeploymentRequest is the request body for POST /users/{id}/deployments.
// At least one of template_id and product_id is required; with only
// product_id the product's canonical template is deployed.
type CreateDeploymentRequest struct {
	TemplateID *int64          `json:"template_id"      validate:"required_without=ProductID,omitempty,gt=0" example:"12"`
	ProductID  *int64          `json:"product_id"       validate:"omitempty,gt=0"                            example:"1"`
	Domainname string          `json:"domainname"       validate:"required,hostname_rfc1123"                 example:"shop.example.com"`
	UserValues json.RawMessage `json:"user_values_json" swaggertype:"object"`
} // @name CreateDeploymentRequest

// UpgradeDeploymentRequest is the request body for PATCH /users/{id}/deployments/{deploymentId}.
type UpgradeDeploymentRequest struct {
	TemplateID int64 `json:"template_id" validate:"required,gt=0" example:"13"`
} // @name UpgradeDeploymentRequest

// JobListQuery holds the GET /jobs query parameters.
type JobListQuery struct {
	Status       string `json:"status"        validate:"omitempty,oneof=queued running done failed"`
	DeploymentID int64  `json:"deployment_id" validate:"gte=0"`
	Limit        int64  `json:"limit"         validate:"gte=0,lte=500"`
}

// UserResponse is the wire form of a user.
type UserResponse struct {
	ID        int64     `json:"id"         example:"1"`
	Email     string    `json:"email"      example:"dev@caelus.example"`
	CreatedAt time.Time `json:"created_at" example:"2025-01-15T10:30:00Z"`
} // @name UserResponse

// DeploymentResponse is the wire form of a deployment. template_id is the
// desired template; applied_template_id is the one last rolled out.
type DeploymentResponse struct {
	ID                int64           `json:"id"                  example:"3"`
	UID               string          `json:"deployment_uid"      example:"web-shop-dev-caelus-example-a1b2c3"`
	UserID            int64           `json:"user_id"             example:"1"`
	TemplateID        int64           `json:"template_id"         example:"12"`
	AppliedTemplateID *int64          `json:"applied_template_id" example:"12"`
	Domainname        string          `json:"domainname"          example:"shop.example.com"`
	UserValues        json.RawMessage `json:"user_values_json"    swaggertype:"object"`
	Status            string          `json:"status"              example:"ready"`
	Generation        int64           `json:"generation"          example:"1"`
	LastError         *string         `json:"last_error"`
	CreatedAt         time.Time       `json:"created_at"          example:"2025-01-15T10:30:00Z"`
} // @name DeploymentResponse

// JobResponse is the wire form of a reconcile job.
type JobResponse struct {
	ID           int64     `json:"id"            example:"9"`
	DeploymentID int64     `json:"deployment_id" example:"3"`
	Reason       string    `json:"reason"        example:"update"`
	Generation   int64     `json:"generation"    example:"2"`
	Status       string    `json:"status"        example:"queued"`
	LockedBy     *string   `json:"locked_by"`
	LastError    *string   `json:"last_error"`
	CreatedAt    time.Time `json:"created_at"    example:"2025-01-15T10:30:00Z"`
	UpdatedAt    time.Time `json:"updated_at"    example:"2025-01-15T10:30:05Z"`
} // @name JobResponse

func toUserResponse(u *models.User) UserResponse {
	return UserResponse{ID: u.ID, Email: u.Email.String(), CreatedAt: u.CreatedAt}
}

func toDeploymentResponse(d *models.Deployment) DeploymentResponse {
	return DeploymentResponse{
		ID:                d.ID,
		UID:               d.UID,
		UserID:            d.UserID,
		TemplateID:        d.TemplateID,
		AppliedTemplateID: d.AppliedTemplateID,
		Domainname:        d.Domainname.String(),
		UserValues:        d.UserValues,
		Status:            string(d.Status),
		Generation:        d.Generation,
		LastError:         d.LastError,
		CreatedAt:         d.CreatedAt,
	}
}

func toJobResponse(j *models.ReconcileJob) JobResponse {
	return JobResponse{
		ID:           j.ID,
		DeploymentID: j.DeploymentID,
		Reason:       string(j.Reason),
		Generation:   j.Generation,
		Status:       string(j.Status),
		LockedBy:     j.LockedBy,
		LastError:    j.LastError,
		CreatedAt:    j.CreatedAt,
		UpdatedAt:    j.UpdatedAt,
	}
}
