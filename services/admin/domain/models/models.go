package models

import (
	"encoding/json"
	"time"
)

// Product is the operator's view of a catalog product. TemplateID is the
// canonical pointer; nil means unset.
type Product struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	TemplateID  *int64    `json:"template_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// Template is one immutable template version of a product.
type Template struct {
	ID        int64     `json:"id"`
	ImageRef  *string   `json:"docker_image_url"`
	ProductID int64     `json:"product_id"`
	CreatedAt time.Time `json:"created_at"`
}

// User is an account deployments belong to.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Deployment is the operator's view of a user's deployment. TemplateID is
// the desired template; AppliedTemplateID the one last rolled out.
type Deployment struct {
	ID                int64           `json:"id"`
	UID               string          `json:"deployment_uid"`
	UserID            int64           `json:"user_id"`
	TemplateID        int64           `json:"template_id"`
	AppliedTemplateID *int64          `json:"applied_template_id"`
	Domainname        string          `json:"domainname"`
	UserValues        json.RawMessage `json:"user_values_json"`
	Status            string          `json:"status"`
	Generation        int64           `json:"generation"`
	LastError         *string         `json:"last_error"`
	CreatedAt         time.Time       `json:"created_at"`
}

// NewDeployment is the input of a deployment create. With only ProductID set
// the product's canonical template is deployed.
type NewDeployment struct {
	TemplateID *int64          `json:"template_id,omitempty"`
	ProductID  *int64          `json:"product_id,omitempty"`
	Domainname string          `json:"domainname"`
	UserValues json.RawMessage `json:"user_values_json,omitempty"`
}

// Job is one reconcile job of a deployment.
type Job struct {
	ID           int64     `json:"id"`
	DeploymentID int64     `json:"deployment_id"`
	Reason       string    `json:"reason"`
	Generation   int64     `json:"generation"`
	Status       string    `json:"status"`
	LockedBy     *string   `json:"locked_by"`
	LastError    *string   `json:"last_error"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// JobFilter narrows a job listing. Zero fields match everything.
type JobFilter struct {
	Status       string
	DeploymentID int64
	Limit        int
}
