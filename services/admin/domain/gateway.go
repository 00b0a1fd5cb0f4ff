package domain

import (
	"context"

	"github.com/caelus-deploy/caelus/services/admin/domain/models"
)

// Gateway is the backend the registry and reconciler read from and write to.
// Implementations report failures using the ErrNotFound, ErrValidationFailed
// and ErrTransportFailure taxonomy.
type Gateway interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, productID int64) (*models.Product, error)
	CreateProduct(ctx context.Context, name string, description *string) (*models.Product, error)
	DeleteProduct(ctx context.Context, productID int64) error

	// SetProductTemplate writes the canonical pointer and returns the updated product.
	SetProductTemplate(ctx context.Context, productID, templateID int64) (*models.Product, error)

	ListTemplates(ctx context.Context, productID int64) ([]models.Template, error)
	CreateTemplate(ctx context.Context, productID int64, imageRef *string) (*models.Template, error)
	DeleteTemplate(ctx context.Context, productID, templateID int64) error
}

// Accounts is the backend the CLI manages users, deployments and reconcile
// jobs through. It reports failures with the same taxonomy as Gateway.
type Accounts interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	GetUser(ctx context.Context, userID int64) (*models.User, error)
	CreateUser(ctx context.Context, email string) (*models.User, error)
	DeleteUser(ctx context.Context, userID int64) error

	ListDeployments(ctx context.Context, userID int64) ([]models.Deployment, error)
	GetDeployment(ctx context.Context, userID, deploymentID int64) (*models.Deployment, error)
	CreateDeployment(ctx context.Context, userID int64, in models.NewDeployment) (*models.Deployment, error)
	UpgradeDeployment(ctx context.Context, userID, deploymentID, templateID int64) (*models.Deployment, error)
	DeleteDeployment(ctx context.Context, userID, deploymentID int64) error

	ListJobs(ctx context.Context, f models.JobFilter) ([]models.Job, error)
}
