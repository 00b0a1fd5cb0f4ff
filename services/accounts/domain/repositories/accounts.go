package repositories

import (
	"context"

	"github.com/caelus-deploy/caelus/services/accounts/domain/models"
)

// UserRepository is the persistence interface for Users.
// Only active (not soft-deleted) users are visible through it.
type UserRepository interface {
	// Save inserts u and fills in its ID and CreatedAt.
	// Returns ErrUserAlreadyExists when the email is taken by an active user.
	Save(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	Delete(ctx context.Context, id int64) error
}

// DeploymentRepository is the persistence interface for Deployments.
// Deployments are always addressed through their owning user. Every write
// that changes what should be running queues a reconcile job in the same
// transaction; a deployment holds at most one open job, and queueing a
// second returns ErrDeploymentInProgress.
type DeploymentRepository interface {
	// Save inserts d as pending at generation 1, fills in its ID and
	// CreatedAt and queues a create job.
	// Returns ErrDeploymentAlreadyExists for a duplicate (user, domainname, template).
	Save(ctx context.Context, d *models.Deployment) error
	GetByID(ctx context.Context, userID, id int64) (*models.Deployment, error)
	ListByUser(ctx context.Context, userID int64) ([]*models.Deployment, error)

	// Upgrade points an active deployment at templateID, marks it upgrading,
	// bumps its generation and queues an update job.
	Upgrade(ctx context.Context, userID, id, templateID int64) (*models.Deployment, error)

	// Delete marks an active deployment deleting, bumps its generation,
	// hides it from readers and queues a delete job.
	Delete(ctx context.Context, userID, id int64) error
}

// JobRepository is the persistence interface for reconcile jobs.
type JobRepository interface {
	// List returns jobs matching f, oldest first.
	List(ctx context.Context, f models.JobFilter) ([]*models.ReconcileJob, error)

	// Claim moves a queued job to running under worker and returns it with
	// its deployment, soft-deleted or not.
	// Returns ErrJobNotFound when no queued job has that id.
	Claim(ctx context.Context, id int64, worker string) (*models.ReconcileJob, *models.Deployment, error)

	// Finish closes a running job and, while the deployment is still at the
	// job's generation, records the outcome on it. Both happen in one
	// transaction.
	Finish(ctx context.Context, id int64, outcome models.JobOutcome) error
}

// TemplateCatalog is the accounts view of the catalog: just enough to resolve
// which template a deployment runs and with which values.
type TemplateCatalog interface {
	// Template returns an active template with its product's name and values.
	// Returns ErrTemplateNotFound when the template is unknown.
	Template(ctx context.Context, templateID int64) (*models.TemplateInfo, error)

	// CanonicalTemplate returns the product's canonical template.
	// Returns ErrNoCanonicalTemplate when the pointer is unset.
	CanonicalTemplate(ctx context.Context, productID int64) (templateID int64, err error)
}
