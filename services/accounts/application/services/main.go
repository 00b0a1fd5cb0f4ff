package services

import (
	"github.com/caelus-deploy/caelus/pkg/app"
	"github.com/caelus-deploy/caelus/pkg/logger"
	"github.com/caelus-deploy/caelus/services/accounts/domain/repositories"
	"github.com/caelus-deploy/caelus/services/accounts/infrastructure/persistence/postgres"
)

// Services is the application-layer service container for the accounts bounded context.
type Services struct {
	User       *UserService
	Deployment *DeploymentService
	Job        *JobService
}

// New wires the accounts services with Postgres repositories and the outbox
// event bus. catalog resolves the templates deployments run.
func New(a *app.Application, catalog repositories.TemplateCatalog) *Services {
	return NewWithRepositories(
		postgres.NewUserRepository(a.Db),
		postgres.NewDeploymentRepository(a.Db, a.EventBus),
		postgres.NewJobRepository(a.Db),
		catalog,
		a.Logger,
	)
}

// NewWithRepositories wires the accounts services over arbitrary repositories.
func NewWithRepositories(
	users repositories.UserRepository,
	deployments repositories.DeploymentRepository,
	jobs repositories.JobRepository,
	catalog repositories.TemplateCatalog,
	log logger.Logger,
) *Services {
	return &Services{
		User:       NewUserService(users, log),
		Deployment: NewDeploymentService(deployments, users, catalog, log),
		Job:        NewJobService(jobs, catalog, log),
	}
}
