package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/caelus-deploy/caelus/pkg/app"
	"github.com/caelus-deploy/caelus/services/accounts/application/handlers"
	appsvcs "github.com/caelus-deploy/caelus/services/accounts/application/services"
	"github.com/caelus-deploy/caelus/services/accounts/infrastructure/catalog"
	catalogsvcs "github.com/caelus-deploy/caelus/services/catalog/application/services"
)

// AccountsRoutes registers user, deployment and job endpoints on the provided
// chi router. Deployments resolve templates through the catalog services.
func AccountsRoutes(r chi.Router, a *app.Application, catalogSvcs *catalogsvcs.Services) {
	Mount(r, appsvcs.New(a, catalog.NewAdapter(catalogSvcs)))
}

// Mount registers the accounts endpoints backed by svcs.
func Mount(r chi.Router, svcs *appsvcs.Services) {
	users := handlers.NewUserHandler(svcs)
	deployments := handlers.NewDeploymentHandler(svcs)
	jobs := handlers.NewJobHandler(svcs)

	r.Route("/users", func(r chi.Router) {
		r.Post("/", users.Create)
		r.Get("/", users.List)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", users.Get)
			r.Delete("/", users.Delete)

			r.Route("/deployments", func(r chi.Router) {
				r.Post("/", deployments.Create)
				r.Get("/", deployments.List)
				r.Get("/{deploymentId}", deployments.Get)
				r.Patch("/{deploymentId}", deployments.Upgrade)
				r.Delete("/{deploymentId}", deployments.Delete)
			})
		})
	})

	r.Get("/jobs", jobs.List)
}
