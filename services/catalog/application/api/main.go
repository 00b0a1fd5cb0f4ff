package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/caelus-deploy/caelus/pkg/app"
	"github.com/caelus-deploy/caelus/services/catalog/application/handlers"
	appsvcs "github.com/caelus-deploy/caelus/services/catalog/application/services"
)

// CatalogRoutes registers product and template endpoints on the provided chi
// router and returns the wired services for other bounded contexts to reuse.
func CatalogRoutes(r chi.Router, a *app.Application) *appsvcs.Services {
	svcs := appsvcs.New(a)
	Mount(r, svcs)
	return svcs
}

// Mount registers the catalog endpoints backed by svcs.
func Mount(r chi.Router, svcs *appsvcs.Services) {
	products := handlers.NewProductHandler(svcs)
	templates := handlers.NewTemplateHandler(svcs)

	r.Route("/products", func(r chi.Router) {
		r.Post("/", products.Create)
		r.Get("/", products.List)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", products.Get)
			r.Put("/", products.Update)
			r.Delete("/", products.Delete)

			r.Route("/templates", func(r chi.Router) {
				r.Post("/", templates.Create)
				r.Get("/", templates.List)
				r.Get("/{templateId}", templates.Get)
				r.Delete("/{templateId}", templates.Delete)
			})
		})
	})
}
