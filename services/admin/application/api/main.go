package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/caelus-deploy/caelus/pkg/auth"
	"github.com/caelus-deploy/caelus/pkg/logger"
	"github.com/caelus-deploy/caelus/pkg/telemetry"
	"github.com/caelus-deploy/caelus/services/admin/application/handlers"
	appsvcs "github.com/caelus-deploy/caelus/services/admin/application/services"
)

// AdminRoutes registers the session and operator endpoints. Everything under
// /admin requires an operator identity.
func AdminRoutes(r chi.Router, svcs *appsvcs.Services, store sessions.Store, log logger.Logger) {
	session := handlers.NewSessionHandler(store, log)
	templates := handlers.NewTemplateHandler(svcs)

	r.Route("/session", func(r chi.Router) {
		r.Post("/", session.Create)
		r.Get("/", session.Get)
		r.Delete("/", session.Delete)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(auth.RequireOperator(store, log))
		r.Use(telemetry.SentryOperator)

		r.Get("/products", templates.ListProducts)
		r.Route("/products/{id}", func(r chi.Router) {
			r.Put("/canonical", templates.SetCanonical)
			r.Get("/templates", templates.ListTemplates)
			r.Post("/templates", templates.CreateTemplate)
			r.Delete("/templates/{templateId}", templates.DeleteTemplate)
		})
	})
}
