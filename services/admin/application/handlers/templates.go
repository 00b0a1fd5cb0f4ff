package handlers

import (
	"net/http"

	"github.com/caelus-deploy/caelus/pkg/errhttp"
	"github.com/caelus-deploy/caelus/pkg/httpx"
	pkgvalidator "github.com/caelus-deploy/caelus/pkg/validator"
	appsvcs "github.com/caelus-deploy/caelus/services/admin/application/services"
)

// TemplateHandler exposes the registry and reconciler to operators.
type TemplateHandler struct {
	svc *appsvcs.Services
}

// NewTemplateHandler returns a TemplateHandler backed by svc.
func NewTemplateHandler(svc *appsvcs.Services) *TemplateHandler {
	return &TemplateHandler{svc: svc}
}

// ListProducts returns every product with its canonical pointer.
//
//	@Summary		List products
//	@Tags			admin
//	@Produce		json
//	@Success		200	{array}		models.Product
//	@Failure		401	{object}	ErrorResponse
//	@Failure		502	{object}	ErrorResponse
//	@Router			/admin/products [get]
func (h *TemplateHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.svc.Registry.Products(r.Context())
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, products)
}

// ListTemplates returns a product's templates, newest first.
//
//	@Summary		List templates
//	@Tags			admin
//	@Produce		json
//	@Param			id	path		int	true	"Product ID"
//	@Success		200	{array}		models.Template
//	@Failure		404	{object}	ErrorResponse
//	@Router			/admin/products/{id}/templates [get]
func (h *TemplateHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	productID, err := httpx.PathID(r, "id")
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	templates, err := h.svc.Registry.ListTemplatesNewestFirst(r.Context(), productID)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, templates)
}

// CreateTemplate adds a template and promotes it if the product had none.
//
//	@Summary		Create template
//	@Tags			admin
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int							true	"Product ID"
//	@Param			request	body		CreateTemplateRequest		true	"Template"
//	@Success		201		{object}	services.CreateResult
//	@Failure		404		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Router			/admin/products/{id}/templates [post]
func (h *TemplateHandler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	productID, err := httpx.PathID(r, "id")
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	req, ok := pkgvalidator.ValidateRequest[CreateTemplateRequest](w, r)
	if !ok {
		return
	}
	res, err := h.svc.Reconciler.CreateTemplate(r.Context(), productID, req.ImageRef)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, res)
}

// DeleteTemplate deletes a template, promoting the newest remaining one when
// the deleted template was canonical.
//
//	@Summary		Delete template
//	@Tags			admin
//	@Produce		json
//	@Param			id			path		int	true	"Product ID"
//	@Param			templateId	path		int	true	"Template ID"
//	@Success		200			{object}	services.DeleteResult
//	@Failure		404			{object}	ErrorResponse
//	@Router			/admin/products/{id}/templates/{templateId} [delete]
func (h *TemplateHandler) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	productID, err := httpx.PathID(r, "id")
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	templateID, err := httpx.PathID(r, "templateId")
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	res, err := h.svc.Reconciler.DeleteTemplate(r.Context(), productID, templateID)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, res)
}

// SetCanonical points the product at one of its templates.
//
//	@Summary		Set canonical template
//	@Tags			admin
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int					true	"Product ID"
//	@Param			request	body		SetCanonicalRequest	true	"Template"
//	@Success		200		{object}	models.Product
//	@Failure		404		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Router			/admin/products/{id}/canonical [put]
func (h *TemplateHandler) SetCanonical(w http.ResponseWriter, r *http.Request) {
	productID, err := httpx.PathID(r, "id")
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	req, ok := pkgvalidator.ValidateRequest[SetCanonicalRequest](w, r)
	if !ok {
		return
	}
	p, err := h.svc.Reconciler.SetCanonical(r.Context(), productID, req.TemplateID)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}
