package handlers

import (
	"net/http"

	"github.com/caelus-deploy/caelus/pkg/errhttp"
	"github.com/caelus-deploy/caelus/pkg/httpx"
	pkgvalidator "github.com/caelus-deploy/caelus/pkg/validator"
	appsvcs "github.com/caelus-deploy/caelus/services/catalog/application/services"
	"github.com/caelus-deploy/caelus/services/catalog/domain/models"
)

// TemplateHandler serves /products/{id}/templates.
type TemplateHandler struct {
	svc *appsvcs.Services
}

// NewTemplateHandler returns a TemplateHandler backed by the given services.
func NewTemplateHandler(svc *appsvcs.Services) *TemplateHandler {
	return &TemplateHandler{svc: svc}
}

// Create adds a template to a product. The canonical pointer is not touched.
//
//	@Summary		Create template
//	@Tags			templates
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int						true	"Product ID"
//	@Param			request	body		CreateTemplateRequest	true	"Template creation request"
//	@Success		201		{object}	TemplateResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Router			/products/{id}/templates [post]
func (h *TemplateHandler) Create(w http.ResponseWriter, r *http.Request) {
	productID, err := httpx.PathID(r, "id")
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	req, ok := pkgvalidator.ValidateRequest[CreateTemplateRequest](w, r)
	if !ok {
		return
	}

	vals := models.TemplateValues{Defaults: req.DefaultValues, Schema: req.ValuesSchema}
	t, err := h.svc.Template.CreateWithValues(r.Context(), productID, req.ImageRef, vals)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toTemplateResponse(t))
}

// List returns a product's active templates.
//
//	@Summary		List templates
//	@Tags			templates
//	@Produce		json
//	@Param			id	path	int	true	"Product ID"
//	@Success		200	{array}	TemplateResponse
//	@Failure		404	{object}	ErrorResponse
//	@Router			/products/{id}/templates [get]
func (h *TemplateHandler) List(w http.ResponseWriter, r *http.Request) {
	productID, err := httpx.PathID(r, "id")
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	templates, err := h.svc.Template.List(r.Context(), productID)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	out := make([]TemplateResponse, len(templates))
	for i, t := range templates {
		out[i] = toTemplateResponse(t)
	}
	httpx.JSON(w, http.StatusOK, out)
}

// Get returns one template of a product.
//
//	@Summary		Get template
//	@Tags			templates
//	@Produce		json
//	@Param			id			path		int	true	"Product ID"
//	@Param			templateId	path		int	true	"Template ID"
//	@Success		200			{object}	TemplateResponse
//	@Failure		404			{object}	ErrorResponse
//	@Router			/products/{id}/templates/{templateId} [get]
func (h *TemplateHandler) Get(w http.ResponseWriter, r *http.Request) {
	productID, templateID, err := templatePath(r)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	t, err := h.svc.Template.Get(r.Context(), productID, templateID)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toTemplateResponse(t))
}

// Delete removes a template. Deleting the canonical template clears the
// product's pointer; choosing a replacement is the caller's job.
//
//	@Summary		Delete template
//	@Tags			templates
//	@Param			id			path	int	true	"Product ID"
//	@Param			templateId	path	int	true	"Template ID"
//	@Success		204
//	@Failure		404	{object}	ErrorResponse
//	@Router			/products/{id}/templates/{templateId} [delete]
func (h *TemplateHandler) Delete(w http.ResponseWriter, r *http.Request) {
	productID, templateID, err := templatePath(r)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	if err := h.svc.Template.Delete(r.Context(), productID, templateID); err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.NoContent(w)
}

func templatePath(r *http.Request) (productID, templateID int64, err error) {
	if productID, err = httpx.PathID(r, "id"); err != nil {
		return 0, 0, err
	}
	if templateID, err = httpx.PathID(r, "templateId"); err != nil {
		return 0, 0, err
	}
	return productID, templateID, nil
}
