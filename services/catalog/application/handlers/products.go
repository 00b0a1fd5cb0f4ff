package handlers

import (
	"net/http"

	"github.com/caelus-deploy/caelus/pkg/errhttp"
	"github.com/caelus-deploy/caelus/pkg/httpx"
	pkgvalidator "github.com/caelus-deploy/caelus/pkg/validator"
	appsvcs "github.com/caelus-deploy/caelus/services/catalog/application/services"
)

// ProductHandler serves the /products resource.
type ProductHandler struct {
	svc *appsvcs.Services
}

// NewProductHandler returns a ProductHandler backed by the given services.
func NewProductHandler(svc *appsvcs.Services) *ProductHandler {
	return &ProductHandler{svc: svc}
}

// Create creates a product without a canonical template.
//
//	@Summary		Create product
//	@Tags			products
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateProductRequest	true	"Product creation request"
//	@Success		201		{object}	ProductResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Router			/products [post]
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[CreateProductRequest](w, r)
	if !ok {
		return
	}

	p, err := h.svc.Product.Create(r.Context(), req.Name, req.Description)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toProductResponse(p))
}

// List returns all active products.
//
//	@Summary		List products
//	@Tags			products
//	@Produce		json
//	@Success		200	{array}	ProductResponse
//	@Router			/products [get]
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.svc.Product.List(r.Context())
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	out := make([]ProductResponse, len(products))
	for i, p := range products {
		out[i] = toProductResponse(p)
	}
	httpx.JSON(w, http.StatusOK, out)
}

// Get returns one product.
//
//	@Summary		Get product
//	@Tags			products
//	@Produce		json
//	@Param			id	path		int	true	"Product ID"
//	@Success		200	{object}	ProductResponse
//	@Failure		404	{object}	ErrorResponse
//	@Router			/products/{id} [get]
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	p, err := h.svc.Product.GetByID(r.Context(), id)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toProductResponse(p))
}

// Update writes the product's canonical template pointer.
//
//	@Summary		Set canonical template
//	@Description	Points the product at one of its own templates. Last writer wins.
//	@Tags			products
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int						true	"Product ID"
//	@Param			request	body		UpdateProductRequest	true	"Canonical template"
//	@Success		200		{object}	ProductResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Router			/products/{id} [put]
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	req, ok := pkgvalidator.ValidateRequest[UpdateProductRequest](w, r)
	if !ok {
		return
	}

	p, err := h.svc.Product.SetCanonical(r.Context(), id, *req.TemplateID)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toProductResponse(p))
}

// Delete soft-deletes a product.
//
//	@Summary		Delete product
//	@Tags			products
//	@Param			id	path	int	true	"Product ID"
//	@Success		204
//	@Failure		404	{object}	ErrorResponse
//	@Router			/products/{id} [delete]
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	if err := h.svc.Product.Delete(r.Context(), id); err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.NoContent(w)
}
