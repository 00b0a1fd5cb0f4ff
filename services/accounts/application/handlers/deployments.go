package handlers

import (
	"net/http"

	"github.com/caelus-deploy/caelus/pkg/errhttp"
	"github.com/caelus-deploy/caelus/pkg/httpx"
	pkgvalidator "github.com/caelus-deploy/caelus/pkg/validator"
	appsvcs "github.com/caelus-deploy/caelus/services/accounts/application/services"
	domainsvcs "github.com/caelus-deploy/caelus/services/accounts/domain/services"
)

// ErrorResponse is returned on all error responses.
type ErrorResponse struct {
	Error string `json:"error" example:"user not found"`
} // @name AccountsErrorResponse

// DeploymentHandler serves /users/{id}/deployments.
type DeploymentHandler struct {
	svc *appsvcs.Services
}

// NewDeploymentHandler returns a DeploymentHandler backed by the given services.
func NewDeploymentHandler(svc *appsvcs.Services) *DeploymentHandler {
	return &DeploymentHandler{svc: svc}
}

// Create deploys a template for a user.
//
//	@Summary		Create deployment
//	@Description	Deploys template_id, or the canonical template of product_id when template_id is omitted.
//	@Description	user_values_json must satisfy the template's user values schema. A create job is queued.
//	@Tags			deployments
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int						true	"User ID"
//	@Param			request	body		CreateDeploymentRequest	true	"Deployment creation request"
//	@Success		201		{object}	DeploymentResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Router			/users/{id}/deployments [post]
func (h *DeploymentHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := httpx.PathID(r, "id")
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	req, ok := pkgvalidator.ValidateRequest[CreateDeploymentRequest](w, r)
	if !ok {
		return
	}

	sel := domainsvcs.TemplateSelector{TemplateID: req.TemplateID, ProductID: req.ProductID}
	d, err := h.svc.Deployment.Create(r.Context(), userID, sel, req.Domainname, req.UserValues)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toDeploymentResponse(d))
}

// List returns a user's deployments.
//
//	@Summary		List deployments
//	@Tags			deployments
//	@Produce		json
//	@Param			id	path	int	true	"User ID"
//	@Success		200	{array}	DeploymentResponse
//	@Failure		404	{object}	ErrorResponse
//	@Router			/users/{id}/deployments [get]
func (h *DeploymentHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := httpx.PathID(r, "id")
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	deployments, err := h.svc.Deployment.List(r.Context(), userID)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	out := make([]DeploymentResponse, len(deployments))
	for i, d := range deployments {
		out[i] = toDeploymentResponse(d)
	}
	httpx.JSON(w, http.StatusOK, out)
}

// Get returns one deployment of a user.
//
//	@Summary		Get deployment
//	@Tags			deployments
//	@Produce		json
//	@Param			id				path		int	true	"User ID"
//	@Param			deploymentId	path		int	true	"Deployment ID"
//	@Success		200				{object}	DeploymentResponse
//	@Failure		404				{object}	ErrorResponse
//	@Router			/users/{id}/deployments/{deploymentId} [get]
func (h *DeploymentHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, deploymentID, err := deploymentPath(r)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	d, err := h.svc.Deployment.Get(r.Context(), userID, deploymentID)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toDeploymentResponse(d))
}

// Upgrade moves a deployment to a newer template of the same product.
//
//	@Summary		Upgrade deployment
//	@Description	Points the deployment at template_id and queues an update job. Only newer templates of the same product are accepted.
//	@Tags			deployments
//	@Accept			json
//	@Produce		json
//	@Param			id				path		int							true	"User ID"
//	@Param			deploymentId	path		int							true	"Deployment ID"
//	@Param			request			body		UpgradeDeploymentRequest	true	"Upgrade request"
//	@Success		200				{object}	DeploymentResponse
//	@Failure		404				{object}	ErrorResponse
//	@Failure		409				{object}	ErrorResponse
//	@Failure		422				{object}	ErrorResponse
//	@Router			/users/{id}/deployments/{deploymentId} [patch]
func (h *DeploymentHandler) Upgrade(w http.ResponseWriter, r *http.Request) {
	userID, deploymentID, err := deploymentPath(r)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	req, ok := pkgvalidator.ValidateRequest[UpgradeDeploymentRequest](w, r)
	if !ok {
		return
	}
	d, err := h.svc.Deployment.Upgrade(r.Context(), userID, deploymentID, req.TemplateID)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toDeploymentResponse(d))
}

// Delete removes a deployment of a user.
//
//	@Summary		Delete deployment
//	@Description	Hides the deployment and queues a delete job.
//	@Tags			deployments
//	@Param			id				path	int	true	"User ID"
//	@Param			deploymentId	path	int	true	"Deployment ID"
//	@Success		204
//	@Failure		404	{object}	ErrorResponse
//	@Failure		409	{object}	ErrorResponse
//	@Router			/users/{id}/deployments/{deploymentId} [delete]
func (h *DeploymentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, deploymentID, err := deploymentPath(r)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	if err := h.svc.Deployment.Delete(r.Context(), userID, deploymentID); err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.NoContent(w)
}

func deploymentPath(r *http.Request) (userID, deploymentID int64, err error) {
	if userID, err = httpx.PathID(r, "id"); err != nil {
		return 0, 0, err
	}
	if deploymentID, err = httpx.PathID(r, "deploymentId"); err != nil {
		return 0, 0, err
	}
	return userID, deploymentID, nil
}
