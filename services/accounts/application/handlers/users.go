package handlers

import (
	"net/http"

	"github.com/caelus-deploy/caelus/pkg/errhttp"
	"github.com/caelus-deploy/caelus/pkg/httpx"
	pkgvalidator "github.com/caelus-deploy/caelus/pkg/validator"
	appsvcs "github.com/caelus-deploy/caelus/services/accounts/application/services"
)

// UserHandler serves the /users resource.
type UserHandler struct {
	svc *appsvcs.Services
}

// NewUserHandler returns a UserHandler backed by the given services.
func NewUserHandler(svc *appsvcs.Services) *UserHandler {
	return &UserHandler{svc: svc}
}

// Create registers a user.
//
//	@Summary		Create user
//	@Tags			users
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateUserRequest	true	"User creation request"
//	@Success		201		{object}	UserResponse
//	@Failure		409		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Router			/users [post]
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[CreateUserRequest](w, r)
	if !ok {
		return
	}
	u, err := h.svc.User.Create(r.Context(), req.Email)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toUserResponse(u))
}

// List returns all active users.
//
//	@Summary		List users
//	@Tags			users
//	@Produce		json
//	@Success		200	{array}	UserResponse
//	@Router			/users [get]
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.User.List(r.Context())
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	out := make([]UserResponse, len(users))
	for i, u := range users {
		out[i] = toUserResponse(u)
	}
	httpx.JSON(w, http.StatusOK, out)
}

// Get returns one user.
//
//	@Summary		Get user
//	@Tags			users
//	@Produce		json
//	@Param			id	path		int	true	"User ID"
//	@Success		200	{object}	UserResponse
//	@Failure		404	{object}	ErrorResponse
//	@Router			/users/{id} [get]
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	u, err := h.svc.User.Get(r.Context(), id)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toUserResponse(u))
}

// Delete removes a user and the user's deployments.
//
//	@Summary		Delete user
//	@Tags			users
//	@Param			id	path	int	true	"User ID"
//	@Success		204
//	@Failure		404	{object}	ErrorResponse
//	@Router			/users/{id} [delete]
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	if err := h.svc.User.Delete(r.Context(), id); err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.NoContent(w)
}
