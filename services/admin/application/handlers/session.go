package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/sessions"

	"github.com/caelus-deploy/caelus/pkg/auth"
	"github.com/caelus-deploy/caelus/pkg/httpx"
	"github.com/caelus-deploy/caelus/pkg/logger"
	"github.com/caelus-deploy/caelus/pkg/operator"
	pkgvalidator "github.com/caelus-deploy/caelus/pkg/validator"
)

// SessionHandler captures the operator email when no proxy header is present.
type SessionHandler struct {
	store sessions.Store
	log   logger.Logger
}

// NewSessionHandler returns a SessionHandler storing emails in store.
func NewSessionHandler(store sessions.Store, log logger.Logger) *SessionHandler {
	return &SessionHandler{store: store, log: log}
}

// Create stores the operator email in the session.
//
//	@Summary		Set operator email
//	@Tags			session
//	@Accept			json
//	@Produce		json
//	@Param			request	body		SessionRequest	true	"Operator email"
//	@Success		200		{object}	SessionResponse
//	@Failure		422		{object}	ErrorResponse
//	@Router			/session [post]
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[SessionRequest](w, r)
	if !ok {
		return
	}
	email, err := auth.SaveSessionEmail(w, r, h.store, req.Email)
	if errors.Is(err, operator.ErrInvalidEmail) {
		httpx.JSONError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err != nil {
		h.log.ErrorContext(r.Context(), "save session", "error", err)
		httpx.InternalError(w)
		return
	}
	httpx.JSON(w, http.StatusOK, SessionResponse{Email: email, Source: "session"})
}

// Get reports the identity requests are made as. The proxy header wins over the session.
//
//	@Summary		Current operator
//	@Tags			session
//	@Produce		json
//	@Success		200	{object}	SessionResponse
//	@Failure		401	{object}	ErrorResponse
//	@Router			/session [get]
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	if raw := r.Header.Get(operator.HeaderEmail); raw != "" {
		if email, err := operator.Normalize(raw); err == nil {
			httpx.JSON(w, http.StatusOK, SessionResponse{Email: email, Source: "header"})
			return
		}
	}
	email, err := auth.SessionEmail(r, h.store)
	if err != nil {
		httpx.JSONError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	httpx.JSON(w, http.StatusOK, SessionResponse{Email: email, Source: "session"})
}

// Delete forgets the operator email.
//
//	@Summary		Clear operator email
//	@Tags			session
//	@Success		204
//	@Router			/session [delete]
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := auth.ClearSession(w, r, h.store); err != nil {
		h.log.ErrorContext(r.Context(), "clear session", "error", err)
		httpx.InternalError(w)
		return
	}
	httpx.NoContent(w)
}
