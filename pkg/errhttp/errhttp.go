// Package errhttp maps domain sentinel errors to HTTP status codes.
// Add a case to mapErrorToStatus for each new domain sentinel error.
package errhttp

import (
	"errors"
	"net/http"

	"github.com/caelus-deploy/caelus/pkg/httpx"
	accountsdomain "github.com/caelus-deploy/caelus/services/accounts/domain"
	admindomain "github.com/caelus-deploy/caelus/services/admin/domain"
	catalogdomain "github.com/caelus-deploy/caelus/services/catalog/domain"
)

// fieldErrors is implemented by errors that carry per-field validation
// messages, such as the gateway client's StatusError.
type fieldErrors interface {
	FieldErrors() map[string]string
}

// WriteError maps err to a status with errors.Is and writes the JSON envelope.
// Unrecognized errors become a 500 whose message is not echoed. Validation
// failures that carry field messages keep them.
func WriteError(w http.ResponseWriter, err error) {
	status := mapErrorToStatus(err)
	switch status {
	case http.StatusInternalServerError:
		httpx.InternalError(w)
		return
	case http.StatusUnprocessableEntity:
		var fe fieldErrors
		if errors.As(err, &fe) && len(fe.FieldErrors()) > 0 {
			httpx.ValidationError(w, fe.FieldErrors())
			return
		}
	}
	httpx.JSONError(w, status, err.Error())
}

func mapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, httpx.ErrInvalidPathID),
		errors.Is(err, httpx.ErrInvalidQuery):
		return http.StatusBadRequest // 400

	case errors.Is(err, catalogdomain.ErrProductNotFound),
		errors.Is(err, catalogdomain.ErrTemplateNotFound),
		errors.Is(err, accountsdomain.ErrUserNotFound),
		errors.Is(err, accountsdomain.ErrDeploymentNotFound),
		errors.Is(err, accountsdomain.ErrTemplateNotFound),
		errors.Is(err, accountsdomain.ErrJobNotFound),
		errors.Is(err, admindomain.ErrNotFound):
		return http.StatusNotFound // 404

	case errors.Is(err, catalogdomain.ErrProductAlreadyExists),
		errors.Is(err, catalogdomain.ErrTemplateAlreadyExists),
		errors.Is(err, accountsdomain.ErrUserAlreadyExists),
		errors.Is(err, accountsdomain.ErrDeploymentAlreadyExists),
		errors.Is(err, accountsdomain.ErrNoCanonicalTemplate),
		errors.Is(err, accountsdomain.ErrDeploymentInProgress),
		errors.Is(err, accountsdomain.ErrInvalidUpgrade):
		return http.StatusConflict // 409

	case errors.Is(err, catalogdomain.ErrInvalidProduct),
		errors.Is(err, catalogdomain.ErrInvalidTemplate),
		errors.Is(err, accountsdomain.ErrInvalidUser),
		errors.Is(err, accountsdomain.ErrInvalidDeployment),
		errors.Is(err, accountsdomain.ErrInvalidUserValues),
		errors.Is(err, admindomain.ErrValidationFailed):
		return http.StatusUnprocessableEntity // 422

	case errors.Is(err, admindomain.ErrTransportFailure):
		return http.StatusBadGateway // 502

	default:
		return http.StatusInternalServerError // 500
	}
}
