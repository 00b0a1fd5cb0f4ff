// Package domain holds the operator-facing model of the catalog: the types the
// template registry and canonical reconciler work with, the error taxonomy
// they report, and the Gateway port they talk through.
package domain

import "errors"

// Error taxonomy of the template registry and canonical reconciler.
// Every failure returned by them matches exactly one of these with errors.Is.
var (
	// ErrNotFound indicates a referenced product or template is unknown, or a
	// template does not belong to the product it was addressed through.
	ErrNotFound = errors.New("not found")

	// ErrValidationFailed indicates the gateway rejected the input.
	ErrValidationFailed = errors.New("validation failed")

	// ErrTransportFailure indicates the gateway could not be reached or
	// answered with an unexpected status. The wrapped message is the gateway's.
	ErrTransportFailure = errors.New("gateway transport failure")
)
