// Package operator carries the authenticated operator identity through a request.
// Authentication happens upstream: a reverse proxy sets X-Auth-Request-Email and
// every hop forwards it unchanged.
package operator

import (
	"context"
	"errors"
	"net/mail"
	"strings"
)

// HeaderEmail is the header set by the authenticating reverse proxy.
const HeaderEmail = "X-Auth-Request-Email"

// contextKey is an unexported type to prevent key collisions in context.
type contextKey string

const emailKey contextKey = "operator_email"

// ErrEmailNotFound is returned when no operator email exists in the request context.
// Handlers should return 401 when this error occurs.
var ErrEmailNotFound = errors.New("operator email not found in context")

// ErrInvalidEmail is returned by Normalize for values that are not a bare address.
var ErrInvalidEmail = errors.New("invalid operator email")

// EmailFromCtx extracts the operator email from the request context.
func EmailFromCtx(ctx context.Context) (string, error) {
	email, ok := ctx.Value(emailKey).(string)
	if !ok || email == "" {
		return "", ErrEmailNotFound
	}
	return email, nil
}

// WithEmail returns a new context with the given operator email attached.
func WithEmail(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, emailKey, email)
}

// Normalize trims and lower-cases an address and rejects display-name forms
// such as "Ops <ops@example.com>".
func Normalize(raw string) (string, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return "", ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return "", ErrInvalidEmail
	}
	return s, nil
}
