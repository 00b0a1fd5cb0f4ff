// Package auth resolves the operator identity of a request: the proxy's
// X-Auth-Request-Email header on the gateway and admin BFF, or the email an
// operator typed into the admin session when no proxy sits in front.
package auth

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/sessions"

	"github.com/caelus-deploy/caelus/pkg/operator"
)

// SessionName is the admin session cookie.
const SessionName = "caelus_admin_session"

const sessionEmailKey = "operator_email"

// ErrNoSessionEmail is returned when the session holds no operator email.
var ErrNoSessionEmail = errors.New("session has no operator email")

// SessionEmail returns the operator email stored in the admin session.
func SessionEmail(r *http.Request, store sessions.Store) (string, error) {
	session, err := store.Get(r, SessionName)
	if err != nil {
		return "", fmt.Errorf("load session: %w", err)
	}
	if email, ok := session.Values[sessionEmailKey].(string); ok && email != "" {
		return email, nil
	}
	return "", ErrNoSessionEmail
}

// SaveSessionEmail normalizes email, stores it and returns the stored form.
// An invalid address leaves the session untouched.
func SaveSessionEmail(w http.ResponseWriter, r *http.Request, store sessions.Store, email string) (string, error) {
	normalized, err := operator.Normalize(email)
	if err != nil {
		return "", err
	}
	session, err := store.Get(r, SessionName)
	if err != nil {
		return "", fmt.Errorf("load session: %w", err)
	}
	session.Values[sessionEmailKey] = normalized
	if err := session.Save(r, w); err != nil {
		return "", fmt.Errorf("save session: %w", err)
	}
	return normalized, nil
}

// ClearSession forgets the operator: the email is dropped from the session,
// the cookie expires and the server-side record is removed. A replayed logout
// cookie therefore carries no identity.
func ClearSession(w http.ResponseWriter, r *http.Request, store sessions.Store) error {
	session, err := store.Get(r, SessionName)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	delete(session.Values, sessionEmailKey)
	session.Options.MaxAge = -1
	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
