package httpx

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// ErrInvalidPathID is returned by PathID when a route parameter is not a positive integer.
var ErrInvalidPathID = errors.New("invalid path id")

// ErrInvalidQuery is returned by QueryInt when a query parameter is not an integer.
var ErrInvalidQuery = errors.New("invalid query parameter")

// PathID parses the chi URL parameter name as a positive int64 identifier.
func PathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidPathID, name, raw)
	}
	return id, nil
}

// QueryInt parses the query parameter name as an int64. An absent or empty
// parameter yields 0.
func QueryInt(r *http.Request, name string) (int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidQuery, name, raw)
	}
	return n, nil
}
