package httpx

import (
	"encoding/json"
	"net/http"
)

// ErrorBody is the error envelope shared by every endpoint. Fields is only
// present on validation failures.
type ErrorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// JSON writes v with status. Encoding errors after the header is sent are dropped.
func JSON(w http.ResponseWriter, status int, v any) {
	h := w.Header()
	h.Set("Content-Type", "application/json; charset=utf-8")
	h.Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// NoContent writes a bare 204.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// JSONError writes {"error": message}.
func JSONError(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorBody{Error: message})
}

// ValidationError writes a 422 with per-field messages.
func ValidationError(w http.ResponseWriter, fields map[string]string) {
	JSON(w, http.StatusUnprocessableEntity, ErrorBody{Error: "Validation failed", Fields: fields})
}

// InternalError writes a 500 without echoing any detail.
func InternalError(w http.ResponseWriter) {
	JSONError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}
