// Package validator decodes JSON request bodies and checks them against
// go-playground/validator struct tags, answering failures in the shared
// error envelope.
package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/caelus-deploy/caelus/pkg/httpx"
)

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	if err := v.RegisterValidation("notblank", notBlank); err != nil {
		panic(err)
	}
	return v
}

// notBlank rejects strings that are empty after trimming. Nil pointers pass,
// so pair it with omitempty or required as needed.
func notBlank(fl validator.FieldLevel) bool {
	f := fl.Field()
	if f.Kind() != reflect.String {
		return true
	}
	return strings.TrimSpace(f.String()) != ""
}

// Validate checks s against its validate tags.
func Validate(s any) error {
	return validate.Struct(s)
}

var messages = map[string]func(param string) string{
	"required":         func(string) string { return "This field is required" },
	"notblank":         func(string) string { return "Must not be blank" },
	"email":            func(string) string { return "Must be a valid email address" },
	"url":              func(string) string { return "Must be a valid URL" },
	"uuid":             func(string) string { return "Must be a valid UUID" },
	"uuid4":            func(string) string { return "Must be a valid UUID" },
	"hostname":         func(string) string { return "Must be a valid hostname" },
	"hostname_rfc1123": func(string) string { return "Must be a valid hostname" },
	"fqdn":             func(string) string { return "Must be a valid hostname" },
	"min":              func(p string) string { return "Minimum length is " + p },
	"max":              func(p string) string { return "Maximum length is " + p },
	"gt":               func(p string) string { return "Must be greater than " + p },
	"gte":              func(p string) string { return "Must be greater than or equal to " + p },
	"lte":              func(p string) string { return "Must be less than or equal to " + p },
	"required_without": func(p string) string { return "Required when " + p + " is not provided" },
	"excluded_with":    func(p string) string { return "Must not be combined with " + p },
	"oneof":            func(p string) string { return "Must be one of: " + p },
}

// FormatValidationErrors maps each failing field's JSON name to a message.
// Errors that are not validation errors yield an empty map.
func FormatValidationErrors(err error) map[string]string {
	out := make(map[string]string)
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return out
	}
	for _, fe := range ve {
		out[fe.Field()] = fieldMessage(fe)
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	if msg, ok := messages[fe.Tag()]; ok {
		return msg(fe.Param())
	}
	return fmt.Sprintf("Validation failed on '%s'", fe.Tag())
}

// ValidateRequest decodes the body into a T and validates it. On failure it
// has already written the response (400 malformed, 413 oversized, 422
// invalid) and returns ok=false.
func ValidateRequest[T any](w http.ResponseWriter, r *http.Request) (*T, bool) {
	var req T
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			httpx.JSONError(w, http.StatusRequestEntityTooLarge, "Request body too large")
		case errors.Is(err, io.EOF):
			httpx.JSONError(w, http.StatusBadRequest, "Request body is required")
		default:
			httpx.JSONError(w, http.StatusBadRequest, "Invalid JSON")
		}
		return nil, false
	}
	if err := Validate(&req); err != nil {
		httpx.ValidationError(w, FormatValidationErrors(err))
		return nil, false
	}
	return &req, true
}
