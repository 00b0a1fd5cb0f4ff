// Package values validates and merges the JSON values a deployment renders
// its template with. A template carries default values and a JSON Schema; a
// deployment carries user values that live under the schema's "user" property.
package values

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"maps"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// ErrInvalid is wrapped by every validation failure in this package.
var ErrInvalid = errors.New("invalid values")

// UserKey is the top-level key user values are merged under.
const UserKey = "user"

// Schema is a compiled values schema. The zero value accepts everything.
type Schema struct {
	full *jsonschema.Schema
	user *jsonschema.Schema
}

// Compile parses and compiles raw. An empty or null raw yields a Schema that
// accepts any values.
func Compile(raw json.RawMessage) (*Schema, error) {
	if isNull(raw) {
		return &Schema{}, nil
	}
	doc, err := decode(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: values schema: %w", ErrInvalid, err)
	}
	obj, ok := doc.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: values schema must be an object", ErrInvalid)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource("values.json", obj); err != nil {
		return nil, fmt.Errorf("%w: values schema: %w", ErrInvalid, err)
	}
	s := &Schema{}
	if s.full, err = c.Compile("values.json"); err != nil {
		return nil, fmt.Errorf("%w: values schema: %w", ErrInvalid, err)
	}

	hasUser, err := hasUserSubschema(obj)
	if err != nil {
		return nil, err
	}
	if hasUser {
		if s.user, err = c.Compile("values.json#/properties/user"); err != nil {
			return nil, fmt.Errorf("%w: user schema: %w", ErrInvalid, err)
		}
	}
	return s, nil
}

// HasUserSchema reports whether the schema defines properties.user.
func (s *Schema) HasUserSchema() bool { return s.user != nil }

// ValidateUser checks user values against properties.user. Null user values
// are always accepted; non-empty ones require a user schema.
func (s *Schema) ValidateUser(raw json.RawMessage) error {
	if isNull(raw) {
		return nil
	}
	doc, err := decodeObject(raw, "user values")
	if err != nil {
		return err
	}
	if s.user == nil {
		if len(doc) > 0 {
			return fmt.Errorf("%w: template does not define a user values schema", ErrInvalid)
		}
		return nil
	}
	if err := s.user.Validate(doc); err != nil {
		return fmt.Errorf("%w: user values: %w", ErrInvalid, err)
	}
	return nil
}

// Validate checks fully merged values against the whole schema.
func (s *Schema) Validate(merged map[string]any) error {
	if s.full == nil {
		return nil
	}
	if err := s.full.Validate(merged); err != nil {
		return fmt.Errorf("%w: merged values: %w", ErrInvalid, err)
	}
	return nil
}

// Merge layers defaults, then user values under UserKey, then system
// overrides. Objects merge key by key; any other value replaces what is below it.
func Merge(defaults, user, overrides json.RawMessage) (map[string]any, error) {
	merged := map[string]any{}
	if !isNull(defaults) {
		d, err := decodeObject(defaults, "default values")
		if err != nil {
			return nil, err
		}
		merged = d
	}
	if !isNull(user) {
		u, err := decodeObject(user, "user values")
		if err != nil {
			return nil, err
		}
		merged = deepMerge(merged, map[string]any{UserKey: u}).(map[string]any)
	}
	if !isNull(overrides) {
		o, err := decodeObject(overrides, "system overrides")
		if err != nil {
			return nil, err
		}
		merged = deepMerge(merged, o).(map[string]any)
	}
	return merged, nil
}

// Render validates user values, merges them with defaults and validates the
// result: the full check a deployment's values must pass.
func Render(schema, defaults, user json.RawMessage) (map[string]any, error) {
	s, err := Compile(schema)
	if err != nil {
		return nil, err
	}
	if err := s.ValidateUser(user); err != nil {
		return nil, err
	}
	merged, err := Merge(defaults, user, nil)
	if err != nil {
		return nil, err
	}
	if err := s.Validate(merged); err != nil {
		return nil, err
	}
	return merged, nil
}

// CheckObject reports whether raw is null or a JSON object.
func CheckObject(raw json.RawMessage, what string) error {
	if isNull(raw) {
		return nil
	}
	_, err := decodeObject(raw, what)
	return err
}

// AbsentIfNull returns nil for an empty or JSON null document and raw otherwise.
func AbsentIfNull(raw json.RawMessage) json.RawMessage {
	if isNull(raw) {
		return nil
	}
	return raw
}

func deepMerge(base, override any) any {
	b, bok := base.(map[string]any)
	o, ook := override.(map[string]any)
	if !bok || !ook {
		return override
	}
	out := maps.Clone(b)
	for k, v := range o {
		if existing, ok := out[k]; ok {
			out[k] = deepMerge(existing, v)
			continue
		}
		out[k] = v
	}
	return out
}

func hasUserSubschema(schema map[string]any) (bool, error) {
	props, ok := schema["properties"]
	if !ok || props == nil {
		return false, nil
	}
	propsObj, ok := props.(map[string]any)
	if !ok {
		return false, fmt.Errorf("%w: values schema properties must be an object", ErrInvalid)
	}
	user, ok := propsObj[UserKey]
	if !ok || user == nil {
		return false, nil
	}
	if _, ok := user.(map[string]any); !ok {
		return false, fmt.Errorf("%w: values schema properties.user must be an object", ErrInvalid)
	}
	return true, nil
}

func decode(raw json.RawMessage) (any, error) {
	return jsonschema.UnmarshalJSON(bytes.NewReader(raw))
}

func decodeObject(raw json.RawMessage, what string) (map[string]any, error) {
	doc, err := decode(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalid, what, err)
	}
	obj, ok := doc.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s must be a JSON object", ErrInvalid, what)
	}
	return obj, nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
