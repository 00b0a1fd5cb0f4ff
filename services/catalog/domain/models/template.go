package models

import (
	"encoding/json"
	"slices"
	"time"

	"github.com/caelus-deploy/caelus/pkg/values"
)

// Template is one deployable version of a Product. Templates are immutable
// apart from deletion. ImageRef is the container image reference and may be nil.
type Template struct {
	ID        int64
	ProductID int64
	ImageRef  *string
	Values    TemplateValues
	CreatedAt time.Time
}

// TemplateValues are the values a deployment of the template starts from and
// the JSON Schema its merged values must satisfy. Either may be nil.
type TemplateValues struct {
	Defaults json.RawMessage
	Schema   json.RawMessage
}

// Clone returns a deep copy.
func (v TemplateValues) Clone() TemplateValues {
	return TemplateValues{Defaults: slices.Clone(v.Defaults), Schema: slices.Clone(v.Schema)}
}

// NewTemplate constructs a Template for productID that has not been persisted
// yet. A JSON null in vals is stored as absent.
func NewTemplate(productID int64, imageRef *string, vals TemplateValues) *Template {
	return &Template{
		ProductID: productID,
		ImageRef:  imageRef,
		Values:    TemplateValues{Defaults: values.AbsentIfNull(vals.Defaults), Schema: values.AbsentIfNull(vals.Schema)},
	}
}
