package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestNewProductName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"single character", "a", "a", false},
		{"trimmed", "  Caelus Web  ", "Caelus Web", false},
		{"255 characters", strings.Repeat("x", 255), strings.Repeat("x", 255), false},
		{"255 multibyte characters", strings.Repeat("é", 255), strings.Repeat("é", 255), false},
		{"empty", "", "", true},
		{"only whitespace", "   ", "", true},
		{"256 characters", strings.Repeat("x", 256), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewProductName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewProductName(%q) error = %v, wantErr = %v", tt.input, err, tt.wantErr)
			}
			if got.String() != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got.String())
			}
		})
	}
}

func TestProduct_IsCanonical(t *testing.T) {
	id := int64(7)
	p := NewProduct("web", nil)
	if p.IsCanonical(7) {
		t.Fatal("product without pointer must not report a canonical template")
	}
	p.TemplateID = &id
	if !p.IsCanonical(7) {
		t.Fatal("expected template 7 to be canonical")
	}
	if p.IsCanonical(8) {
		t.Fatal("template 8 must not be canonical")
	}
}

func TestNewTemplate(t *testing.T) {
	ref := "registry.example/web:1.0"
	tmpl := NewTemplate(3, &ref, TemplateValues{})
	if tmpl.ProductID != 3 {
		t.Fatalf("expected product 3, got %d", tmpl.ProductID)
	}
	if tmpl.ImageRef == nil || *tmpl.ImageRef != ref {
		t.Fatalf("expected image ref %q, got %v", ref, tmpl.ImageRef)
	}
	if tmpl.ID != 0 || !tmpl.CreatedAt.IsZero() {
		t.Fatal("id and created_at are assigned on save")
	}
}

func TestNewTemplate_NullValuesAreAbsent(t *testing.T) {
	tmpl := NewTemplate(3, nil, TemplateValues{
		Defaults: json.RawMessage(" null "),
		Schema:   json.RawMessage(`{"type": "object"}`),
	})
	if tmpl.Values.Defaults != nil {
		t.Errorf("expected nil defaults, got %s", tmpl.Values.Defaults)
	}
	if string(tmpl.Values.Schema) != `{"type": "object"}` {
		t.Errorf("schema changed: %s", tmpl.Values.Schema)
	}
}
