// Package services contains stateless domain services for the catalog bounded context.
// They enforce business rules over domain types and have no infrastructure dependencies.
package services

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/caelus-deploy/caelus/pkg/values"
	"github.com/caelus-deploy/caelus/services/catalog/domain/models"
)

const maxImageRefLength = 2048

// ValidateName enforces business rules for ProductName beyond the length
// constraints enforced by its constructor:
//   - No control characters
//   - No consecutive spaces
func ValidateName(name models.ProductName) error {
	s := name.String()

	for _, r := range s {
		if unicode.IsControl(r) {
			return fmt.Errorf("product name must not contain control characters")
		}
	}

	if strings.Contains(s, "  ") {
		return fmt.Errorf("product name must not contain consecutive spaces")
	}

	return nil
}

// ValidateProductForCreation checks a Product built by models.NewProduct
// before it is persisted.
func ValidateProductForCreation(p *models.Product) error {
	if p == nil {
		return fmt.Errorf("product cannot be nil")
	}
	if err := ValidateName(p.Name); err != nil {
		return fmt.Errorf("invalid name: %w", err)
	}
	if p.TemplateID != nil {
		return fmt.Errorf("a new product cannot point at a template")
	}
	return nil
}

// ValidateImageRef checks an optional container image reference. A nil
// reference is allowed; a present one must be non-blank without whitespace.
func ValidateImageRef(ref *string) error {
	if ref == nil {
		return nil
	}
	s := *ref
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("image reference must not be blank")
	}
	if utf8.RuneCountInString(s) > maxImageRefLength {
		return fmt.Errorf("image reference must not exceed %d characters", maxImageRefLength)
	}
	for _, r := range s {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return fmt.Errorf("image reference must not contain whitespace or control characters")
		}
	}
	return nil
}

// ValidateTemplateForCreation checks a Template built by models.NewTemplate
// before it is persisted.
func ValidateTemplateForCreation(t *models.Template) error {
	if t == nil {
		return fmt.Errorf("template cannot be nil")
	}
	if t.ProductID <= 0 {
		return fmt.Errorf("product_id must be set")
	}
	if err := ValidateImageRef(t.ImageRef); err != nil {
		return fmt.Errorf("invalid image reference: %w", err)
	}
	if err := ValidateTemplateValues(t.Values); err != nil {
		return err
	}
	return nil
}

// ValidateTemplateValues checks that defaults are a JSON object and that the
// schema compiles. Defaults are not checked against the schema: required
// user values only arrive with a deployment.
func ValidateTemplateValues(v models.TemplateValues) error {
	if err := values.CheckObject(v.Defaults, "default values"); err != nil {
		return err
	}
	if _, err := values.Compile(v.Schema); err != nil {
		return err
	}
	return nil
}
