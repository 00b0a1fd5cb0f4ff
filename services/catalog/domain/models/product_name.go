package models

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// ProductName is a value object representing a valid product name.
// Surrounding whitespace is trimmed; the result must hold 1..255 characters.
type ProductName string

const (
	minProductNameLength = 1
	maxProductNameLength = 255
)

// NewProductName constructs a valid ProductName or returns an error if constraints are violated.
func NewProductName(s string) (ProductName, error) {
	s = strings.TrimSpace(s)
	n := utf8.RuneCountInString(s)
	if n < minProductNameLength {
		return "", fmt.Errorf("product name must be at least %d character", minProductNameLength)
	}
	if n > maxProductNameLength {
		return "", fmt.Errorf("product name must not exceed %d characters", maxProductNameLength)
	}
	return ProductName(s), nil
}

// String returns the underlying string value.
func (n ProductName) String() string {
	return string(n)
}
