package operator

import (
	"context"
	"errors"
	"testing"
)

func TestWithEmail_EmailFromCtx(t *testing.T) {
	ctx := WithEmail(context.Background(), "ops@example.com")

	got, err := EmailFromCtx(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ops@example.com" {
		t.Fatalf("expected %q, got %q", "ops@example.com", got)
	}
}

func TestEmailFromCtx_EmptyContext(t *testing.T) {
	_, err := EmailFromCtx(context.Background())
	if !errors.Is(err, ErrEmailNotFound) {
		t.Fatalf("expected ErrEmailNotFound, got %v", err)
	}
}

func TestEmailFromCtx_EmptyString(t *testing.T) {
	ctx := WithEmail(context.Background(), "")
	if _, err := EmailFromCtx(ctx); !errors.Is(err, ErrEmailNotFound) {
		t.Fatalf("expected ErrEmailNotFound for empty email, got %v", err)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"plain", "ops@example.com", "ops@example.com", false},
		{"mixed case and spaces", "  Ops@Example.COM ", "ops@example.com", false},
		{"empty", "   ", "", true},
		{"missing domain", "ops@", "", true},
		{"display name", "Ops <ops@example.com>", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Normalize(%q) error = %v, wantErr = %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
