package services

import (
	"strings"
	"testing"
)

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Web Shop":             "web-shop",
		"dev@caelus.example":   "dev-caelus-example",
		"--Already--slugged--": "already-slugged",
		"***":                  "",
	}
	for in, want := range tests {
		if got := Slugify(in); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDeploymentUID(t *testing.T) {
	tests := []struct {
		name    string
		product string
		email   string
		suffix  string
		want    string
		wantErr bool
	}{
		{"product and email", "Web Shop", "Dev@Caelus.example", "a1b2c3", "web-shop-dev-caelus-example-a1b2c3", false},
		{"nothing sluggable", "!!", "@@", "000000", "dep-000000", false},
		{"bad suffix", "web", "a@b.c", "ABCDEF", "", true},
		{"short suffix", "web", "a@b.c", "abc", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DeploymentUID(tt.product, tt.email, tt.suffix)
			if (err != nil) != tt.wantErr {
				t.Fatalf("DeploymentUID() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Fatalf("DeploymentUID() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDeploymentUID_TrimsToDNSLabel(t *testing.T) {
	// The cut lands right after a hyphen, which must not survive.
	product := strings.Repeat("a", 55) + "-" + strings.Repeat("b", 20)
	got, err := DeploymentUID(product, "dev@caelus.example", "zzzzzz")
	if err != nil {
		t.Fatalf("DeploymentUID: %v", err)
	}
	want := strings.Repeat("a", 55) + "-zzzzzz"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if len(got) > maxUIDLength {
		t.Fatalf("uid has %d characters", len(got))
	}
}

func TestUIDGenerator_New(t *testing.T) {
	gen := NewUIDGenerator()
	a, err := gen.New("web", "dev@caelus.example")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	b, _ := gen.New("web", "dev@caelus.example")

	prefix := "web-dev-caelus-example-"
	if !strings.HasPrefix(a, prefix) || len(a) != len(prefix)+uidSuffixLength {
		t.Fatalf("unexpected uid %q", a)
	}
	if a == b {
		t.Fatalf("two uids collided: %q", a)
	}
}
