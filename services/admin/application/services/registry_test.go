package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/caelus-deploy/caelus/services/admin/domain"
)

func TestRegistry_ListTemplates(t *testing.T) {
	g := newFakeGateway(1)
	g.tick = 0
	s := newTestServices(g)

	empty, err := s.Registry.ListTemplates(context.Background(), 1)
	if err != nil {
		t.Fatalf("ListTemplates: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", empty)
	}

	for range 3 {
		if _, err := s.Registry.CreateTemplate(context.Background(), 1, nil); err != nil {
			t.Fatalf("CreateTemplate: %v", err)
		}
	}
	if g.pointer(1) != nil {
		t.Fatal("registry must not write the pointer")
	}

	stored, err := s.Registry.ListTemplates(context.Background(), 1)
	if err != nil {
		t.Fatalf("ListTemplates: %v", err)
	}
	newest, err := s.Registry.ListTemplatesNewestFirst(context.Background(), 1)
	if err != nil {
		t.Fatalf("ListTemplatesNewestFirst: %v", err)
	}

	ids := func(n int, get func(i int) int64) []int64 {
		out := make([]int64, n)
		for i := range out {
			out[i] = get(i)
		}
		return out
	}
	if diff := cmp.Diff([]int64{1, 2, 3}, ids(len(stored), func(i int) int64 { return stored[i].ID })); diff != "" {
		t.Errorf("stored order (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int64{3, 2, 1}, ids(len(newest), func(i int) int64 { return newest[i].ID })); diff != "" {
		t.Errorf("newest-first order (-want +got):\n%s", diff)
	}
}

func TestRegistry_Errors(t *testing.T) {
	g := newFakeGateway(1)
	s := newTestServices(g)

	tests := []struct {
		name string
		call func() error
		want error
	}{
		{"list unknown product", func() error { _, err := s.Registry.ListTemplates(context.Background(), 5); return err }, domain.ErrNotFound},
		{"list zero product", func() error { _, err := s.Registry.ListTemplates(context.Background(), 0); return err }, domain.ErrValidationFailed},
		{"get unknown product", func() error { _, err := s.Registry.Product(context.Background(), 5); return err }, domain.ErrNotFound},
		{"delete unknown template", func() error { return s.Registry.DeleteTemplate(context.Background(), 1, 42) }, domain.ErrNotFound},
		{"delete zero template", func() error { return s.Registry.DeleteTemplate(context.Background(), 1, 0) }, domain.ErrValidationFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestRegistry_Products(t *testing.T) {
	g := newFakeGateway(2, 1)
	s := newTestServices(g)

	products, err := s.Registry.Products(context.Background())
	if err != nil {
		t.Fatalf("Products: %v", err)
	}
	if len(products) != 2 || products[0].ID != 1 || products[1].ID != 2 {
		t.Fatalf("products = %+v", products)
	}
}
