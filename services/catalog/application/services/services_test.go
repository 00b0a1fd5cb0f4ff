package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/caelus-deploy/caelus/pkg/logger"
	catalogdomain "github.com/caelus-deploy/caelus/services/catalog/domain"
	"github.com/caelus-deploy/caelus/services/catalog/infrastructure/persistence/memory"
)

func newTestServices() *Services {
	s := memory.NewStore()
	return NewWithRepositories(s.Products(), s.Templates(), nil, logger.Discard())
}

func TestProductService_Create(t *testing.T) {
	ctx := context.Background()
	svcs := newTestServices()

	t.Run("trims name and leaves pointer unset", func(t *testing.T) {
		p, err := svcs.Product.Create(ctx, "  web  ", nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.Name != "web" {
			t.Fatalf("expected trimmed name, got %q", p.Name)
		}
		if p.TemplateID != nil {
			t.Fatal("new product must not have a canonical template")
		}
	})

	t.Run("duplicate name", func(t *testing.T) {
		_, err := svcs.Product.Create(ctx, "web", nil)
		if !errors.Is(err, catalogdomain.ErrProductAlreadyExists) {
			t.Fatalf("expected ErrProductAlreadyExists, got %v", err)
		}
	})

	t.Run("invalid names", func(t *testing.T) {
		for _, name := range []string{"", "   ", strings.Repeat("x", 256), "a  b", "a\tb"} {
			_, err := svcs.Product.Create(ctx, name, nil)
			if !errors.Is(err, catalogdomain.ErrInvalidProduct) {
				t.Errorf("Create(%q): expected ErrInvalidProduct, got %v", name, err)
			}
		}
	})
}

func TestProductService_SetCanonical(t *testing.T) {
	ctx := context.Background()
	svcs := newTestServices()

	web, _ := svcs.Product.Create(ctx, "web", nil)
	api, _ := svcs.Product.Create(ctx, "api", nil)
	t1, _ := svcs.Template.Create(ctx, web.ID, nil)
	t2, _ := svcs.Template.Create(ctx, web.ID, nil)
	foreign, _ := svcs.Template.Create(ctx, api.ID, nil)

	p, err := svcs.Product.SetCanonical(ctx, web.ID, t2.ID)
	if err != nil {
		t.Fatalf("SetCanonical: %v", err)
	}
	if !p.IsCanonical(t2.ID) {
		t.Fatalf("expected canonical %d, got %v", t2.ID, p.TemplateID)
	}

	// Last writer wins.
	if p, _ = svcs.Product.SetCanonical(ctx, web.ID, t1.ID); !p.IsCanonical(t1.ID) {
		t.Fatalf("expected canonical %d, got %v", t1.ID, p.TemplateID)
	}

	if _, err := svcs.Product.SetCanonical(ctx, web.ID, foreign.ID); !errors.Is(err, catalogdomain.ErrTemplateNotFound) {
		t.Fatalf("expected ErrTemplateNotFound, got %v", err)
	}
	got, _ := svcs.Product.GetByID(ctx, web.ID)
	if !got.IsCanonical(t1.ID) {
		t.Fatal("failed SetCanonical must leave the pointer unchanged")
	}

	if _, err := svcs.Product.SetCanonical(ctx, 404, t1.ID); !errors.Is(err, catalogdomain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestTemplateService_CreateNeverPromotes(t *testing.T) {
	ctx := context.Background()
	svcs := newTestServices()
	p, _ := svcs.Product.Create(ctx, "web", nil)

	if _, err := svcs.Template.Create(ctx, p.ID, nil); err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, _ := svcs.Product.GetByID(ctx, p.ID)
	if got.TemplateID != nil {
		t.Fatal("the gateway must not pick a canonical template on its own")
	}
}

func TestTemplateService_Create_Invalid(t *testing.T) {
	ctx := context.Background()
	svcs := newTestServices()
	p, _ := svcs.Product.Create(ctx, "web", nil)

	blank := " "
	if _, err := svcs.Template.Create(ctx, p.ID, &blank); !errors.Is(err, catalogdomain.ErrInvalidTemplate) {
		t.Fatalf("expected ErrInvalidTemplate, got %v", err)
	}
	if _, err := svcs.Template.Create(ctx, 404, nil); !errors.Is(err, catalogdomain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestTemplateService_DeleteCanonicalClearsPointer(t *testing.T) {
	ctx := context.Background()
	svcs := newTestServices()
	p, _ := svcs.Product.Create(ctx, "web", nil)
	t1, _ := svcs.Template.Create(ctx, p.ID, nil)
	t2, _ := svcs.Template.Create(ctx, p.ID, nil)
	_, _ = svcs.Product.SetCanonical(ctx, p.ID, t1.ID)

	if err := svcs.Template.Delete(ctx, p.ID, t2.ID); err != nil {
		t.Fatalf("Delete t2: %v", err)
	}
	got, _ := svcs.Product.GetByID(ctx, p.ID)
	if !got.IsCanonical(t1.ID) {
		t.Fatal("deleting a non-canonical template must not touch the pointer")
	}

	if err := svcs.Template.Delete(ctx, p.ID, t1.ID); err != nil {
		t.Fatalf("Delete t1: %v", err)
	}
	got, _ = svcs.Product.GetByID(ctx, p.ID)
	if got.TemplateID != nil {
		t.Fatalf("expected cleared pointer, got %d", *got.TemplateID)
	}

	if err := svcs.Template.Delete(ctx, p.ID, t1.ID); !errors.Is(err, catalogdomain.ErrTemplateNotFound) {
		t.Fatalf("expected ErrTemplateNotFound on second delete, got %v", err)
	}
}

func TestProductService_Delete(t *testing.T) {
	ctx := context.Background()
	svcs := newTestServices()
	p, _ := svcs.Product.Create(ctx, "web", nil)

	if err := svcs.Product.Delete(ctx, p.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svcs.Product.GetByID(ctx, p.ID); !errors.Is(err, catalogdomain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
	if _, err := svcs.Template.List(ctx, p.ID); !errors.Is(err, catalogdomain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound listing templates, got %v", err)
	}
	list, _ := svcs.Product.List(ctx)
	if len(list) != 0 {
		t.Fatalf("expected no active products, got %d", len(list))
	}
}
