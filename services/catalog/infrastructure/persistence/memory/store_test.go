package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	catalogdomain "github.com/caelus-deploy/caelus/services/catalog/domain"
	"github.com/caelus-deploy/caelus/services/catalog/domain/models"
	"github.com/caelus-deploy/caelus/services/catalog/domain/repositories"
)

var (
	_ repositories.ProductRepository  = (*ProductRepository)(nil)
	_ repositories.TemplateRepository = (*TemplateRepository)(nil)
)

func fixedClock() func() time.Time {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	n := 0
	return func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Second)
	}
}

func TestStore_ProductLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewStore(WithClock(fixedClock()))
	products := s.Products()

	p := models.NewProduct("web", nil)
	if err := products.Save(ctx, p); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if p.ID != 1 {
		t.Fatalf("expected id 1, got %d", p.ID)
	}
	if err := products.Save(ctx, models.NewProduct("web", nil)); !errors.Is(err, catalogdomain.ErrProductAlreadyExists) {
		t.Fatalf("expected ErrProductAlreadyExists, got %v", err)
	}

	got, err := products.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if diff := cmp.Diff(p, got); diff != "" {
		t.Fatalf("product mismatch (-want +got):\n%s", diff)
	}

	if err := products.Delete(ctx, p.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := products.GetByID(ctx, p.ID); !errors.Is(err, catalogdomain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound after delete, got %v", err)
	}
	// The name is free again once the product is deleted.
	if err := products.Save(ctx, models.NewProduct("web", nil)); err != nil {
		t.Fatalf("re-create after delete: %v", err)
	}
}

func TestStore_TemplateDeleteClearsPointer(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	products, templates := s.Products(), s.Templates()

	p := models.NewProduct("web", nil)
	_ = products.Save(ctx, p)
	t1 := models.NewTemplate(p.ID, nil, models.TemplateValues{})
	t2 := models.NewTemplate(p.ID, nil, models.TemplateValues{})
	_ = templates.Save(ctx, t1)
	_ = templates.Save(ctx, t2)

	if _, err := products.SetTemplate(ctx, p.ID, t1.ID); err != nil {
		t.Fatalf("SetTemplate: %v", err)
	}

	cleared, err := templates.Delete(ctx, p.ID, t2.ID)
	if err != nil || cleared {
		t.Fatalf("deleting a non-canonical template: cleared=%v err=%v", cleared, err)
	}
	cleared, err = templates.Delete(ctx, p.ID, t1.ID)
	if err != nil || !cleared {
		t.Fatalf("deleting the canonical template: cleared=%v err=%v", cleared, err)
	}

	got, _ := products.GetByID(ctx, p.ID)
	if got.TemplateID != nil {
		t.Fatalf("expected nil pointer, got %d", *got.TemplateID)
	}
	list, _ := templates.ListByProduct(ctx, p.ID)
	if len(list) != 0 {
		t.Fatalf("expected no templates, got %d", len(list))
	}
}

func TestStore_Ownership(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	products, templates := s.Products(), s.Templates()

	a := models.NewProduct("a", nil)
	b := models.NewProduct("b", nil)
	_ = products.Save(ctx, a)
	_ = products.Save(ctx, b)
	ta := models.NewTemplate(a.ID, nil, models.TemplateValues{})
	_ = templates.Save(ctx, ta)

	if _, err := products.SetTemplate(ctx, b.ID, ta.ID); !errors.Is(err, catalogdomain.ErrTemplateNotFound) {
		t.Fatalf("expected ErrTemplateNotFound, got %v", err)
	}
	if _, err := templates.GetByID(ctx, b.ID, ta.ID); !errors.Is(err, catalogdomain.ErrTemplateNotFound) {
		t.Fatalf("expected ErrTemplateNotFound, got %v", err)
	}
	if _, err := templates.Delete(ctx, b.ID, ta.ID); !errors.Is(err, catalogdomain.ErrTemplateNotFound) {
		t.Fatalf("expected ErrTemplateNotFound, got %v", err)
	}
	if _, err := templates.ListByProduct(ctx, 99); !errors.Is(err, catalogdomain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
	if err := templates.Save(ctx, models.NewTemplate(99, nil, models.TemplateValues{})); !errors.Is(err, catalogdomain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestStore_DuplicateImageRef(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	p := models.NewProduct("web", nil)
	_ = s.Products().Save(ctx, p)

	ref := "web:1"
	if err := s.Templates().Save(ctx, models.NewTemplate(p.ID, &ref, models.TemplateValues{})); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if err := s.Templates().Save(ctx, models.NewTemplate(p.ID, &ref, models.TemplateValues{})); !errors.Is(err, catalogdomain.ErrTemplateAlreadyExists) {
		t.Fatalf("expected ErrTemplateAlreadyExists, got %v", err)
	}
	// Templates without an image never collide.
	if err := s.Templates().Save(ctx, models.NewTemplate(p.ID, nil, models.TemplateValues{})); err != nil {
		t.Fatalf("nil ref: %v", err)
	}
	if err := s.Templates().Save(ctx, models.NewTemplate(p.ID, nil, models.TemplateValues{})); err != nil {
		t.Fatalf("second nil ref: %v", err)
	}
}

func TestStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	p := models.NewProduct("web", nil)
	_ = s.Products().Save(ctx, p)
	p.Name = "mutated"

	got, _ := s.Products().GetByID(ctx, p.ID)
	if got.Name != "web" {
		t.Fatalf("store must not alias caller structs, got %q", got.Name)
	}
}

func TestStore_Find(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	p := models.NewProduct("web", nil)
	_ = s.Products().Save(ctx, p)
	tmpl := models.NewTemplate(p.ID, nil, models.TemplateValues{})
	_ = s.Templates().Save(ctx, tmpl)

	got, err := s.Templates().Find(ctx, tmpl.ID)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if got.ProductID != p.ID {
		t.Fatalf("expected product %d, got %d", p.ID, got.ProductID)
	}

	_ = s.Products().Delete(ctx, p.ID)
	if _, err := s.Templates().Find(ctx, tmpl.ID); !errors.Is(err, catalogdomain.ErrTemplateNotFound) {
		t.Fatalf("template of a deleted product must be hidden, got %v", err)
	}
	if _, err := s.Templates().Find(ctx, 99); !errors.Is(err, catalogdomain.ErrTemplateNotFound) {
		t.Fatalf("expected ErrTemplateNotFound, got %v", err)
	}
}
