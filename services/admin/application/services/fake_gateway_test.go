package services

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/caelus-deploy/caelus/services/admin/domain"
	"github.com/caelus-deploy/caelus/services/admin/domain/models"
)

// fakeGateway mimics the catalog API: deleting the canonical template clears
// the pointer. With lax set it accepts pointers to foreign templates.
type fakeGateway struct {
	products  map[int64]*models.Product
	templates map[int64][]models.Template
	nextID    int64
	now       time.Time
	tick      time.Duration
	lax       bool

	calls    []string
	failOn   map[string]error
	onDelete func(g *fakeGateway)
}

func newFakeGateway(productIDs ...int64) *fakeGateway {
	g := &fakeGateway{
		products:  make(map[int64]*models.Product),
		templates: make(map[int64][]models.Template),
		now:       time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC),
		tick:      time.Minute,
		failOn:    make(map[string]error),
	}
	for _, id := range productIDs {
		g.products[id] = &models.Product{ID: id, Name: fmt.Sprintf("product-%d", id), CreatedAt: g.now}
	}
	return g
}

func (g *fakeGateway) call(name string) error {
	g.calls = append(g.calls, name)
	if err, ok := g.failOn[name]; ok {
		return err
	}
	return nil
}

func (g *fakeGateway) pointer(productID int64) *int64 {
	return g.products[productID].TemplateID
}

func (g *fakeGateway) add(productID int64) models.Template {
	g.nextID++
	g.now = g.now.Add(g.tick)
	t := models.Template{ID: g.nextID, ProductID: productID, CreatedAt: g.now}
	g.templates[productID] = append(g.templates[productID], t)
	return t
}

func (g *fakeGateway) ListProducts(context.Context) ([]models.Product, error) {
	if err := g.call("ListProducts"); err != nil {
		return nil, err
	}
	out := make([]models.Product, 0, len(g.products))
	for _, p := range g.products {
		out = append(out, *p)
	}
	slices.SortFunc(out, func(a, b models.Product) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (g *fakeGateway) GetProduct(_ context.Context, productID int64) (*models.Product, error) {
	if err := g.call("GetProduct"); err != nil {
		return nil, err
	}
	p, ok := g.products[productID]
	if !ok {
		return nil, fmt.Errorf("%w: product not found", domain.ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

func (g *fakeGateway) CreateProduct(_ context.Context, name string, description *string) (*models.Product, error) {
	if err := g.call("CreateProduct"); err != nil {
		return nil, err
	}
	id := int64(len(g.products) + 1)
	for g.products[id] != nil {
		id++
	}
	p := &models.Product{ID: id, Name: name, Description: description, CreatedAt: g.now}
	g.products[id] = p
	cp := *p
	return &cp, nil
}

func (g *fakeGateway) DeleteProduct(_ context.Context, productID int64) error {
	if err := g.call("DeleteProduct"); err != nil {
		return err
	}
	if _, ok := g.products[productID]; !ok {
		return fmt.Errorf("%w: product not found", domain.ErrNotFound)
	}
	delete(g.products, productID)
	delete(g.templates, productID)
	return nil
}

func (g *fakeGateway) SetProductTemplate(_ context.Context, productID, templateID int64) (*models.Product, error) {
	if err := g.call("SetProductTemplate"); err != nil {
		return nil, err
	}
	p, ok := g.products[productID]
	if !ok {
		return nil, fmt.Errorf("%w: product not found", domain.ErrNotFound)
	}
	owned := slices.ContainsFunc(g.templates[productID], func(t models.Template) bool { return t.ID == templateID })
	if !owned && !g.lax {
		return nil, fmt.Errorf("%w: template not found", domain.ErrNotFound)
	}
	id := templateID
	p.TemplateID = &id
	cp := *p
	return &cp, nil
}

func (g *fakeGateway) ListTemplates(_ context.Context, productID int64) ([]models.Template, error) {
	if err := g.call("ListTemplates"); err != nil {
		return nil, err
	}
	if _, ok := g.products[productID]; !ok {
		return nil, fmt.Errorf("%w: product not found", domain.ErrNotFound)
	}
	return slices.Clone(g.templates[productID]), nil
}

func (g *fakeGateway) CreateTemplate(_ context.Context, productID int64, imageRef *string) (*models.Template, error) {
	if err := g.call("CreateTemplate"); err != nil {
		return nil, err
	}
	if _, ok := g.products[productID]; !ok {
		return nil, fmt.Errorf("%w: product not found", domain.ErrNotFound)
	}
	t := g.add(productID)
	t.ImageRef = imageRef
	g.templates[productID][len(g.templates[productID])-1] = t
	return &t, nil
}

func (g *fakeGateway) DeleteTemplate(_ context.Context, productID, templateID int64) error {
	if err := g.call("DeleteTemplate"); err != nil {
		return err
	}
	p, ok := g.products[productID]
	if !ok {
		return fmt.Errorf("%w: product not found", domain.ErrNotFound)
	}
	i := slices.IndexFunc(g.templates[productID], func(t models.Template) bool { return t.ID == templateID })
	if i < 0 {
		return fmt.Errorf("%w: template not found", domain.ErrNotFound)
	}
	g.templates[productID] = slices.Delete(g.templates[productID], i, i+1)
	if p.TemplateID != nil && *p.TemplateID == templateID {
		p.TemplateID = nil
	}
	if g.onDelete != nil {
		g.onDelete(g)
	}
	return nil
}
