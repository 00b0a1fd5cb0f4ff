// Package memory is an in-process catalog store with the same observable
// behavior as the Postgres repositories, minus event publishing. It backs
// the service, API and CLI tests; no binary wires it.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	catalogdomain "github.com/caelus-deploy/caelus/services/catalog/domain"
	"github.com/caelus-deploy/caelus/services/catalog/domain/models"
)

// Store holds products and templates behind a single mutex.
type Store struct {
	mu sync.Mutex

	now func() time.Time

	nextProductID  int64
	nextTemplateID int64

	products  map[int64]*productRow
	templates map[int64]*templateRow
}

type productRow struct {
	product models.Product
	deleted bool
}

type templateRow struct {
	template models.Template
	deleted  bool
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the source of created_at timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore returns an empty Store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		now:       func() time.Time { return time.Now().UTC() },
		products:  make(map[int64]*productRow),
		templates: make(map[int64]*templateRow),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Products returns a ProductRepository view of the store.
func (s *Store) Products() *ProductRepository { return &ProductRepository{s: s} }

// Templates returns a TemplateRepository view of the store.
func (s *Store) Templates() *TemplateRepository { return &TemplateRepository{s: s} }

// ProductRepository implements repositories.ProductRepository in memory.
type ProductRepository struct{ s *Store }

func (r *ProductRepository) Save(_ context.Context, p *models.Product) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, row := range s.products {
		if !row.deleted && row.product.Name == p.Name {
			return catalogdomain.ErrProductAlreadyExists
		}
	}
	s.nextProductID++
	p.ID = s.nextProductID
	p.CreatedAt = s.now()
	s.products[p.ID] = &productRow{product: copyProduct(p)}
	return nil
}

func (r *ProductRepository) GetByID(_ context.Context, id int64) (*models.Product, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.activeProduct(id)
	if !ok {
		return nil, catalogdomain.ErrProductNotFound
	}
	p := copyProduct(&row.product)
	return &p, nil
}

func (r *ProductRepository) List(_ context.Context) ([]*models.Product, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []*models.Product{}
	for _, row := range s.products {
		if row.deleted {
			continue
		}
		p := copyProduct(&row.product)
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *ProductRepository) SetTemplate(_ context.Context, productID, templateID int64) (*models.Product, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.activeProduct(productID)
	if !ok {
		return nil, catalogdomain.ErrProductNotFound
	}
	t, ok := s.templates[templateID]
	if !ok || t.deleted || t.template.ProductID != productID {
		return nil, catalogdomain.ErrTemplateNotFound
	}
	id := templateID
	row.product.TemplateID = &id
	p := copyProduct(&row.product)
	return &p, nil
}

func (r *ProductRepository) Delete(_ context.Context, id int64) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.activeProduct(id)
	if !ok {
		return catalogdomain.ErrProductNotFound
	}
	row.deleted = true
	return nil
}

// TemplateRepository implements repositories.TemplateRepository in memory.
type TemplateRepository struct{ s *Store }

func (r *TemplateRepository) Save(_ context.Context, t *models.Template) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.activeProduct(t.ProductID); !ok {
		return catalogdomain.ErrProductNotFound
	}
	if t.ImageRef != nil {
		for _, row := range s.templates {
			if !row.deleted && row.template.ProductID == t.ProductID &&
				row.template.ImageRef != nil && *row.template.ImageRef == *t.ImageRef {
				return catalogdomain.ErrTemplateAlreadyExists
			}
		}
	}
	s.nextTemplateID++
	t.ID = s.nextTemplateID
	t.CreatedAt = s.now()
	s.templates[t.ID] = &templateRow{template: copyTemplate(t)}
	return nil
}

func (r *TemplateRepository) GetByID(_ context.Context, productID, id int64) (*models.Template, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.activeTemplate(productID, id)
	if !ok {
		return nil, catalogdomain.ErrTemplateNotFound
	}
	t := copyTemplate(&row.template)
	return &t, nil
}

func (r *TemplateRepository) Find(_ context.Context, id int64) (*models.Template, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.templates[id]
	if !ok {
		return nil, catalogdomain.ErrTemplateNotFound
	}
	if _, ok := s.activeTemplate(row.template.ProductID, id); !ok {
		return nil, catalogdomain.ErrTemplateNotFound
	}
	t := copyTemplate(&row.template)
	return &t, nil
}

func (r *TemplateRepository) ListByProduct(_ context.Context, productID int64) ([]*models.Template, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.activeProduct(productID); !ok {
		return nil, catalogdomain.ErrProductNotFound
	}
	out := []*models.Template{}
	for _, row := range s.templates {
		if row.deleted || row.template.ProductID != productID {
			continue
		}
		t := copyTemplate(&row.template)
		out = append(out, &t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *TemplateRepository) Delete(_ context.Context, productID, id int64) (bool, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.activeTemplate(productID, id)
	if !ok {
		return false, catalogdomain.ErrTemplateNotFound
	}
	row.deleted = true

	p := s.products[productID]
	if p.product.IsCanonical(id) {
		p.product.TemplateID = nil
		return true, nil
	}
	return false, nil
}

// Templates of a deleted product are unreachable, matching the SQL joins.
func (s *Store) activeTemplate(productID, id int64) (*templateRow, bool) {
	if _, ok := s.activeProduct(productID); !ok {
		return nil, false
	}
	row, ok := s.templates[id]
	if !ok || row.deleted || row.template.ProductID != productID {
		return nil, false
	}
	return row, true
}

func (s *Store) activeProduct(id int64) (*productRow, bool) {
	row, ok := s.products[id]
	if !ok || row.deleted {
		return nil, false
	}
	return row, true
}

func copyProduct(p *models.Product) models.Product {
	out := *p
	if p.Description != nil {
		d := *p.Description
		out.Description = &d
	}
	if p.TemplateID != nil {
		id := *p.TemplateID
		out.TemplateID = &id
	}
	return out
}

func copyTemplate(t *models.Template) models.Template {
	out := *t
	if t.ImageRef != nil {
		ref := *t.ImageRef
		out.ImageRef = &ref
	}
	out.Values = t.Values.Clone()
	return out
}
