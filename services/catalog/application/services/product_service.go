package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	pkgcache "github.com/caelus-deploy/caelus/pkg/cache"
	"github.com/caelus-deploy/caelus/pkg/logger"
	catalogdomain "github.com/caelus-deploy/caelus/services/catalog/domain"
	"github.com/caelus-deploy/caelus/services/catalog/domain/models"
	"github.com/caelus-deploy/caelus/services/catalog/domain/repositories"
	domainsvcs "github.com/caelus-deploy/caelus/services/catalog/domain/services"
)

// ProductService orchestrates products and their canonical pointer.
// Reads by id go through the Redis cache when one is configured; every write
// that can change a product invalidates its cache entry after it commits.
type ProductService struct {
	repo  repositories.ProductRepository
	cache *pkgcache.ProductCache
	log   logger.Logger
}

// NewProductService returns a ProductService. productCache may be nil.
func NewProductService(repo repositories.ProductRepository, productCache *pkgcache.ProductCache, log logger.Logger) *ProductService {
	return &ProductService{repo: repo, cache: productCache, log: log}
}

// Create validates and persists a product with no canonical template.
func (s *ProductService) Create(ctx context.Context, name string, description *string) (*models.Product, error) {
	productName, err := models.NewProductName(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", catalogdomain.ErrInvalidProduct, err)
	}

	p := models.NewProduct(productName, description)
	if err := domainsvcs.ValidateProductForCreation(p); err != nil {
		return nil, fmt.Errorf("%w: %w", catalogdomain.ErrInvalidProduct, err)
	}

	if err := s.repo.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("save product: %w", err)
	}
	return p, nil
}

// GetByID retrieves a product using a read-through cache:
//  1. Check Redis first.
//  2. On miss (or cache error), note the entry's generation and query Postgres.
//  3. Fill the cache with the Postgres result unless a write invalidated the
//     entry in between.
func (s *ProductService) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	gen, cacheable := s.cachedGeneration(ctx, id)
	if cacheable {
		cached, err := s.cache.Get(ctx, id)
		if err == nil {
			return fromCached(cached), nil
		}
		if !errors.Is(err, redis.Nil) {
			s.log.WarnContext(ctx, "product cache read failed", "product_id", id, "error", err)
			cacheable = false
		}
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}

	if cacheable {
		if _, err := s.cache.SetIfGeneration(ctx, toCached(p), gen); err != nil {
			s.log.WarnContext(ctx, "product cache fill failed", "product_id", id, "error", err)
		}
	}
	return p, nil
}

// cachedGeneration reads the cache generation before the database is touched.
// It reports false when there is no cache or Redis is unavailable.
func (s *ProductService) cachedGeneration(ctx context.Context, id int64) (int64, bool) {
	if s.cache == nil {
		return 0, false
	}
	gen, err := s.cache.Generation(ctx, id)
	if err != nil {
		s.log.WarnContext(ctx, "product cache generation read failed", "product_id", id, "error", err)
		return 0, false
	}
	return gen, true
}

// List returns all active products.
func (s *ProductService) List(ctx context.Context) ([]*models.Product, error) {
	products, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// SetCanonical points the product at templateID. The write is unconditional:
// the last caller wins. Returns ErrTemplateNotFound when the template is not
// an active template of this product, leaving the pointer unchanged.
func (s *ProductService) SetCanonical(ctx context.Context, productID, templateID int64) (*models.Product, error) {
	p, err := s.repo.SetTemplate(ctx, productID, templateID)
	if err != nil {
		return nil, fmt.Errorf("set canonical template: %w", err)
	}
	s.Invalidate(ctx, productID)
	s.log.InfoContext(ctx, "canonical template set", "product_id", productID, "template_id", templateID)
	return p, nil
}

// Delete soft-deletes a product.
func (s *ProductService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	s.Invalidate(ctx, id)
	return nil
}

// Invalidate drops the cached copy of a product. Cache failures are logged,
// never returned: the entry expires on its own.
func (s *ProductService) Invalidate(ctx context.Context, id int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, id); err != nil {
		s.log.WarnContext(ctx, "product cache invalidation failed", "product_id", id, "error", err)
	}
}

func toCached(p *models.Product) *pkgcache.CachedProduct {
	return &pkgcache.CachedProduct{
		ID:          p.ID,
		Name:        p.Name.String(),
		Description: p.Description,
		TemplateID:  p.TemplateID,
		CreatedAt:   p.CreatedAt,
	}
}

func fromCached(c *pkgcache.CachedProduct) *models.Product {
	return &models.Product{
		ID:          c.ID,
		Name:        models.ProductName(c.Name),
		Description: c.Description,
		TemplateID:  c.TemplateID,
		CreatedAt:   c.CreatedAt,
	}
}
