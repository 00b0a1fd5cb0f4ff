package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// ProductCacheTTL is the time-to-live for cached products.
	ProductCacheTTL = 10 * time.Minute

	// generationTTL outlives every cached entry so a counter never resets
	// while an entry it guards can still be written.
	generationTTL = 24 * time.Hour

	productCacheKeyPrefix = "product"
)

// CachedProduct is the read model stored in Redis for GET /products/{id}.
// Nullable columns are stored only when set, so a missing hash field means NULL.
type CachedProduct struct {
	ID          int64
	Name        string
	Description *string
	TemplateID  *int64
	CreatedAt   time.Time
}

// ProductCache provides structured read/write operations for product cache entries.
// Key format: "{namespace}:product:{productID}"
type ProductCache struct {
	client *RedisClient
}

// NewProductCache creates a new ProductCache backed by the given RedisClient.
func NewProductCache(r *RedisClient) *ProductCache {
	return &ProductCache{client: r}
}

// Get retrieves a cached product.
// Returns redis.Nil error when the key does not exist or has expired.
func (c *ProductCache) Get(ctx context.Context, productID int64) (*CachedProduct, error) {
	vals, err := c.client.Client().HGetAll(ctx, c.key(productID)).Result()
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}
	if len(vals) == 0 {
		return nil, redis.Nil
	}
	return decodeProduct(vals)
}

// Generation returns the product's invalidation counter. A missing counter
// reads as zero. Read it before loading the product from the database and
// pass it to SetIfGeneration.
func (c *ProductCache) Generation(ctx context.Context, productID int64) (int64, error) {
	n, err := c.client.Client().Get(ctx, c.generationKey(productID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("cache generation: %w", err)
	}
	return n, nil
}

// SetIfGeneration replaces the cached product hash and resets its TTL, but
// only when no Delete ran since gen was read. A read that raced a write can
// therefore never put the pre-write row back. It reports whether p was stored.
func (c *ProductCache) SetIfGeneration(ctx context.Context, p *CachedProduct, gen int64) (bool, error) {
	genKey := c.generationKey(p.ID)
	stored := false
	err := c.client.Client().Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != gen {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			key := c.key(p.ID)
			pipe.Del(ctx, key)
			pipe.HSet(ctx, key, encodeProduct(p)...)
			pipe.Expire(ctx, key, ProductCacheTTL)
			return nil
		})
		stored = err == nil
		return err
	}, genKey)
	if errors.Is(err, redis.TxFailedErr) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache set: %w", err)
	}
	return stored, nil
}

// Delete removes a cached product and bumps its generation, so in-flight
// SetIfGeneration calls that read the old generation are dropped.
func (c *ProductCache) Delete(ctx context.Context, productID int64) error {
	genKey := c.generationKey(productID)
	pipe := c.client.Client().TxPipeline()
	pipe.Incr(ctx, genKey)
	pipe.Expire(ctx, genKey, generationTTL)
	pipe.Del(ctx, c.key(productID))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}

func (c *ProductCache) key(productID int64) string {
	return c.client.Key(productCacheKeyPrefix, strconv.FormatInt(productID, 10))
}

func (c *ProductCache) generationKey(productID int64) string {
	return c.client.Key(productCacheKeyPrefix, strconv.FormatInt(productID, 10), "gen")
}

func encodeProduct(p *CachedProduct) []any {
	fields := []any{
		"id", strconv.FormatInt(p.ID, 10),
		"name", p.Name,
		"created_at", p.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	if p.Description != nil {
		fields = append(fields, "description", *p.Description)
	}
	if p.TemplateID != nil {
		fields = append(fields, "template_id", strconv.FormatInt(*p.TemplateID, 10))
	}
	return fields
}

func decodeProduct(vals map[string]string) (*CachedProduct, error) {
	id, err := strconv.ParseInt(vals["id"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("cache parse id: %w", err)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, vals["created_at"])
	if err != nil {
		return nil, fmt.Errorf("cache parse created_at: %w", err)
	}

	p := &CachedProduct{ID: id, Name: vals["name"], CreatedAt: createdAt}
	if d, ok := vals["description"]; ok {
		p.Description = &d
	}
	if raw, ok := vals["template_id"]; ok {
		tid, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("cache parse template_id: %w", err)
		}
		p.TemplateID = &tid
	}
	return p, nil
}
