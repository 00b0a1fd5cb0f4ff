package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/redis/go-redis/v9"
)

func ptr[T any](v T) *T { return &v }

func TestProductCodec_RoundTrip(t *testing.T) {
	created := time.Date(2025, 3, 1, 9, 30, 0, 123000000, time.UTC)
	tests := []struct {
		name string
		in   CachedProduct
	}{
		{"all fields", CachedProduct{ID: 7, Name: "nextcloud", Description: ptr("files"), TemplateID: ptr(int64(11)), CreatedAt: created}},
		{"no canonical template", CachedProduct{ID: 8, Name: "gitea", Description: ptr("git"), CreatedAt: created}},
		{"empty description is kept", CachedProduct{ID: 9, Name: "wiki", Description: ptr(""), CreatedAt: created}},
		{"nullable fields unset", CachedProduct{ID: 10, Name: "bare", CreatedAt: created}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := encodeProduct(&tt.in)
			vals := make(map[string]string, len(args)/2)
			for i := 0; i < len(args); i += 2 {
				vals[args[i].(string)] = args[i+1].(string)
			}

			got, err := decodeProduct(vals)
			if err != nil {
				t.Fatalf("decodeProduct: %v", err)
			}
			if diff := cmp.Diff(tt.in, *got); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeProduct_Corrupt(t *testing.T) {
	tests := map[string]map[string]string{
		"bad id":          {"id": "x", "created_at": "2025-01-01T00:00:00Z"},
		"bad created_at":  {"id": "1", "created_at": "yesterday"},
		"bad template_id": {"id": "1", "created_at": "2025-01-01T00:00:00Z", "template_id": "t"},
	}
	for name, vals := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := decodeProduct(vals); err == nil {
				t.Fatal("expected error for corrupt hash")
			}
		})
	}
}

func TestProductCache_Key(t *testing.T) {
	c := &ProductCache{client: &RedisClient{namespace: "caelus"}}
	if got := c.key(42); got != "caelus:product:42" {
		t.Errorf("key: got %q, want %q", got, "caelus:product:42")
	}
}

func newMiniredisCache(t *testing.T) *ProductCache {
	t.Helper()
	mr := miniredis.RunT(t)
	rc, err := Connect(context.Background(), "redis://"+mr.Addr(), "caelus-test")
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(func() { _ = rc.Close() })
	return NewProductCache(rc)
}

func TestProductCache_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	c := newMiniredisCache(t)
	p := &CachedProduct{ID: 41, Name: "nextcloud", TemplateID: ptr(int64(5)), CreatedAt: time.Now().UTC()}

	if _, err := c.Get(ctx, p.ID); !errors.Is(err, redis.Nil) {
		t.Fatalf("expected redis.Nil on empty cache, got %v", err)
	}

	gen, err := c.Generation(ctx, p.ID)
	if err != nil || gen != 0 {
		t.Fatalf("Generation = %d, %v; want 0, nil", gen, err)
	}
	if stored, err := c.SetIfGeneration(ctx, p, gen); err != nil || !stored {
		t.Fatalf("SetIfGeneration = %v, %v; want stored", stored, err)
	}

	p.TemplateID = nil
	if stored, err := c.SetIfGeneration(ctx, p, gen); err != nil || !stored {
		t.Fatalf("SetIfGeneration (clear pointer) = %v, %v", stored, err)
	}
	got, err := c.Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.TemplateID != nil {
		t.Errorf("expected cleared template_id, got %d", *got.TemplateID)
	}

	if err := c.Delete(ctx, p.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := c.Get(ctx, p.ID); !errors.Is(err, redis.Nil) {
		t.Fatalf("expected redis.Nil after delete, got %v", err)
	}
	if gen, _ := c.Generation(ctx, p.ID); gen != 1 {
		t.Errorf("generation after delete = %d, want 1", gen)
	}
}

func TestProductCache_WriteAfterDeleteIsDropped(t *testing.T) {
	ctx := context.Background()
	c := newMiniredisCache(t)

	gen, err := c.Generation(ctx, 7)
	if err != nil {
		t.Fatalf("Generation: %v", err)
	}
	// A pointer write lands between the reader's database load and its cache fill.
	if err := c.Delete(ctx, 7); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	stale := &CachedProduct{ID: 7, Name: "gitea", CreatedAt: time.Now().UTC()}
	stored, err := c.SetIfGeneration(ctx, stale, gen)
	if err != nil {
		t.Fatalf("SetIfGeneration: %v", err)
	}
	if stored {
		t.Fatal("a fill with an outdated generation must not be stored")
	}
	if _, err := c.Get(ctx, 7); !errors.Is(err, redis.Nil) {
		t.Fatalf("expected no entry, got %v", err)
	}
}
