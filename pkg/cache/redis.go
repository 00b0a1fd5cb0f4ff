package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/caelus-deploy/caelus/pkg/config"
)

const connectTimeout = 2 * time.Second

// RedisClient wraps redis.Client and scopes cache keys under a namespace so
// the gateway cache and the admin sessions can share one Redis database.
type RedisClient struct {
	client    *redis.Client
	namespace string
}

// NewRedisClient connects to cfg.RedisURL and namespaces keys by cfg.CacheNamespace.
func NewRedisClient(cfg *config.Config) (*RedisClient, error) {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	return Connect(ctx, cfg.RedisURL, cfg.CacheNamespace)
}

// Connect parses url, applies the pool settings and verifies connectivity
// within ctx. An empty namespace leaves keys unprefixed.
func Connect(ctx context.Context, url, namespace string) (*RedisClient, error) {
	opts, err := poolOptions(url)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return &RedisClient{client: rdb, namespace: namespace}, nil
}

// poolOptions parses url and sizes the pool for a handful of request-scoped
// commands per HTTP request.
func poolOptions(url string) (*redis.Options, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	opts.PoolSize = 10
	opts.MinIdleConns = 2
	opts.MaxRetries = 3
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second
	opts.PoolTimeout = 4 * time.Second
	return opts, nil
}

// Key joins parts with ':' under the client's namespace.
func (r *RedisClient) Key(parts ...string) string {
	key := strings.Join(parts, ":")
	if r.namespace == "" {
		return key
	}
	return r.namespace + ":" + key
}

// Ping checks the Redis connection health.
func (r *RedisClient) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// Close shuts down the connection pool.
func (r *RedisClient) Close() error {
	if r.client == nil {
		return nil
	}
	if err := r.client.Close(); err != nil {
		return fmt.Errorf("redis close: %w", err)
	}
	return nil
}

// Client returns the underlying redis.Client.
func (r *RedisClient) Client() *redis.Client {
	return r.client
}
