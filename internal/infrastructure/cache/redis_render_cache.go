package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// RedisRenderCache implements RenderCache using Redis.
// It is suitable when several instances share rendered documents.
type RedisRenderCache struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisRenderCache creates a Redis render cache and checks the connection
func NewRedisRenderCache(cfg RedisConfig) (*RedisRenderCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisRenderCache{
		client:    client,
		keyPrefix: DefaultKeyPrefix,
	}, nil
}

// NewRedisRenderCacheWithClient creates a cache with an existing Redis client
func NewRedisRenderCacheWithClient(client *redis.Client, keyPrefix string) *RedisRenderCache {
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}
	return &RedisRenderCache{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Get returns the cached document
func (c *RedisRenderCache) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := c.client.Get(ctx, c.keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cached document: %w", err)
	}
	return data, nil
}

// Set stores a document with a TTL
func (c *RedisRenderCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.keyPrefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache document: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (c *RedisRenderCache) Close() error {
	return c.client.Close()
}

// Client returns the underlying Redis client
func (c *RedisRenderCache) Client() *redis.Client {
	return c.client
}

var _ RenderCache = (*RedisRenderCache)(nil)
