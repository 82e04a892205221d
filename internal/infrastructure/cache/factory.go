package cache

import (
	"fmt"

	"go.uber.org/zap"
)

const defaultInMemoryItems = 256

// RenderCacheFactory creates render caches based on configuration
type RenderCacheFactory struct {
	redisConfig           RedisConfig
	redisEnabled          bool
	logger                *zap.Logger
	allowInMemoryFallback bool
	maxItems              int
}

// RenderCacheFactoryOption is a functional option for configuring the factory
type RenderCacheFactoryOption func(*RenderCacheFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) RenderCacheFactoryOption {
	return func(f *RenderCacheFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory cache
// when Redis is unavailable. Default is true.
func WithInMemoryFallback(allow bool) RenderCacheFactoryOption {
	return func(f *RenderCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// WithMaxItems bounds the in-memory cache
func WithMaxItems(n int) RenderCacheFactoryOption {
	return func(f *RenderCacheFactory) {
		f.maxItems = n
	}
}

// NewRenderCacheFactory creates a new factory. With redisEnabled false the
// factory always produces the in-memory cache.
func NewRenderCacheFactory(cfg RedisConfig, redisEnabled bool, opts ...RenderCacheFactoryOption) *RenderCacheFactory {
	f := &RenderCacheFactory{
		redisConfig:           cfg,
		redisEnabled:          redisEnabled,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
		maxItems:              defaultInMemoryItems,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateCache tries Redis first and falls back to memory when allowed
func (f *RenderCacheFactory) CreateCache() (RenderCache, error) {
	if !f.redisEnabled {
		f.logger.Info("using in-memory render cache", zap.Int("max_items", f.maxItems))
		return NewInMemoryRenderCache(f.maxItems), nil
	}

	store, err := NewRedisRenderCache(f.redisConfig)
	if err == nil {
		f.logger.Info("using Redis render cache",
			zap.String("host", f.redisConfig.Host),
			zap.Int("port", f.redisConfig.Port))
		return store, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for render cache but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory render cache", zap.Error(err))
	return NewInMemoryRenderCache(f.maxItems), nil
}
