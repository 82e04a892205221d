package cache

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	data      []byte
	expiresAt time.Time
}

// InMemoryRenderCache implements RenderCache with a map.
// State is not shared across process instances.
type InMemoryRenderCache struct {
	mu        sync.RWMutex
	entries   map[string]entry
	maxItems  int
	now       func() time.Time
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryRenderCache creates an in-memory cache holding at most
// maxItems documents (0 means unbounded). A background goroutine evicts
// expired entries.
func NewInMemoryRenderCache(maxItems int) *InMemoryRenderCache {
	c := &InMemoryRenderCache{
		entries:  make(map[string]entry),
		maxItems: maxItems,
		now:      time.Now,
		stopChan: make(chan struct{}),
	}

	c.wg.Add(1)
	go c.cleanupLoop()

	return c
}

// Get returns the cached document
func (c *InMemoryRenderCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || !c.now().Before(e.expiresAt) {
		return nil, ErrCacheMiss
	}
	return e.data, nil
}

// Set stores a document. When the cache is full the entry closest to
// expiry is evicted.
func (c *InMemoryRenderCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && c.maxItems > 0 && len(c.entries) >= c.maxItems {
		c.evictOldestLocked()
	}
	c.entries[key] = entry{data: data, expiresAt: c.now().Add(ttl)}
	return nil
}

func (c *InMemoryRenderCache) evictOldestLocked() {
	var oldestKey string
	var oldest time.Time
	for k, e := range c.entries {
		if oldestKey == "" || e.expiresAt.Before(oldest) {
			oldestKey, oldest = k, e.expiresAt
		}
	}
	delete(c.entries, oldestKey)
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (c *InMemoryRenderCache) Close() error {
	c.closeOnce.Do(func() {
		close(c.stopChan)
		c.wg.Wait()
	})
	return nil
}

func (c *InMemoryRenderCache) cleanupLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopChan:
			return
		case <-ticker.C:
			c.cleanup()
		}
	}
}

func (c *InMemoryRenderCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for k, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, k)
		}
	}
}

// Size returns the number of stored entries, expired ones included
func (c *InMemoryRenderCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

var _ RenderCache = (*InMemoryRenderCache)(nil)
