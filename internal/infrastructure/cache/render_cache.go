// Package cache stores rendered print PDFs so repeated requests for the same
// dashboard snapshot and period expressions skip the browser.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"time"
)

// DefaultKeyPrefix namespaces render cache keys
const DefaultKeyPrefix = "dashprint:pdf:"

// ErrCacheMiss is returned by Get when no entry exists
var ErrCacheMiss = errors.New("render cache miss")

// RenderCache stores rendered documents by key
type RenderCache interface {
	// Get returns the cached document or ErrCacheMiss
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores a document for ttl
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Close releases resources held by the cache
	Close() error
}

// Key derives a cache key from its parts. Each part is length prefixed, so
// no two part lists share a key.
func Key(parts ...string) string {
	h := sha256.New()
	var size [8]byte
	for _, part := range parts {
		binary.BigEndian.PutUint64(size[:], uint64(len(part)))
		h.Write(size[:])
		h.Write([]byte(part))
	}
	return hex.EncodeToString(h.Sum(nil))
}
