package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/comparaprecios/backend/internal/domain"
)

// cleanupInterval controls how often expired entries are purged.
const cleanupInterval = 10 * time.Minute

// MemoryCache is an in-process TTL cache backed by go-cache.
type MemoryCache struct {
	store *gocache.Cache
}

// NewMemoryCache creates a memory cache whose entries default to the given
// TTL when Set is called with a zero duration.
func NewMemoryCache(defaultTTL time.Duration) *MemoryCache {
	return &MemoryCache{
		store: gocache.New(defaultTTL, cleanupInterval),
	}
}

// Get retrieves a value from the cache.
func (c *MemoryCache) Get(_ context.Context, key string) (interface{}, error) {
	value, found := c.store.Get(key)
	if !found {
		return nil, domain.ErrCacheMiss
	}
	return value, nil
}

// Set stores a value in the cache with the given TTL. A zero TTL uses the
// cache's default expiration.
func (c *MemoryCache) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	if ttl == 0 {
		ttl = gocache.DefaultExpiration
	}
	c.store.Set(key, value, ttl)
	return nil
}

// Delete removes a value from the cache.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.store.Delete(key)
	return nil
}

// Exists checks whether a key is present and not expired.
func (c *MemoryCache) Exists(_ context.Context, key string) (bool, error) {
	_, found := c.store.Get(key)
	return found, nil
}

// Size returns the current number of items in the cache (for debugging).
func (c *MemoryCache) Size() int {
	return c.store.ItemCount()
}
