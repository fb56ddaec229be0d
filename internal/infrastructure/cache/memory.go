package cache

import (
	"context"
	"sync"
	"time"

	"github.com/greenbasket/backend/internal/domain"
)

// cacheEntry holds a product batch with its expiration
type cacheEntry struct {
	products   []domain.Product
	expiration time.Time
}

// MemoryCache is a thread-safe in-memory cache for catalog lookups with TTL
// support. Stored slices are copied on the way in and out so cached batches
// are never shared with callers.
type MemoryCache struct {
	data  map[string]cacheEntry
	mutex sync.RWMutex
}

// NewMemoryCache creates a new in-memory product cache
func NewMemoryCache() *MemoryCache {
	c := &MemoryCache{
		data: make(map[string]cacheEntry),
	}

	// Periodically drop expired entries
	go c.cleanupExpired()

	return c
}

// Get retrieves a product batch from the cache
func (c *MemoryCache) Get(ctx context.Context, key string) ([]domain.Product, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	entry, exists := c.data[key]
	if !exists || time.Now().After(entry.expiration) {
		return nil, domain.ErrCacheMiss
	}

	return copyProducts(entry.products), nil
}

// Set stores a product batch in the cache with TTL
func (c *MemoryCache) Set(ctx context.Context, key string, products []domain.Product, ttl time.Duration) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.data[key] = cacheEntry{
		products:   copyProducts(products),
		expiration: time.Now().Add(ttl),
	}

	return nil
}

// Delete removes a batch from the cache
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.data, key)
	return nil
}

// Exists checks if a key exists in the cache and is not expired
func (c *MemoryCache) Exists(ctx context.Context, key string) (bool, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	entry, exists := c.data[key]
	if !exists || time.Now().After(entry.expiration) {
		return false, nil
	}

	return true, nil
}

// Size returns the current number of entries (for debugging/monitoring)
func (c *MemoryCache) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.data)
}

// Clear removes all entries from the cache
func (c *MemoryCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.data = make(map[string]cacheEntry)
}

// cleanupExpired removes expired entries every 10 minutes
func (c *MemoryCache) cleanupExpired() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		c.mutex.Lock()
		now := time.Now()
		for key, entry := range c.data {
			if now.After(entry.expiration) {
				delete(c.data, key)
			}
		}
		c.mutex.Unlock()
	}
}

func copyProducts(products []domain.Product) []domain.Product {
	cp := make([]domain.Product, len(products))
	copy(cp, products)
	return cp
}
