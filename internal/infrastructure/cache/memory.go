package cache

import (
	"context"
	"sync"
	"time"

	"github.com/recomp/act-service/internal/domain"
)

// cacheItem is one stored nutrition record with its expiration
type cacheItem struct {
	record     *domain.NutritionRecord
	expiration time.Time
}

// MemoryCache is a thread-safe in-memory store for nutrition records with
// TTL support. Records are deep-copied on both Set and Get so callers cannot
// mutate cached state through shared Nutrition maps.
type MemoryCache struct {
	data  map[string]cacheItem
	mutex sync.RWMutex
}

// NewMemoryCache creates a new in-memory cache
func NewMemoryCache() *MemoryCache {
	cache := &MemoryCache{
		data: make(map[string]cacheItem),
	}

	go cache.cleanupExpired()

	return cache
}

// Get retrieves a record from the cache
func (c *MemoryCache) Get(ctx context.Context, key string) (*domain.NutritionRecord, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	item, exists := c.data[key]
	if !exists {
		return nil, domain.ErrCacheMiss
	}

	if time.Now().After(item.expiration) {
		return nil, domain.ErrCacheMiss
	}

	return item.record.Clone(), nil
}

// Set stores a record in the cache with TTL
func (c *MemoryCache) Set(ctx context.Context, key string, record *domain.NutritionRecord, ttl time.Duration) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.data[key] = cacheItem{
		record:     record.Clone(),
		expiration: time.Now().Add(ttl),
	}

	return nil
}

// Delete removes a record from the cache
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.data, key)
	return nil
}

// Exists checks whether a non-expired record is present for the key
func (c *MemoryCache) Exists(ctx context.Context, key string) (bool, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	item, exists := c.data[key]
	if !exists {
		return false, nil
	}
	if time.Now().After(item.expiration) {
		return false, nil
	}
	return true, nil
}

// Size returns the number of stored entries, including expired entries the
// cleanup loop has not collected yet
func (c *MemoryCache) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return len(c.data)
}

// Clear removes all entries from the cache
func (c *MemoryCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.data = make(map[string]cacheItem)
}

// cleanupExpired removes expired entries every 10 minutes
func (c *MemoryCache) cleanupExpired() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		c.mutex.Lock()
		for key, item := range c.data {
			if now.After(item.expiration) {
				delete(c.data, key)
			}
		}
		c.mutex.Unlock()
	}
}
