package main

import (
	"sync"
	"time"
)

// ModelCache provides thread-safe caching for the provider model catalog,
// which changes rarely and is expensive to fetch on every request.
type ModelCache struct {
	mu          sync.RWMutex
	models      []ModelInfo
	lastUpdated time.Time
	ttl         time.Duration
}

// NewModelCache creates a new model catalog cache with the specified TTL
func NewModelCache(ttl time.Duration) *ModelCache {
	return &ModelCache{
		ttl: ttl,
	}
}

// Get retrieves the catalog from cache if not expired.
// Returns the models and a boolean indicating a cache hit.
func (c *ModelCache) Get() ([]ModelInfo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.models) == 0 {
		return nil, false
	}

	if time.Since(c.lastUpdated) > c.ttl {
		return nil, false
	}

	// Return a copy to prevent external modifications
	modelsCopy := make([]ModelInfo, len(c.models))
	copy(modelsCopy, c.models)

	return modelsCopy, true
}

// Set updates the cache with a fresh catalog
func (c *ModelCache) Set(models []ModelInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.models = make([]ModelInfo, len(models))
	copy(c.models, models)
	c.lastUpdated = time.Now()
}

// Clear empties the cache
func (c *ModelCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.models = nil
	c.lastUpdated = time.Time{}
}

// LastUpdated returns when the cache was last refreshed
func (c *ModelCache) LastUpdated() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.lastUpdated
}

// IsExpired checks if the cache has expired
func (c *ModelCache) IsExpired() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.models) == 0 {
		return true
	}

	return time.Since(c.lastUpdated) > c.ttl
}
