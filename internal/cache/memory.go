package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// MemoryCache is a process-wide in-memory cache with a fixed TTL measured
// from insertion. Expiry is checked against the injected clock on read, so
// an expired entry is never served and is evicted as soon as it is seen.
type MemoryCache[V any] struct {
	cache *gocache.Cache
	ttl   time.Duration
	now   Clock
}

// NewMemoryCache creates a new memory cache. A nil clock uses time.Now.
func NewMemoryCache[V any](ttl time.Duration, now Clock) *MemoryCache[V] {
	if now == nil {
		now = time.Now
	}
	return &MemoryCache[V]{
		// go-cache's own expiry runs on wall time; ours is clock driven
		cache: gocache.New(gocache.NoExpiration, 0),
		ttl:   ttl,
		now:   now,
	}
}

// Get retrieves a live value from the cache
func (c *MemoryCache[V]) Get(key string) (V, bool) {
	var zero V
	val, found := c.cache.Get(key)
	if !found {
		return zero, false
	}
	e := val.(entry[V])
	if !c.now().Before(e.expiresAt) {
		c.cache.Delete(key)
		return zero, false
	}
	return e.value, true
}

// Set stores a value; it expires ttl after now
func (c *MemoryCache[V]) Set(key string, value V) {
	c.cache.Set(key, entry[V]{value: value, expiresAt: c.now().Add(c.ttl)}, gocache.NoExpiration)
}

// Delete removes a value from the cache
func (c *MemoryCache[V]) Delete(key string) {
	c.cache.Delete(key)
}

// Clear removes all values from the cache
func (c *MemoryCache[V]) Clear() {
	c.cache.Flush()
}

// Len returns the number of stored entries, including expired ones not yet read
func (c *MemoryCache[V]) Len() int {
	return c.cache.ItemCount()
}
