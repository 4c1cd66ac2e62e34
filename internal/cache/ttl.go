// Package cache provides a small TTL-bounded in-memory cache used to memoize
// upstream market-data responses.
package cache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value    V
	expireAt time.Time
}

// TTL is a mutex-guarded map with per-cache time-to-live. Staleness is checked
// on read; expired entries are evicted opportunistically as they are touched.
// Safe for concurrent use.
type TTL[V any] struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[string]entry[V]
}

// NewTTL creates a cache whose entries live for ttl after being set
func NewTTL[V any](ttl time.Duration) *TTL[V] {
	return &TTL[V]{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]entry[V]),
	}
}

// SetClock overrides the time source. Test hook.
func (c *TTL[V]) SetClock(now func() time.Time) {
	c.now = now
}

// Get returns the cached value and whether it is present and fresh
func (c *TTL[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	if !c.now().Before(e.expireAt) {
		delete(c.entries, key)
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores a value, restarting its TTL
func (c *TTL[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry[V]{
		value:    value,
		expireAt: c.now().Add(c.ttl),
	}
}

// Len reports how many entries are held, including any not yet evicted
// stale ones.
func (c *TTL[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Evict drops every expired entry and returns how many were removed
func (c *TTL[V]) Evict() int {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, e := range c.entries {
		if !now.Before(e.expireAt) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}
