package summarycache

import (
	"context"
	"sync"
	"time"

	"github.com/yanqian/text-summarizer/internal/domain/summarizer"
)

type entry struct {
	value     string
	expiresAt time.Time
}

// MemoryCache is an in-process implementation of the chunk cache for tests/dev.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	max     int
	now     func() time.Time
}

// NewMemoryCache constructs a cache holding at most maxEntries values; 0 means unbounded.
func NewMemoryCache(maxEntries int) *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]entry),
		max:     maxEntries,
		now:     time.Now,
	}
}

// Get implements summarizer.Cache.
func (c *MemoryCache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return "", false, nil
	}
	if c.expired(e.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return "", false, nil
	}
	return e.value, true, nil
}

// Set stores value with an optional TTL.
func (c *MemoryCache) Set(_ context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	exp := time.Time{}
	if ttl > 0 {
		exp = c.now().Add(ttl)
	}
	if _, exists := c.entries[key]; !exists && c.max > 0 && len(c.entries) >= c.max {
		c.evictLocked()
	}
	c.entries[key] = entry{value: value, expiresAt: exp}
	return nil
}

// Len reports the number of stored entries, expired ones included.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// evictLocked drops expired entries, or an arbitrary one when nothing has expired.
func (c *MemoryCache) evictLocked() {
	removed := false
	for key, e := range c.entries {
		if c.expired(e.expiresAt) {
			delete(c.entries, key)
			removed = true
		}
	}
	if removed {
		return
	}
	for key := range c.entries {
		delete(c.entries, key)
		return
	}
}

func (c *MemoryCache) expired(ts time.Time) bool {
	if ts.IsZero() {
		return false
	}
	return ts.Before(c.now())
}

var _ summarizer.Cache = (*MemoryCache)(nil)
