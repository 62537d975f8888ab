package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	balance   int
	expiresAt time.Time
}

// MemoryCache is the single-process fallback used when Redis is
// disabled. Expired entries are dropped lazily on read.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[uint]memoryEntry
	ttl     time.Duration
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		entries: make(map[uint]memoryEntry),
		ttl:     ttl,
	}
}

func (c *MemoryCache) Get(_ context.Context, memberID uint) (int, bool) {
	c.mu.RLock()
	entry, ok := c.entries[memberID]
	c.mu.RUnlock()

	if !ok {
		return 0, false
	}
	if time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, memberID)
		c.mu.Unlock()

		return 0, false
	}

	return entry.balance, true
}

func (c *MemoryCache) Set(_ context.Context, memberID uint, balance int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[memberID] = memoryEntry{
		balance:   balance,
		expiresAt: time.Now().Add(c.ttl),
	}
}

func (c *MemoryCache) Invalidate(_ context.Context, memberID uint) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, memberID)
}
