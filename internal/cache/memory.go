package cache

import (
	"context"
	"sync"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/findash/internal/types"
)

type memoryEntry struct {
	series    types.PriceSeries
	expiresAt optional.Option[time.Time]
}

// MemoryCache is a process local Cache. A ttl of 0 keeps entries forever.
type MemoryCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		mu:      sync.RWMutex{},
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Get implements Cache.
func (c *MemoryCache) Get(_ context.Context, key string) (optional.Option[types.PriceSeries], error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return optional.None[types.PriceSeries](), nil
	}

	if entry.expiresAt.IsSome() && !c.now().Before(entry.expiresAt.Unwrap()) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()

		return optional.None[types.PriceSeries](), nil
	}

	return optional.Some(entry.series), nil
}

// Set implements Cache.
func (c *MemoryCache) Set(_ context.Context, key string, series types.PriceSeries) error {
	expiresAt := optional.None[time.Time]()
	if c.ttl > 0 {
		expiresAt = optional.Some(c.now().Add(c.ttl))
	}

	c.mu.Lock()
	c.entries[key] = memoryEntry{series: series, expiresAt: expiresAt}
	c.mu.Unlock()

	return nil
}

// Delete implements Cache.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()

	return nil
}

// Len returns the number of stored entries, expired ones included.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}
