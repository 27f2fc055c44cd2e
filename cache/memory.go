package cache

import (
	"context"
	"sync"
)

// MemoryCache is a process-local cache. It is the default when no
// Redis address is configured, and doubles as the test fake.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]string
}

func NewMemory() *MemoryCache {
	return &MemoryCache{entries: make(map[string]string)}
}

func (c *MemoryCache) Get(_ context.Context, key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	val, ok := c.entries[key]
	return val, ok
}

func (c *MemoryCache) Set(_ context.Context, key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	return nil
}
