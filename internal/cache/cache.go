package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryCache is an in-process Cache. Expired entries are dropped lazily on
// read and by a background sweep.
type MemoryCache struct {
	mu     sync.RWMutex
	items  map[string]entry
	now    func() time.Time
	stopCh chan struct{}
	once   sync.Once
}

type entry struct {
	value     []byte
	expiresAt time.Time
}

// NewMemory creates a memory cache and starts its sweeper. Call Stop to end
// the sweeper.
func NewMemory() *MemoryCache {
	c := &MemoryCache{
		items:  make(map[string]entry),
		now:    time.Now,
		stopCh: make(chan struct{}),
	}
	go c.cleanup(time.Minute)
	return c
}

func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.items[key]
	if !ok || c.now().After(e.expiresAt) {
		return nil, false
	}
	return e.value, true
}

func (c *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = entry{
		value:     value,
		expiresAt: c.now().Add(ttl),
	}
}

func (c *MemoryCache) Delete(ctx context.Context, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

// Len reports the number of stored entries, expired or not.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *MemoryCache) Stop() {
	c.once.Do(func() { close(c.stopCh) })
}

func (c *MemoryCache) cleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.removeExpired()
		case <-c.stopCh:
			return
		}
	}
}

func (c *MemoryCache) removeExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, e := range c.items {
		if now.After(e.expiresAt) {
			delete(c.items, key)
		}
	}
}

var _ Cache = (*MemoryCache)(nil)
