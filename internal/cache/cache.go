// Package cache is a process-wide TTL memoization layer. Entries expire
// lazily on read; writers drop stale aggregates with InvalidateByPrefix.
package cache

import (
	"strings"
	"sync"
	"time"
)

type entry struct {
	value    any
	storedAt time.Time
}

type Cache struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

func New() *Cache {
	return &Cache{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Key derives a deterministic cache key from a logical operation name and its
// argument values, so identical calls collide and differing calls do not.
func Key(op string, args ...string) string {
	if len(args) == 0 {
		return op
	}
	return op + ":" + strings.Join(args, ":")
}

// Get returns the cached value if it was stored within ttl of now. An expired
// entry is evicted on the spot; there is no background sweeper.
func (c *Cache) Get(key string, ttl time.Duration) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(e.storedAt) > ttl {
		delete(c.entries, key)
		return nil, false
	}
	return e.value, true
}

func (c *Cache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{value: value, storedAt: c.now()}
}

func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}

// InvalidateByPrefix deletes every entry whose key starts with prefix.
func (c *Cache) InvalidateByPrefix(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
		}
	}
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
