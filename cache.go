package relayq

import (
	"sync"
	"time"
)

// Cache stores successful GET responses keyed by endpoint. A miss is a
// normal outcome, never an error.
type Cache interface {
	Get(key string) (*Response, bool)
	Set(key string, value *Response, ttl time.Duration)
	Delete(key string)
	Clear()
	Len() int
}

type cacheEntry struct {
	value      *Response
	insertedAt time.Time
	expiresAt  time.Time
}

// InMemoryCache is a TTL cache with optional bounded capacity. Expiration is
// lazy on read; when maxEntries is exceeded the least-recently-inserted
// entry is evicted first. An optional janitor goroutine sweeps expired
// entries for hygiene; it is functionally equivalent to lazy expiration.
type InMemoryCache struct {
	mu         sync.Mutex
	store      map[string]*cacheEntry
	order      []string
	maxEntries int
	stop       chan struct{}
	stopOnce   sync.Once
}

// NewInMemoryCache creates an in-memory cache. maxEntries <= 0 means
// unbounded; cleanupInterval <= 0 disables the background sweep. Call Stop
// to release the janitor when a sweep interval was configured.
func NewInMemoryCache(maxEntries int, cleanupInterval time.Duration) *InMemoryCache {
	c := &InMemoryCache{
		store:      make(map[string]*cacheEntry),
		maxEntries: maxEntries,
		stop:       make(chan struct{}),
	}

	if cleanupInterval > 0 {
		go c.janitor(cleanupInterval)
	}

	return c
}

// Get retrieves a cached value. Expired entries are treated as absent and
// removed on the way out.
func (c *InMemoryCache) Get(key string) (*Response, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, exists := c.store[key]
	if !exists {
		return nil, false
	}

	if time.Now().After(entry.expiresAt) {
		c.removeLocked(key)
		return nil, false
	}

	return entry.value, true
}

// Set stores a value with the current timestamp, overwriting any prior entry
// for the key. Overwriting counts as a fresh insertion for eviction order.
func (c *InMemoryCache) Set(key string, value *Response, ttl time.Duration) {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.store[key]; exists {
		c.removeFromOrderLocked(key)
	}

	c.store[key] = &cacheEntry{
		value:      value,
		insertedAt: now,
		expiresAt:  now.Add(ttl),
	}
	c.order = append(c.order, key)

	if c.maxEntries > 0 {
		for len(c.store) > c.maxEntries {
			c.removeLocked(c.order[0])
		}
	}
}

// Delete removes a cache entry.
func (c *InMemoryCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.removeLocked(key)
}

// Clear removes all cache entries.
func (c *InMemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.store = make(map[string]*cacheEntry)
	c.order = c.order[:0]
}

// Len returns the number of stored entries, including any not yet swept.
func (c *InMemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.store)
}

// Stop terminates the janitor goroutine, if one is running.
func (c *InMemoryCache) Stop() {
	c.stopOnce.Do(func() {
		close(c.stop)
	})
}

func (c *InMemoryCache) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.sweep()
		case <-c.stop:
			return
		}
	}
}

func (c *InMemoryCache) sweep() {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	for key, entry := range c.store {
		if now.After(entry.expiresAt) {
			c.removeLocked(key)
		}
	}
}

func (c *InMemoryCache) removeLocked(key string) {
	if _, exists := c.store[key]; !exists {
		return
	}
	delete(c.store, key)
	c.removeFromOrderLocked(key)
}

func (c *InMemoryCache) removeFromOrderLocked(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}
