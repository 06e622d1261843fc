package cache

import (
	"sync"
	"time"
)

// Item represents a cached value with expiration
type Item[V any] struct {
	Value     V         `json:"value"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsExpired checks if the item has expired at now
func (i *Item[V]) IsExpired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

// Options tunes a Cache beyond its TTL
type Options[V any] struct {
	// CleanupInterval is how often the janitor sweeps expired items; zero means ttl/2
	CleanupInterval time.Duration
	// Sliding extends an item's lifetime on every Get
	Sliding bool
	// OnEvict is called outside the lock for items removed by expiry
	OnEvict func(key string, value V)
}

// Cache provides thread-safe storage with TTL
type Cache[V any] struct {
	mu      sync.RWMutex
	items   map[string]*Item[V]
	ttl     time.Duration
	sliding bool
	onEvict func(key string, value V)
	now     func() time.Time

	stop      chan struct{}
	closeOnce sync.Once
}

// NewCache creates a new cache with the specified TTL
func NewCache[V any](ttl time.Duration) *Cache[V] {
	return NewCacheWithOptions(ttl, Options[V]{})
}

// NewCacheWithOptions creates a cache and starts its janitor; call Close to stop it
func NewCacheWithOptions[V any](ttl time.Duration, opts Options[V]) *Cache[V] {
	c := &Cache[V]{
		items:   make(map[string]*Item[V]),
		ttl:     ttl,
		sliding: opts.Sliding,
		onEvict: opts.OnEvict,
		now:     time.Now,
		stop:    make(chan struct{}),
	}

	interval := opts.CleanupInterval
	if interval <= 0 {
		interval = ttl / 2
	}
	if interval <= 0 {
		interval = time.Minute
	}

	go c.cleanup(interval)

	return c
}

// cleanup removes expired items periodically
func (c *Cache[V]) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.DeleteExpired()
		}
	}
}

// DeleteExpired removes every expired item and reports how many were removed
func (c *Cache[V]) DeleteExpired() int {
	type evicted struct {
		key   string
		value V
	}
	var gone []evicted

	c.mu.Lock()
	now := c.now()
	for key, item := range c.items {
		if item.IsExpired(now) {
			gone = append(gone, evicted{key, item.Value})
			delete(c.items, key)
		}
	}
	c.mu.Unlock()

	if c.onEvict != nil {
		for _, e := range gone {
			c.onEvict(e.key, e.value)
		}
	}
	return len(gone)
}

// Get retrieves an item from the cache
func (c *Cache[V]) Get(key string) (V, bool) {
	var zero V

	c.mu.Lock()
	item, exists := c.items[key]
	if !exists {
		c.mu.Unlock()
		return zero, false
	}

	now := c.now()
	if item.IsExpired(now) {
		delete(c.items, key)
		c.mu.Unlock()
		if c.onEvict != nil {
			c.onEvict(key, item.Value)
		}
		return zero, false
	}

	if c.sliding {
		item.ExpiresAt = now.Add(c.ttl)
	}
	c.mu.Unlock()

	return item.Value, true
}

// Set stores an item in the cache
func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = &Item[V]{
		Value:     value,
		ExpiresAt: c.now().Add(c.ttl),
	}
}

// Delete removes an item from the cache and reports whether it was present
func (c *Cache[V]) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.items[key]
	delete(c.items, key)
	return ok
}

// Clear removes all items from the cache
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*Item[V])
}

// Size returns the number of items in the cache
func (c *Cache[V]) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.items)
}

// Stats returns cache statistics
func (c *Cache[V]) Stats() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := c.now()
	totalItems := len(c.items)
	expiredItems := 0

	for _, item := range c.items {
		if item.IsExpired(now) {
			expiredItems++
		}
	}

	return map[string]interface{}{
		"total_items":   totalItems,
		"expired_items": expiredItems,
		"active_items":  totalItems - expiredItems,
		"ttl_seconds":   c.ttl.Seconds(),
	}
}

// Close stops the janitor. It is safe to call more than once.
func (c *Cache[V]) Close() error {
	c.closeOnce.Do(func() { close(c.stop) })
	return nil
}
