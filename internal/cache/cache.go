package cache

import (
	"sync"
	"time"
)

// DefaultCleanupInterval is how often expired entries are swept.
const DefaultCleanupInterval = time.Minute

// Cache is an in-memory map with per-entry expiration. Reads through Get do
// not extend an entry's life; GetOrSet and Touch do.
type Cache[V any] struct {
	mu       sync.RWMutex
	items    map[string]*cacheItem[V]
	ttl      time.Duration
	onEvict  func(key string, value V)
	stopChan chan struct{}
	stopOnce sync.Once
}

type cacheItem[V any] struct {
	value      V
	expiration time.Time
}

// New creates a cache whose entries live for ttl and starts the sweeper.
func New[V any](ttl, cleanupInterval time.Duration) *Cache[V] {
	if cleanupInterval <= 0 {
		cleanupInterval = DefaultCleanupInterval
	}
	c := &Cache[V]{
		items:    make(map[string]*cacheItem[V]),
		ttl:      ttl,
		stopChan: make(chan struct{}),
	}

	go c.cleanup(cleanupInterval)

	return c
}

// OnEvict registers fn to be called for every entry removed by expiration.
// It is not called for explicit deletes.
func (c *Cache[V]) OnEvict(fn func(key string, value V)) {
	c.mu.Lock()
	c.onEvict = fn
	c.mu.Unlock()
}

// Get retrieves a live value.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, exists := c.items[key]
	if !exists || time.Now().After(item.expiration) {
		var zero V
		return zero, false
	}
	return item.value, true
}

// GetOrSet returns the live value for key, or stores and returns the value
// built by create. The entry's expiration is reset either way. The boolean
// reports whether create was called.
func (c *Cache[V]) GetOrSet(key string, create func() V) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	if item, exists := c.items[key]; exists && !now.After(item.expiration) {
		item.expiration = now.Add(c.ttl)
		return item.value, false
	}

	value := create()
	c.items[key] = &cacheItem[V]{value: value, expiration: now.Add(c.ttl)}
	return value, true
}

// Touch extends a live entry by the default TTL.
func (c *Cache[V]) Touch(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, exists := c.items[key]
	if !exists || time.Now().After(item.expiration) {
		return false
	}
	item.expiration = time.Now().Add(c.ttl)
	return true
}

// Set stores a value in the cache with the default TTL
func (c *Cache[V]) Set(key string, value V) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores a value in the cache with a custom TTL
func (c *Cache[V]) SetWithTTL(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = &cacheItem[V]{
		value:      value,
		expiration: time.Now().Add(ttl),
	}
}

// Delete removes key and returns the value it held, expired or not.
func (c *Cache[V]) Delete(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, exists := c.items[key]
	if !exists {
		var zero V
		return zero, false
	}
	delete(c.items, key)
	return item.value, true
}

// Size returns the number of stored entries, including expired ones not yet swept.
func (c *Cache[V]) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Stop stops the sweeper. It is safe to call more than once.
func (c *Cache[V]) Stop() {
	c.stopOnce.Do(func() { close(c.stopChan) })
}

func (c *Cache[V]) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.RemoveExpired()
		case <-c.stopChan:
			return
		}
	}
}

// RemoveExpired sweeps expired entries and reports how many were removed.
func (c *Cache[V]) RemoveExpired() int {
	type evicted struct {
		key   string
		value V
	}

	c.mu.Lock()
	now := time.Now()
	var removed []evicted
	for key, item := range c.items {
		if now.After(item.expiration) {
			delete(c.items, key)
			removed = append(removed, evicted{key, item.value})
		}
	}
	onEvict := c.onEvict
	c.mu.Unlock()

	if onEvict != nil {
		for _, e := range removed {
			onEvict(e.key, e.value)
		}
	}
	return len(removed)
}
