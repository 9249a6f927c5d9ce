// Package cache memoizes dataset loads until they are explicitly invalidated.
package cache

import (
	"context"
	"fmt"
	"sync"

	"maintenance-cloud/internal/observability/metrics"
)

// Cache holds one value per dataset key. Failed loads are not cached, and a
// load that overlaps an invalidation of its key is returned but not stored.
type Cache struct {
	mu      sync.Mutex
	entries map[string]any
	loading map[string]*sync.Mutex
	gens    map[string]uint64
	epoch   uint64
}

type generation struct {
	key   uint64
	epoch uint64
}

// New constructs an empty Cache.
func New() *Cache {
	return &Cache{
		entries: make(map[string]any),
		loading: make(map[string]*sync.Mutex),
		gens:    make(map[string]uint64),
	}
}

// Load returns the cached value for key, calling fn on a miss. Concurrent
// misses for the same key run fn once.
func Load[T any](ctx context.Context, c *Cache, key string, fn func(ctx context.Context) (T, error)) (T, error) {
	if c == nil {
		return fn(ctx)
	}
	if v, ok := c.lookup(key); ok {
		metrics.IncCacheEvent(key, metrics.CacheHit)
		return cast[T](key, v)
	}

	keyLock := c.keyLock(key)
	keyLock.Lock()
	defer keyLock.Unlock()

	if v, ok := c.lookup(key); ok {
		metrics.IncCacheEvent(key, metrics.CacheHit)
		return cast[T](key, v)
	}
	metrics.IncCacheEvent(key, metrics.CacheMiss)
	started := c.generation(key)
	value, err := fn(ctx)
	if err != nil {
		return value, err
	}
	c.mu.Lock()
	if c.gens[key] == started.key && c.epoch == started.epoch {
		c.entries[key] = value
	}
	c.mu.Unlock()
	return value, nil
}

// Invalidate drops the given keys.
func (c *Cache) Invalidate(keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		c.gens[key]++
		if _, ok := c.entries[key]; ok {
			delete(c.entries, key)
			metrics.IncCacheEvent(key, metrics.CacheInvalidate)
		}
	}
}

// InvalidateAll drops every entry.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
	for key := range c.entries {
		metrics.IncCacheEvent(key, metrics.CacheInvalidate)
	}
	c.entries = make(map[string]any)
}

// Cached reports whether key currently holds a value.
func (c *Cache) Cached(key string) bool {
	_, ok := c.lookup(key)
	return ok
}

func (c *Cache) lookup(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok
}

func (c *Cache) generation(key string) generation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return generation{key: c.gens[key], epoch: c.epoch}
}

func (c *Cache) keyLock(key string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.loading[key]
	if !ok {
		l = &sync.Mutex{}
		c.loading[key] = l
	}
	return l
}

func cast[T any](key string, v any) (T, error) {
	typed, ok := v.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("cache: key %q holds %T", key, v)
	}
	return typed, nil
}
