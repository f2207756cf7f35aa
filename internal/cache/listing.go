package cache

import (
	"context"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type entry[V any] struct {
	value   V
	expires time.Time
}

// Listing caches catalog listing views by query key. Concurrent misses for one
// key share a single load. Invalidate drops everything and bumps the
// generation, so a load that started earlier is returned to its caller but
// never stored.
type Listing[V any] struct {
	ttl   time.Duration
	now   func() time.Time
	group singleflight.Group

	mu      sync.RWMutex
	gen     uint64
	entries map[string]entry[V]
}

func NewListing[V any](ttl time.Duration) *Listing[V] {
	return &Listing[V]{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]entry[V]),
	}
}

func (c *Listing[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || c.now().After(e.expires) {
		var zero V
		return zero, false
	}
	return e.value, true
}

func (c *Listing[V]) GetOrLoad(ctx context.Context, key string, load func(context.Context) (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	c.mu.RLock()
	gen := c.gen
	c.mu.RUnlock()

	// Callers after an Invalidate must not join a load from the previous generation.
	flightKey := strconv.FormatUint(gen, 10) + ":" + key
	res, err, _ := c.group.Do(flightKey, func() (any, error) {
		v, err := load(ctx)
		if err != nil {
			return v, err
		}
		c.store(key, v, gen)
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return res.(V), nil
}

func (c *Listing[V]) store(key string, v V, gen uint64) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return
	}
	c.entries[key] = entry[V]{value: v, expires: c.now().Add(c.ttl)}
}

func (c *Listing[V]) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.entries = make(map[string]entry[V])
}

func (c *Listing[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
