// Package cache provides the time-bounded cache fronting every provider call.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Cache returns the cached value for key when it is younger than ttl, otherwise
// it runs compute and stores the result. Failed computes are never stored.
type Cache interface {
	GetOrCompute(ctx context.Context, key string, ttl time.Duration, compute func(context.Context) (any, error)) (any, error)
}

// entry stores one value with the time it was produced.
type entry struct {
	value    any
	storedAt time.Time
	ttl      time.Duration
}

// TTL is an in-process Cache. Entries only leave on expiry, unless MaxItems
// is set, in which case a best-effort cap is applied on write.
// Concurrent misses on the same key are coalesced into one compute.
type TTL struct {
	Now      func() time.Time
	MaxItems int

	mu    sync.RWMutex
	items map[string]entry

	sf singleflight.Group
}

// New returns a TTL cache using the wall clock.
func New() *TTL { return &TTL{Now: time.Now} }

func (c *TTL) now() time.Time {
	if c.Now == nil { return time.Now() }
	return c.Now()
}

// Get returns the value for key if now - storedAt < ttl.
func (c *TTL) Get(key string, ttl time.Duration) (any, bool) {
	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()
	if !ok || c.now().Sub(e.storedAt) >= ttl {
		return nil, false
	}
	return e.value, true
}

// Set stores value under key, stamped with the current time.
func (c *TTL) Set(key string, value any, ttl time.Duration) {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.items == nil { c.items = make(map[string]entry) }
	c.items[key] = entry{value: value, storedAt: now, ttl: ttl}
	if c.MaxItems > 0 && len(c.items) > c.MaxItems {
		// remove expired first, then arbitrary
		for k, v := range c.items {
			if now.Sub(v.storedAt) >= v.ttl { delete(c.items, k) }
			if len(c.items) <= c.MaxItems { break }
		}
		for k := range c.items {
			if len(c.items) <= c.MaxItems { break }
			if k != key { delete(c.items, k) }
		}
	}
}

// Len reports the number of stored entries, expired or not.
func (c *TTL) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *TTL) GetOrCompute(ctx context.Context, key string, ttl time.Duration, compute func(context.Context) (any, error)) (any, error) {
	if ttl <= 0 {
		return compute(ctx)
	}
	if v, ok := c.Get(key, ttl); ok {
		return v, nil
	}
	v, err, _ := c.sf.Do(key, func() (any, error) {
		// another flow may have filled the entry while we queued
		if v, ok := c.Get(key, ttl); ok {
			return v, nil
		}
		v, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		c.Set(key, v, ttl)
		return v, nil
	})
	return v, err
}

// Fetch is the typed form of Cache.GetOrCompute.
func Fetch[T any](ctx context.Context, c Cache, key string, ttl time.Duration, compute func(context.Context) (T, error)) (T, error) {
	var zero T
	v, err := c.GetOrCompute(ctx, key, ttl, func(ctx context.Context) (any, error) {
		return compute(ctx)
	})
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("cache: key %q holds %T", key, v)
	}
	return t, nil
}
