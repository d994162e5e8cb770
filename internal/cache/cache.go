// Package cache is a TTL-bounded search-result cache with request
// collapsing. Concurrent lookups for the same key share one computation
// instead of stampeding the upstream provider.
package cache

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/triporbit/triporbit/internal/domain"
	"github.com/triporbit/triporbit/internal/obs"
)

const defaultSize = 512

type outcome[T any] struct {
	val T
	err error
}

// Cache stores computed values in a size-bounded LRU whose entries expire
// after the configured TTL. Only successful computations are cached; errors
// are delivered to all collapsed waiters but never stored.
type Cache[T any] struct {
	mu       sync.Mutex
	lru      *expirable.LRU[string, T]
	inflight map[string][]chan outcome[T]

	vertical string
	metrics  *obs.Metrics
}

// New creates a cache for one vertical. A size of 0 or less falls back to
// the default capacity; a nil metrics disables instrumentation.
func New[T any](vertical string, size int, ttl time.Duration, metrics *obs.Metrics) *Cache[T] {
	if size <= 0 {
		size = defaultSize
	}
	return &Cache[T]{
		lru:      expirable.NewLRU[string, T](size, nil, ttl),
		inflight: make(map[string][]chan outcome[T]),
		vertical: vertical,
		metrics:  metrics,
	}
}

// GetOrCompute returns the cached value for key, or runs fn exactly once
// while concurrent callers for the same key wait on its outcome.
func (c *Cache[T]) GetOrCompute(ctx context.Context, key string, fn func(ctx context.Context) (T, error)) (T, error) {
	c.mu.Lock()
	if val, ok := c.lru.Get(key); ok {
		c.mu.Unlock()
		c.metrics.ObserveCache(c.vertical, true)
		return val, nil
	}

	if waiters, ok := c.inflight[key]; ok {
		ch := make(chan outcome[T], 1)
		c.inflight[key] = append(waiters, ch)
		c.mu.Unlock()
		c.metrics.ObserveCache(c.vertical, true)
		select {
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		case out := <-ch:
			return out.val, out.err
		}
	}

	c.inflight[key] = nil
	c.mu.Unlock()
	c.metrics.ObserveCache(c.vertical, false)

	val, err := fn(ctx)

	c.mu.Lock()
	if err == nil {
		c.lru.Add(key, val)
	}
	waiters := c.inflight[key]
	delete(c.inflight, key)
	c.mu.Unlock()

	out := outcome[T]{val: val, err: err}
	for _, w := range waiters {
		w <- out
		close(w)
	}
	return val, err
}

// Purge drops every cached entry. In-flight computations are unaffected.
func (c *Cache[T]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Purge()
}

// Len reports the number of live cached entries.
func (c *Cache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// FlightKey derives a stable cache key from flight search parameters.
func FlightKey(p domain.FlightSearchParams, vendor string) string {
	return strings.Join([]string{
		"flight", vendor, p.Origin, p.Destination, p.DepartDate, p.ReturnDate,
		p.Cabin,
		fmt.Sprintf("%d.%d.%d", p.Passengers.Adults, p.Passengers.Children, p.Passengers.Infants),
	}, "|")
}

// HotelKey derives a stable cache key from hotel search parameters.
func HotelKey(p domain.HotelSearchParams, vendor string) string {
	return strings.Join([]string{
		"hotel", vendor, p.Destination, p.CheckIn, p.CheckOut,
		fmt.Sprintf("%d.%d", p.Guests, p.Rooms),
	}, "|")
}

// ActivityKey derives a stable cache key from activity search parameters.
func ActivityKey(p domain.ActivitySearchParams, vendor string) string {
	return strings.Join([]string{"activity", vendor, p.Location, p.Date, p.Category}, "|")
}
