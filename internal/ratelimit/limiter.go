// Package ratelimit bounds per-provider concurrency and outbound throughput.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

const (
	// maxConcurrent is the fixed per-provider concurrency cap.
	maxConcurrent = 5

	defaultRequestsPerMinute = 60
)

// Limiter governs one provider instance's outbound calls: at most
// maxConcurrent in flight, a minimum gap between dispatches, and an optional
// token reservoir refilled each window. Calls that find no capacity suspend
// until capacity frees; they are never rejected. The wait queue is unbounded,
// so sustained overload grows memory rather than shedding load.
type Limiter struct {
	sem     *semaphore.Weighted
	minTime time.Duration

	mu           sync.Mutex
	nextDispatch time.Time

	// reservoir state; capacity == 0 disables the reservoir.
	capacity    int
	tokens      int
	window      time.Duration
	windowStart time.Time
}

// New builds a limiter from a provider's requests-per-minute budget.
// withReservoir enables the refilling token reservoir used by the flight and
// hotel verticals; the activity vertical runs on the dispatch gap alone.
func New(requestsPerMinute int, withReservoir bool) (*Limiter, error) {
	if requestsPerMinute == 0 {
		requestsPerMinute = defaultRequestsPerMinute
	}
	if requestsPerMinute < 0 {
		return nil, fmt.Errorf("requests per minute must be positive, got %d", requestsPerMinute)
	}
	capacity := 0
	if withReservoir {
		capacity = requestsPerMinute
	}
	// minTime = ceil(60000ms / requestsPerMinute)
	minTime := time.Duration((60000+requestsPerMinute-1)/requestsPerMinute) * time.Millisecond
	return newLimiter(maxConcurrent, minTime, capacity, time.Minute), nil
}

func newLimiter(concurrent int, minTime time.Duration, capacity int, window time.Duration) *Limiter {
	return &Limiter{
		sem:         semaphore.NewWeighted(int64(concurrent)),
		minTime:     minTime,
		capacity:    capacity,
		tokens:      capacity,
		window:      window,
		windowStart: time.Now(),
	}
}

// Do runs fn once a concurrency slot, the dispatch gap, and (when enabled) a
// reservoir token are all available, waiting as long as that takes. The only
// way out of the wait is ctx cancellation.
func (l *Limiter) Do(ctx context.Context, fn func(context.Context) error) error {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer l.sem.Release(1)

	if err := l.waitForDispatch(ctx); err != nil {
		return err
	}
	return fn(ctx)
}

func (l *Limiter) waitForDispatch(ctx context.Context) error {
	for {
		wait, ok := l.tryReserve()
		if ok {
			return nil
		}
		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}
}

// tryReserve consumes a dispatch slot if one is available now, otherwise
// reports how long to wait before trying again.
func (l *Limiter) tryReserve() (wait time.Duration, ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()

	if l.capacity > 0 {
		if now.Sub(l.windowStart) >= l.window {
			l.windowStart = now
			l.tokens = l.capacity
		}
		if l.tokens == 0 {
			return l.windowStart.Add(l.window).Sub(now), false
		}
	}

	if now.Before(l.nextDispatch) {
		return l.nextDispatch.Sub(now), false
	}

	if l.capacity > 0 {
		l.tokens--
	}
	l.nextDispatch = now.Add(l.minTime)
	return 0, true
}
