// Package countcache serves a best-effort signup count for the landing
// page's spots counter without hammering the counting source.
package countcache

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// FetchFunc retrieves a fresh count from the configured counting source.
type FetchFunc func(ctx context.Context) (int, error)

// Cache is a process-wide TTL cache over one FetchFunc. Get never fails:
// on fetch errors it serves the last known value, even expired, and 0 when
// nothing has ever been fetched.
type Cache struct {
	fetch  FetchFunc
	ttl    time.Duration
	now    func() time.Time
	logger *slog.Logger

	mu    sync.Mutex
	entry *entry
}

type entry struct {
	value     int
	fetchedAt time.Time
}

type Option func(*Cache)

// WithClock substitutes the time source, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

func New(fetch FetchFunc, ttl time.Duration, logger *slog.Logger, opts ...Option) *Cache {
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	c := &Cache{fetch: fetch, ttl: ttl, now: time.Now, logger: logger}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached count when fresh, otherwise refreshes it. The value
// is an approximation; concurrent refreshes race and the last writer wins.
func (c *Cache) Get(ctx context.Context) int {
	now := c.now()

	c.mu.Lock()
	cur := c.entry
	c.mu.Unlock()

	if cur != nil && now.Sub(cur.fetchedAt) < c.ttl {
		return cur.value
	}

	value, err := c.fetch(ctx)
	if err != nil {
		if c.logger != nil {
			c.logger.Warn("count fetch failed", "err", err)
		}
		if cur != nil {
			return cur.value
		}
		return 0
	}
	if value < 0 {
		value = 0
	}

	c.mu.Lock()
	c.entry = &entry{value: value, fetchedAt: now}
	c.mu.Unlock()
	return value
}

// TTL is the freshness window, exposed so the HTTP handler can advertise a
// matching Cache-Control policy.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}
