package resolver

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/zach-wendland/stonkzap/internal/domain"
	"github.com/zach-wendland/stonkzap/internal/metrics"
)

// MemoryCache provides in-memory caching of resolved instruments with
// TTL-based expiration, for single-instance deployments. Entries older than
// the freshness window are treated as misses and never served.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry
	ttl     time.Duration
	clock   clockwork.Clock
}

type cacheEntry struct {
	inst      domain.Instrument
	expiresAt time.Time
}

// NewMemoryCache creates an in-memory resolver cache with the given
// freshness window (7 days in production).
func NewMemoryCache(ttl time.Duration, clock clockwork.Clock) *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]*cacheEntry),
		ttl:     ttl,
		clock:   clock,
	}
}

// Get retrieves a cached instrument if present and not expired.
func (c *MemoryCache) Get(_ context.Context, query string) (*domain.Instrument, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[query]
	if !ok {
		return nil, false, nil
	}

	// Expired entries count as misses. Deletion happens in the eviction
	// timer; Get only holds a read lock.
	if c.clock.Now().After(entry.expiresAt) {
		return nil, false, nil
	}

	inst := entry.inst
	return &inst, true, nil
}

// Put stores a resolved instrument keyed by the normalized query.
func (c *MemoryCache) Put(_ context.Context, query string, inst domain.Instrument) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[query] = &cacheEntry{
		inst:      inst,
		expiresAt: c.clock.Now().Add(c.ttl),
	}
	return nil
}

// Size returns the current number of entries in the cache (including expired).
func (c *MemoryCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// EvictExpired removes all expired entries and returns the count evicted.
// This prevents unbounded cache growth over time.
func (c *MemoryCache) EvictExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	evicted := 0

	for query, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, query)
			evicted++
		}
	}

	return evicted
}

// StartEvictionTimer starts a background goroutine that periodically evicts
// expired entries. Returns a stop function to clean up the goroutine.
func (c *MemoryCache) StartEvictionTimer(interval time.Duration) func() {
	ticker := c.clock.NewTicker(interval)
	done := make(chan bool)

	go func() {
		for {
			select {
			case <-ticker.Chan():
				evicted := c.EvictExpired()
				if evicted > 0 {
					slog.Debug("Evicted expired resolver cache entries",
						"count", evicted,
						"remaining", c.Size(),
					)
					metrics.ResolverCacheEvictions.Add(float64(evicted))
				}
				metrics.ResolverCacheSize.Set(float64(c.Size()))

			case <-done:
				ticker.Stop()
				return
			}
		}
	}()

	return func() {
		close(done)
	}
}
