// Package resolver maps free-text queries ("Apple", "$AAPL") to canonical
// instruments, backed by a shared TTL cache so repeated queries skip the
// external lookup.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/zach-wendland/stonkzap/internal/domain"
	"github.com/zach-wendland/stonkzap/internal/metrics"
)

type Resolver struct {
	cache  domain.ResolverCache
	lookup domain.SymbolLookup
	group  singleflight.Group
}

// New creates a resolver over the given cache and lookup. The cache handle
// is created at process start and shared across all concurrent queries; it
// is the only cross-query state in the pipeline.
func New(cache domain.ResolverCache, lookup domain.SymbolLookup) *Resolver {
	return &Resolver{cache: cache, lookup: lookup}
}

// Resolve returns the instrument for a free-text query. Cache hits within
// the freshness window never trigger an external lookup. Unknown symbols
// surface domain.ErrSymbolNotFound.
func (r *Resolver) Resolve(ctx context.Context, query string) (*domain.Instrument, error) {
	key := Normalize(query)
	if key == "" {
		return nil, domain.ErrSymbolNotFound
	}

	inst, hit, err := r.cache.Get(ctx, key)
	if err != nil {
		// A broken cache degrades to a lookup, it does not fail the query.
		slog.Warn("Resolver cache read failed", "query", key, "error", err)
	}
	if hit {
		metrics.ResolverCacheHits.Inc()
		return inst, nil
	}
	metrics.ResolverCacheMisses.Inc()

	// Concurrent identical queries share one external lookup.
	v, err, _ := r.group.Do(key, func() (any, error) {
		return r.lookupAndCache(ctx, key)
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Instrument), nil
}

func (r *Resolver) lookupAndCache(ctx context.Context, key string) (*domain.Instrument, error) {
	inst, err := r.lookup.Lookup(ctx, key)
	if errors.Is(err, domain.ErrSymbolNotFound) {
		metrics.ResolverLookupsTotal.WithLabelValues("not_found").Inc()
		return nil, domain.ErrSymbolNotFound
	}
	if err != nil {
		metrics.ResolverLookupsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("symbol lookup: %w", err)
	}
	metrics.ResolverLookupsTotal.WithLabelValues("ok").Inc()

	// Cache keyed by the normalized query, not the resolved symbol:
	// multiple queries can resolve to the same instrument.
	if err := r.cache.Put(ctx, key, *inst); err != nil {
		slog.Warn("Resolver cache write failed", "query", key, "error", err)
	}

	return inst, nil
}
