package resolver

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zach-wendland/stonkzap/internal/domain"
)

// --- Mocks ---

type countingLookup struct {
	mu    sync.Mutex
	inner domain.SymbolLookup
	calls int
}

func (l *countingLookup) Lookup(ctx context.Context, query string) (*domain.Instrument, error) {
	l.mu.Lock()
	l.calls++
	l.mu.Unlock()
	return l.inner.Lookup(ctx, query)
}

func (l *countingLookup) callCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

type brokenCache struct{}

func (brokenCache) Get(context.Context, string) (*domain.Instrument, bool, error) {
	return nil, false, errors.New("cache backend down")
}

func (brokenCache) Put(context.Context, string, domain.Instrument) error {
	return errors.New("cache backend down")
}

func newTestResolver(t *testing.T) (*Resolver, *countingLookup, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClock()
	lookup := &countingLookup{inner: NewStaticLookup()}
	cache := NewMemoryCache(7*24*time.Hour, clock)
	return New(cache, lookup), lookup, clock
}

// --- Tests ---

func TestResolve_CompanyName(t *testing.T) {
	res, _, _ := newTestResolver(t)

	inst, err := res.Resolve(context.Background(), "apple")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", inst.Symbol)
	assert.Equal(t, "Apple Inc.", inst.CompanyName)
}

func TestResolve_NormalizesQuery(t *testing.T) {
	res, lookup, _ := newTestResolver(t)

	for _, query := range []string{"AAPL", "$AAPL", "  aapl ", "$aapl"} {
		inst, err := res.Resolve(context.Background(), query)
		require.NoError(t, err, "query %q", query)
		assert.Equal(t, "AAPL", inst.Symbol)
	}

	// All four spellings normalize to the same cache key.
	assert.Equal(t, 1, lookup.callCount())
}

func TestResolve_UnknownSymbol(t *testing.T) {
	res, _, _ := newTestResolver(t)

	_, err := res.Resolve(context.Background(), "not_a_real_company_xyz")
	assert.ErrorIs(t, err, domain.ErrSymbolNotFound)
}

func TestResolve_EmptyQuery(t *testing.T) {
	res, lookup, _ := newTestResolver(t)

	_, err := res.Resolve(context.Background(), "   ")
	assert.ErrorIs(t, err, domain.ErrSymbolNotFound)
	assert.Equal(t, 0, lookup.callCount())
}

func TestResolve_CacheHitSkipsLookup(t *testing.T) {
	res, lookup, _ := newTestResolver(t)

	first, err := res.Resolve(context.Background(), "tesla")
	require.NoError(t, err)

	second, err := res.Resolve(context.Background(), "tesla")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, lookup.callCount(), "second resolve should be served from cache")
}

func TestResolve_ExpiredEntryTriggersFreshLookup(t *testing.T) {
	res, lookup, clock := newTestResolver(t)

	_, err := res.Resolve(context.Background(), "tesla")
	require.NoError(t, err)

	clock.Advance(7*24*time.Hour + time.Minute)

	inst, err := res.Resolve(context.Background(), "tesla")
	require.NoError(t, err)
	assert.Equal(t, "TSLA", inst.Symbol)
	assert.Equal(t, 2, lookup.callCount(), "stale entry must not be served")
}

func TestResolve_BrokenCacheDegradesToLookup(t *testing.T) {
	lookup := &countingLookup{inner: NewStaticLookup()}
	res := New(brokenCache{}, lookup)

	inst, err := res.Resolve(context.Background(), "apple")
	require.NoError(t, err, "cache failures must not fail the query")
	assert.Equal(t, "AAPL", inst.Symbol)
	assert.Equal(t, 1, lookup.callCount())
}

func TestStaticLookup_TickerShapeFallback(t *testing.T) {
	lookup := NewStaticLookup()

	inst, err := lookup.Lookup(context.Background(), "ZZZT")
	require.NoError(t, err)
	assert.Equal(t, "ZZZT", inst.Symbol)

	_, err = lookup.Lookup(context.Background(), "TOOLONGG")
	assert.ErrorIs(t, err, domain.ErrSymbolNotFound)

	_, err = lookup.Lookup(context.Background(), "AB12")
	assert.ErrorIs(t, err, domain.ErrSymbolNotFound)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"aapl", "AAPL"},
		{"$AAPL", "AAPL"},
		{"@apple", "APPLE"},
		{"  Tesla  ", "TESLA"},
		{"$", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), "Normalize(%q)", tt.in)
	}
}
