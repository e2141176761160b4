package collect

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zach-wendland/stonkzap/internal/domain"
)

// --- Mocks ---

type fakeAdapter struct {
	source     domain.Source
	configured bool
	attempts   atomic.Int32
	fetch      func(ctx context.Context, attempt int) ([]domain.RawPost, error)
}

func (a *fakeAdapter) Source() domain.Source { return a.source }
func (a *fakeAdapter) Configured() bool      { return a.configured }

func (a *fakeAdapter) Fetch(ctx context.Context, _ domain.Instrument, _ time.Time) ([]domain.RawPost, error) {
	attempt := int(a.attempts.Add(1))
	return a.fetch(ctx, attempt)
}

func okAdapter(source domain.Source, count int) *fakeAdapter {
	return &fakeAdapter{
		source:     source,
		configured: true,
		fetch: func(_ context.Context, _ int) ([]domain.RawPost, error) {
			posts := make([]domain.RawPost, 0, count)
			for i := 0; i < count; i++ {
				posts = append(posts, domain.RawPost{
					Source:     source,
					PlatformID: fmt.Sprintf("%s-%d", source, i),
				})
			}
			return posts, nil
		},
	}
}

func failingAdapter(source domain.Source, err error) *fakeAdapter {
	return &fakeAdapter{
		source:     source,
		configured: true,
		fetch: func(_ context.Context, _ int) ([]domain.RawPost, error) {
			return nil, err
		},
	}
}

func hangingAdapter(source domain.Source) *fakeAdapter {
	return &fakeAdapter{
		source:     source,
		configured: true,
		fetch: func(ctx context.Context, _ int) ([]domain.RawPost, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}
}

func newTestOrchestrator(adapters ...domain.SourceAdapter) *Orchestrator {
	return New(adapters, 100*time.Millisecond, 3, time.Millisecond, clockwork.NewRealClock())
}

// --- Tests ---

func TestCollect_MergesAllSources(t *testing.T) {
	orch := newTestOrchestrator(
		okAdapter(domain.SourceX, 3),
		okAdapter(domain.SourceReddit, 2),
	)

	posts, status := orch.Collect(context.Background(), domain.Instrument{Symbol: "AAPL"}, 24*time.Hour)

	assert.Len(t, posts, 5)
	assert.Equal(t, map[domain.Source]domain.SourceStatus{
		domain.SourceX:      domain.StatusOK,
		domain.SourceReddit: domain.StatusOK,
	}, status)
}

func TestCollect_SourceFailureIsIsolated(t *testing.T) {
	orch := newTestOrchestrator(
		okAdapter(domain.SourceX, 3),
		failingAdapter(domain.SourceReddit, errors.New("api exploded")),
	)

	posts, status := orch.Collect(context.Background(), domain.Instrument{Symbol: "AAPL"}, 24*time.Hour)

	assert.Len(t, posts, 3, "the healthy source still contributes")
	assert.Equal(t, domain.StatusOK, status[domain.SourceX])
	assert.Equal(t, domain.StatusError, status[domain.SourceReddit])
}

func TestCollect_TimeoutDoesNotBlockOthers(t *testing.T) {
	orch := New(
		[]domain.SourceAdapter{
			okAdapter(domain.SourceX, 2),
			hangingAdapter(domain.SourceReddit),
		},
		20*time.Millisecond, 3, time.Millisecond, clockwork.NewRealClock(),
	)

	start := time.Now()
	posts, status := orch.Collect(context.Background(), domain.Instrument{Symbol: "AAPL"}, 24*time.Hour)

	assert.Less(t, time.Since(start), time.Second)
	assert.Len(t, posts, 2)
	assert.Equal(t, domain.StatusOK, status[domain.SourceX])
	assert.Equal(t, domain.StatusTimedOut, status[domain.SourceReddit])
}

func TestCollect_AllSourcesTimeOut(t *testing.T) {
	orch := New(
		[]domain.SourceAdapter{
			hangingAdapter(domain.SourceX),
			hangingAdapter(domain.SourceReddit),
		},
		20*time.Millisecond, 3, time.Millisecond, clockwork.NewRealClock(),
	)

	posts, status := orch.Collect(context.Background(), domain.Instrument{Symbol: "AAPL"}, 24*time.Hour)

	assert.Empty(t, posts)
	assert.Equal(t, domain.StatusTimedOut, status[domain.SourceX])
	assert.Equal(t, domain.StatusTimedOut, status[domain.SourceReddit])
}

func TestCollect_RateLimitedNotRetried(t *testing.T) {
	limited := failingAdapter(domain.SourceX, fmt.Errorf("search: %w", domain.ErrRateLimited))
	orch := newTestOrchestrator(limited)

	_, status := orch.Collect(context.Background(), domain.Instrument{Symbol: "AAPL"}, 24*time.Hour)

	assert.Equal(t, domain.StatusRateLimited, status[domain.SourceX])
	assert.Equal(t, int32(1), limited.attempts.Load(), "rate limits stop the source for the rest of the query")
}

func TestCollect_AuthFailureNotRetried(t *testing.T) {
	denied := failingAdapter(domain.SourceX, domain.ErrAuth)
	orch := newTestOrchestrator(denied)

	_, status := orch.Collect(context.Background(), domain.Instrument{Symbol: "AAPL"}, 24*time.Hour)

	assert.Equal(t, domain.StatusError, status[domain.SourceX])
	assert.Equal(t, int32(1), denied.attempts.Load())
}

func TestCollect_TransientErrorRetried(t *testing.T) {
	flaky := &fakeAdapter{
		source:     domain.SourceX,
		configured: true,
	}
	flaky.fetch = func(_ context.Context, attempt int) ([]domain.RawPost, error) {
		if attempt < 3 {
			return nil, errors.New("connection reset")
		}
		return []domain.RawPost{{Source: domain.SourceX, PlatformID: "1"}}, nil
	}

	orch := newTestOrchestrator(flaky)

	posts, status := orch.Collect(context.Background(), domain.Instrument{Symbol: "AAPL"}, 24*time.Hour)

	assert.Len(t, posts, 1)
	assert.Equal(t, domain.StatusOK, status[domain.SourceX])
	assert.Equal(t, int32(3), flaky.attempts.Load())
}

func TestCollect_UnconfiguredSourceSkipped(t *testing.T) {
	missing := &fakeAdapter{
		source:     domain.SourceDiscord,
		configured: false,
		fetch: func(_ context.Context, _ int) ([]domain.RawPost, error) {
			return nil, errors.New("should never be called")
		},
	}

	orch := newTestOrchestrator(okAdapter(domain.SourceX, 1), missing)

	posts, status := orch.Collect(context.Background(), domain.Instrument{Symbol: "AAPL"}, 24*time.Hour)

	assert.Len(t, posts, 1)
	assert.Equal(t, domain.StatusSkipped, status[domain.SourceDiscord])
	assert.Equal(t, int32(0), missing.attempts.Load())
}

func TestCollect_EveryAdapterGetsAStatus(t *testing.T) {
	orch := newTestOrchestrator(
		okAdapter(domain.SourceX, 1),
		failingAdapter(domain.SourceReddit, errors.New("boom")),
		okAdapter(domain.SourceStockTwits, 0),
		&fakeAdapter{source: domain.SourceDiscord, configured: false},
	)

	_, status := orch.Collect(context.Background(), domain.Instrument{Symbol: "AAPL"}, 24*time.Hour)

	require.Len(t, status, 4)
	for _, source := range domain.AllSources() {
		assert.Contains(t, status, source)
	}
}
