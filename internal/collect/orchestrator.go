// Package collect fans a single query out to every configured source
// adapter concurrently and joins the results, isolating each source's
// failures from the others.
package collect

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/zach-wendland/stonkzap/internal/domain"
	"github.com/zach-wendland/stonkzap/internal/metrics"
	"github.com/zach-wendland/stonkzap/internal/platform/retry"
)

// Orchestrator runs the fan-out/fan-in collection stage. It holds no
// per-query state; one instance serves all concurrent queries.
type Orchestrator struct {
	adapters      []domain.SourceAdapter
	sourceTimeout time.Duration
	maxAttempts   int
	backoff       time.Duration
	clock         clockwork.Clock
}

func New(adapters []domain.SourceAdapter, sourceTimeout time.Duration, maxAttempts int, backoff time.Duration, clock clockwork.Clock) *Orchestrator {
	return &Orchestrator{
		adapters:      adapters,
		sourceTimeout: sourceTimeout,
		maxAttempts:   maxAttempts,
		backoff:       backoff,
		clock:         clock,
	}
}

type sourceResult struct {
	source domain.Source
	posts  []domain.RawPost
	status domain.SourceStatus
}

// Collect fetches posts from every adapter in parallel, each bounded by the
// per-source timeout and the query deadline on ctx. Every adapter gets an
// entry in the returned status map; a failing source never delays or aborts
// the others. Posts carry no cross-source ordering guarantee.
func (o *Orchestrator) Collect(ctx context.Context, inst domain.Instrument, window time.Duration) ([]domain.RawPost, map[domain.Source]domain.SourceStatus) {
	since := o.clock.Now().Add(-window)
	results := make(chan sourceResult, len(o.adapters))

	for _, adapter := range o.adapters {
		go func(a domain.SourceAdapter) {
			results <- o.fetchOne(ctx, a, inst, since)
		}(adapter)
	}

	var posts []domain.RawPost
	status := make(map[domain.Source]domain.SourceStatus, len(o.adapters))
	for range o.adapters {
		res := <-results
		status[res.source] = res.status
		posts = append(posts, res.posts...)
	}

	return posts, status
}

func (o *Orchestrator) fetchOne(ctx context.Context, a domain.SourceAdapter, inst domain.Instrument, since time.Time) sourceResult {
	src := a.Source()

	if !a.Configured() {
		metrics.SourceFetchesTotal.WithLabelValues(string(src), string(domain.StatusSkipped)).Inc()
		return sourceResult{source: src, status: domain.StatusSkipped}
	}

	fetchCtx, cancel := context.WithTimeout(ctx, o.sourceTimeout)
	defer cancel()

	start := o.clock.Now()
	policy := retry.Policy{
		MaxAttempts:    o.maxAttempts,
		InitialBackoff: o.backoff,
		OnRetry: func(attempt int, err error, backoff time.Duration) {
			metrics.SourceRetriesTotal.WithLabelValues(string(src)).Inc()
			slog.Debug("Retrying source fetch",
				"source", src, "attempt", attempt, "backoff", backoff, "error", err)
		},
	}

	posts, err := retry.Do(fetchCtx, policy, classifyFetchError, func() ([]domain.RawPost, error) {
		return a.Fetch(fetchCtx, inst, since)
	})

	metrics.SourceFetchDuration.WithLabelValues(string(src)).Observe(o.clock.Since(start).Seconds())

	st := statusFor(err)
	metrics.SourceFetchesTotal.WithLabelValues(string(src), string(st)).Inc()

	if err != nil {
		logLevelFor(st)("Source fetch finished without posts",
			"source", src, "status", st, "error", err)
		return sourceResult{source: src, status: st}
	}

	return sourceResult{source: src, posts: posts, status: domain.StatusOK}
}

// classifyFetchError decides whether an adapter error is worth another
// attempt. Rate limits stop the source for the rest of the query; auth
// failures and missing configuration are never transient; everything else
// (network flakes, 5xx) is retried.
func classifyFetchError(err error) retry.Action {
	switch {
	case errors.Is(err, domain.ErrRateLimited),
		errors.Is(err, domain.ErrAuth),
		errors.Is(err, domain.ErrNotConfigured),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return retry.Stop
	default:
		return retry.Retry
	}
}

func statusFor(err error) domain.SourceStatus {
	switch {
	case err == nil:
		return domain.StatusOK
	case errors.Is(err, domain.ErrRateLimited):
		return domain.StatusRateLimited
	case errors.Is(err, domain.ErrNotConfigured):
		return domain.StatusSkipped
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return domain.StatusTimedOut
	default:
		return domain.StatusError
	}
}

func logLevelFor(st domain.SourceStatus) func(string, ...any) {
	if st == domain.StatusSkipped {
		return slog.Debug
	}
	return slog.Warn
}
