// Package app wires the pipeline stages into the single query operation
// the transport layer calls.
package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/zach-wendland/stonkzap/internal/aggregate"
	"github.com/zach-wendland/stonkzap/internal/botfilter"
	"github.com/zach-wendland/stonkzap/internal/clean"
	"github.com/zach-wendland/stonkzap/internal/collect"
	"github.com/zach-wendland/stonkzap/internal/domain"
	"github.com/zach-wendland/stonkzap/internal/embedding"
	apperrors "github.com/zach-wendland/stonkzap/internal/errors"
	"github.com/zach-wendland/stonkzap/internal/metrics"
	"github.com/zach-wendland/stonkzap/internal/resolver"
)

// Service runs the full collection-and-aggregation pipeline for one query
// at a time; instances are safe for concurrent queries since all per-query
// state is local to the Query call.
type Service struct {
	resolver  *resolver.Resolver
	collector *collect.Orchestrator
	scorer    domain.Scorer
	store     domain.PostStore
	clock     clockwork.Clock
	timeout   time.Duration
}

// NewService builds the pipeline service. timeout bounds a whole query;
// when it elapses, in-flight source calls are cancelled and whatever was
// already collected still produces an aggregate.
func NewService(res *resolver.Resolver, collector *collect.Orchestrator, scorer domain.Scorer, store domain.PostStore, clock clockwork.Clock, timeout time.Duration) *Service {
	return &Service{
		resolver:  res,
		collector: collector,
		scorer:    scorer,
		store:     store,
		clock:     clock,
		timeout:   timeout,
	}
}

// Query answers "what is the sentiment for symbolOrName over window".
// Client-input problems (bad window, unknown symbol) are the only errors
// that propagate; every other failure degrades into a smaller aggregate.
func (s *Service) Query(ctx context.Context, symbolOrName, window string) (*domain.AggregateResult, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := s.clock.Now()
	defer func() {
		metrics.QueryDuration.Observe(s.clock.Since(start).Seconds())
	}()

	windowDur, err := domain.ParseWindow(window)
	if err != nil {
		metrics.QueriesTotal.WithLabelValues("client_error").Inc()
		return nil, apperrors.ValidationError("invalid window").WithContext("window", window)
	}

	inst, err := s.resolver.Resolve(ctx, symbolOrName)
	if errors.Is(err, domain.ErrSymbolNotFound) {
		metrics.QueriesTotal.WithLabelValues("client_error").Inc()
		return nil, apperrors.ValidationError("symbol not found").WithContext("query", symbolOrName)
	}
	if err != nil {
		metrics.QueriesTotal.WithLabelValues("error").Inc()
		return nil, apperrors.InternalError("symbol resolution failed", err)
	}

	// Fetch-then-process: every source completes (or fails) before the
	// cleaner runs.
	raw, sourceStatus := s.collector.Collect(ctx, *inst, windowDur)
	for _, post := range raw {
		metrics.PostsFound.WithLabelValues(string(post.Source)).Inc()
	}

	cleaned := clean.Clean(raw, *inst)
	admitted := botfilter.New(cleaned).Apply(cleaned)
	scored := s.scoreAll(admitted)

	s.persistAll(ctx, scored)

	result := aggregate.Aggregate(scored)
	result.QueryID = uuid.NewString()
	result.Instrument = *inst
	result.Window = window
	result.PostsFound = len(raw)
	result.SourceStatus = sourceStatus

	if result.PostsProcessed == 0 {
		metrics.QueriesTotal.WithLabelValues("empty").Inc()
	} else {
		metrics.QueriesTotal.WithLabelValues("ok").Inc()
	}

	slog.Info("Query completed",
		"query_id", result.QueryID,
		"symbol", inst.Symbol,
		"window", window,
		"posts_found", result.PostsFound,
		"posts_processed", result.PostsProcessed,
		"avg_polarity", result.AvgPolarity,
		"duration", s.clock.Since(start).Round(time.Millisecond),
	)

	return &result, nil
}

// scoreAll scores each admitted post. A scoring failure drops that post
// and nothing else.
func (s *Service) scoreAll(posts []domain.CleanedPost) []domain.ScoredPost {
	scored := make([]domain.ScoredPost, 0, len(posts))
	for _, post := range posts {
		score, err := s.scorer.Score(post.NormalizedText)
		if err != nil {
			metrics.PostsDropped.WithLabelValues("score_error").Inc()
			slog.Warn("Scoring failed, dropping post",
				"source", post.Source, "platform_id", post.PlatformID, "error", err)
			continue
		}
		scored = append(scored, domain.ScoredPost{CleanedPost: post, Score: score})
	}
	return scored
}

// persistAll saves posts fire-and-forget: failures are logged and counted,
// the aggregate is computed from in-flight data regardless.
func (s *Service) persistAll(ctx context.Context, posts []domain.ScoredPost) {
	for _, post := range posts {
		emb := embedding.Compute(post.NormalizedText)
		if err := s.store.SavePost(ctx, post, emb); err != nil {
			metrics.StoreSaveFailures.Inc()
			slog.Warn("Failed to persist post",
				"source", post.Source, "platform_id", post.PlatformID, "error", err)
		}
	}
}
