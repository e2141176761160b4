// Package aggregate folds per-post scores into the single answer a query
// returns. Aggregation is pure: identical input multisets always yield
// identical output, independent of arrival order.
package aggregate

import (
	"sort"

	"github.com/zach-wendland/stonkzap/internal/domain"
)

// confidenceHalfPoint is the post count at which the sample-size scaling
// reaches 0.5: overall confidence is meanConfidence * n/(n+half). The
// curve is monotonic in n and bounded in [0, 1).
const confidenceHalfPoint = 5

// Option configures aggregation. The defaults keep the aggregate
// auditable: reproducible from stored per-post scores alone.
type Option func(*options)

type options struct {
	engagementWeighting bool
}

// WithEngagementWeighting weights polarity by post engagement instead of
// the default unweighted mean. Documented extension point, off by default;
// enabling it makes the aggregate depend on engagement counts captured at
// collection time.
func WithEngagementWeighting() Option {
	return func(o *options) { o.engagementWeighting = true }
}

// Aggregate combines scored posts into one result. Zero posts is a valid
// answer, not an error: all averages are zero and confidence is zero.
func Aggregate(scored []domain.ScoredPost, opts ...Option) domain.AggregateResult {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	result := domain.AggregateResult{
		PostsProcessed:  len(scored),
		PerSourceCounts: make(map[domain.Source]int),
	}

	if len(scored) == 0 {
		return result
	}

	// Fixed fold order makes float sums independent of arrival order.
	ordered := make([]domain.ScoredPost, len(scored))
	copy(ordered, scored)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Source != ordered[j].Source {
			return ordered[i].Source < ordered[j].Source
		}
		return ordered[i].PlatformID < ordered[j].PlatformID
	})

	var sumPolarity, sumSubjectivity, sumConfidence float64
	var weightedPolarity, totalWeight float64

	for _, post := range ordered {
		result.PerSourceCounts[post.Source]++

		sumPolarity += post.Score.Polarity
		sumSubjectivity += post.Score.Subjectivity
		sumConfidence += post.Score.Confidence

		if o.engagementWeighting {
			w := engagementWeight(post)
			weightedPolarity += post.Score.Polarity * w
			totalWeight += w
		}
	}

	n := float64(len(ordered))
	result.AvgPolarity = sumPolarity / n
	result.AvgSubjectivity = sumSubjectivity / n

	if o.engagementWeighting && totalWeight > 0 {
		result.AvgPolarity = weightedPolarity / totalWeight
	}

	// Fewer independent signals means less trust in the mean.
	result.OverallConf = (sumConfidence / n) * (n / (n + confidenceHalfPoint))

	return result
}

// engagementWeight gives every post a base weight of 1 plus its engagement
// so zero-engagement posts still count.
func engagementWeight(post domain.ScoredPost) float64 {
	return 1 + float64(post.LikeCount+post.ReplyCount+post.RepostCount)
}
