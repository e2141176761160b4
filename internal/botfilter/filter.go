// Package botfilter applies heuristic admission rules that keep low-trust
// posts out of the scoring stage. No external calls, no blocking: every
// verdict is a pure function of a post and the batch it arrived in.
package botfilter

import (
	"strings"

	"github.com/zach-wendland/stonkzap/internal/domain"
	"github.com/zach-wendland/stonkzap/internal/metrics"
)

const (
	// minOrganicTextLen: shorter ticker-stuffed posts are almost always
	// pump spam.
	minOrganicTextLen = 20
	// maxCashtags caps cashtag stuffing per post.
	maxCashtags = 5
	// templatedRepeatThreshold: the same author posting identical text
	// this many times in one window is treated as a template bot.
	templatedRepeatThreshold = 3
	// highVolumeThreshold: zero-engagement accounts posting at this rate
	// within a single window look automated.
	highVolumeThreshold = 5
	// followRatioLimit: accounts following vastly more than follow them
	// back are suspect.
	followRatioLimit = 50
)

type authorKey struct {
	source   domain.Source
	authorID string
}

type templateKey struct {
	source   domain.Source
	authorID string
	text     string
}

// Filter holds per-batch author statistics. Build one per query batch with
// New; verdicts are then pure reads.
type Filter struct {
	authorPostCount map[authorKey]int
	templateCount   map[templateKey]int
}

// New precomputes author posting volume and repeated-text counts across
// the batch so Classify can apply frequency heuristics without external
// state.
func New(batch []domain.CleanedPost) *Filter {
	f := &Filter{
		authorPostCount: make(map[authorKey]int),
		templateCount:   make(map[templateKey]int),
	}
	for _, post := range batch {
		f.authorPostCount[authorKey{post.Source, post.AuthorID}]++
		f.templateCount[templateKey{post.Source, post.AuthorID, post.NormalizedText}]++
	}
	return f
}

// Classify reports whether the post is likely bot-authored.
func (f *Filter) Classify(post domain.CleanedPost) bool {
	// Very short posts that are mostly ticker mentions.
	if len(post.NormalizedText) < minOrganicTextLen && len(post.ExtractedSymbols) > 0 {
		return true
	}

	// Cashtag stuffing.
	if strings.Count(post.NormalizedText, "$") > maxCashtags {
		return true
	}

	// Same author, same text, many times: templated resubmission that
	// survived exact-dedup via different platform IDs.
	if f.templateCount[templateKey{post.Source, post.AuthorID, post.NormalizedText}] >= templatedRepeatThreshold {
		return true
	}

	// Zero-engagement account posting at high volume inside one window.
	if f.authorPostCount[authorKey{post.Source, post.AuthorID}] >= highVolumeThreshold &&
		post.LikeCount == 0 && post.ReplyCount == 0 && post.RepostCount == 0 {
		return true
	}

	// Suspicious follow ratio, only when both counts are known.
	if post.FollowerCount > 0 && post.FollowingCount > 0 &&
		post.FollowingCount/post.FollowerCount >= followRatioLimit {
		return true
	}

	return false
}

// Apply sets IsLikelyBot on every post and returns the posts that passed,
// preserving input order. The dropped count is postsFound - postsProcessed
// in the final aggregate; individual verdicts are not persisted.
func (f *Filter) Apply(batch []domain.CleanedPost) []domain.CleanedPost {
	passed := make([]domain.CleanedPost, 0, len(batch))
	for _, post := range batch {
		post.IsLikelyBot = f.Classify(post)
		if post.IsLikelyBot {
			metrics.PostsDropped.WithLabelValues("bot").Inc()
			continue
		}
		passed = append(passed, post)
	}
	return passed
}
