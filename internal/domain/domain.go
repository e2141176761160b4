package domain

import (
	"context"
	"time"
)

// Source identifies one social platform adapter.
type Source string

const (
	SourceX          Source = "x"
	SourceReddit     Source = "reddit"
	SourceStockTwits Source = "stocktwits"
	SourceDiscord    Source = "discord"
)

// AllSources lists every source the orchestrator knows about, in a fixed order.
func AllSources() []Source {
	return []Source{SourceX, SourceReddit, SourceStockTwits, SourceDiscord}
}

// SourceStatus records the per-source outcome of a single collection run.
type SourceStatus string

const (
	StatusOK          SourceStatus = "ok"
	StatusTimedOut    SourceStatus = "timed_out"
	StatusRateLimited SourceStatus = "rate_limited"
	StatusError       SourceStatus = "error"
	StatusSkipped     SourceStatus = "skipped"
)

// Instrument is the resolved identity of a tradable entity. Immutable once
// resolved; the resolver caches it by the original normalized query string.
type Instrument struct {
	Symbol      string `json:"symbol"`
	CompanyName string `json:"company_name"`
	CIK         string `json:"cik,omitempty"`
	ISIN        string `json:"isin,omitempty"`
	FIGI        string `json:"figi,omitempty"`
}

// RawPost is a post exactly as one source adapter returned it.
// (Source, PlatformID) is the logical identity: the same platform id on
// different platforms is a different post.
type RawPost struct {
	Source       Source    `json:"source"`
	PlatformID   string    `json:"platform_id"`
	AuthorID     string    `json:"author_id"`
	AuthorHandle string    `json:"author_handle,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	Text         string    `json:"text"`
	Symbols      []string  `json:"symbols,omitempty"`
	Lang         string    `json:"lang,omitempty"`

	// Engagement metrics. Zero means unknown or actually zero; the bot
	// filter only applies ratio heuristics when the counts are positive.
	LikeCount      int `json:"like_count,omitempty"`
	ReplyCount     int `json:"reply_count,omitempty"`
	RepostCount    int `json:"repost_count,omitempty"`
	FollowerCount  int `json:"follower_count,omitempty"`
	FollowingCount int `json:"following_count,omitempty"`

	Permalink string `json:"permalink,omitempty"`
}

// CleanedPost is a RawPost after normalization, symbol extraction and the
// bot verdict. ExtractedSymbols is never empty: posts yielding no symbol
// are dropped by the cleaner.
type CleanedPost struct {
	RawPost
	NormalizedText   string   `json:"normalized_text"`
	ExtractedSymbols []string `json:"extracted_symbols"`
	IsLikelyBot      bool     `json:"is_likely_bot"`
}

// Score is the sentiment verdict for a single post.
type Score struct {
	Polarity     float64 `json:"polarity"`     // [-1, 1]
	Subjectivity float64 `json:"subjectivity"` // [0, 1]
	SarcasmProb  float64 `json:"sarcasm_prob"` // [0, 1]
	Confidence   float64 `json:"confidence"`   // [0, 1]
	ModelID      string  `json:"model_id"`
}

// ScoredPost is a CleanedPost with its sentiment score attached.
type ScoredPost struct {
	CleanedPost
	Score Score `json:"score"`
}

// AggregateResult is the single answer for one query. Constructed fresh per
// query and never mutated after return.
type AggregateResult struct {
	QueryID         string                  `json:"query_id"`
	Instrument      Instrument              `json:"instrument"`
	Window          string                  `json:"window"`
	PostsFound      int                     `json:"posts_found"`
	PostsProcessed  int                     `json:"posts_processed"`
	PerSourceCounts map[Source]int          `json:"per_source_counts"`
	SourceStatus    map[Source]SourceStatus `json:"source_status"`
	AvgPolarity     float64                 `json:"avg_polarity"`
	AvgSubjectivity float64                 `json:"avg_subjectivity"`
	OverallConf     float64                 `json:"overall_confidence"`
}

// --- Interfaces ---

// SourceAdapter is the uniform contract each platform client implements.
// Fetch must honor ctx cancellation promptly and fail with one of the
// sentinel errors in errors.go (or a plain error for transient failures).
type SourceAdapter interface {
	Source() Source
	// Configured reports whether credentials for this source are present.
	// Unconfigured sources are skipped by the orchestrator, not failed.
	Configured() bool
	Fetch(ctx context.Context, inst Instrument, since time.Time) ([]RawPost, error)
}

// Scorer assigns a sentiment score to a piece of text. Implementations must
// never block indefinitely; a scoring failure drops the affected post, not
// the query.
type Scorer interface {
	Score(text string) (Score, error)
}

// SymbolLookup resolves a normalized query to an instrument. Returns
// ErrSymbolNotFound when the query matches nothing.
type SymbolLookup interface {
	Lookup(ctx context.Context, query string) (*Instrument, error)
}

// ResolverCache is the shared query -> instrument cache. Implementations
// must be safe for concurrent use and treat entries older than their
// freshness window as misses.
type ResolverCache interface {
	Get(ctx context.Context, query string) (*Instrument, bool, error)
	Put(ctx context.Context, query string, inst Instrument) error
}

// PostStore persists scored posts and their embeddings. Save failures are
// logged by the caller and never fail the query.
type PostStore interface {
	SavePost(ctx context.Context, post ScoredPost, embedding []float32) error
	Ping(ctx context.Context) error
}
