package clean

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zach-wendland/stonkzap/internal/domain"
)

var apple = domain.Instrument{Symbol: "AAPL", CompanyName: "Apple Inc."}

func TestNormalize_StripsURLs(t *testing.T) {
	got := Normalize("check this out https://example.com/post?id=1 big news")
	assert.Equal(t, "check this out big news", got)
}

func TestNormalize_StripsMarkup(t *testing.T) {
	got := Normalize("**TSLA** is ~~dead~~ _alive_ `fr`")
	assert.Equal(t, "TSLA is dead alive fr", got)
}

func TestNormalize_CollapsesWhitespace(t *testing.T) {
	got := Normalize("  so   much \n\n whitespace\t here ")
	assert.Equal(t, "so much whitespace here", got)
}

func TestNormalize_KeepsEmoji(t *testing.T) {
	got := Normalize("to the moon 🚀🚀 💎🙌")
	assert.Equal(t, "to the moon 🚀🚀 💎🙌", got)
}

func TestExtractSymbols_Cashtags(t *testing.T) {
	got := ExtractSymbols("$aapl and $TSLA look strong today", apple)
	assert.Equal(t, []string{"AAPL", "TSLA"}, got)
}

func TestExtractSymbols_BareInstrumentSymbol(t *testing.T) {
	got := ExtractSymbols("AAPL earnings call tomorrow", apple)
	assert.Equal(t, []string{"AAPL"}, got)
}

func TestExtractSymbols_BareOtherTickerIgnored(t *testing.T) {
	// Bare uppercase tokens are only trusted for the queried instrument.
	got := ExtractSymbols("TSLA earnings call tomorrow", apple)
	assert.Empty(t, got)
}

func TestExtractSymbols_CommonWordNeverBareMatched(t *testing.T) {
	dd := domain.Instrument{Symbol: "DD", CompanyName: "DuPont de Nemours, Inc."}

	assert.Empty(t, ExtractSymbols("some DD on this stock", dd))

	// A cashtag disambiguates.
	assert.Equal(t, []string{"DD"}, ExtractSymbols("some $DD on this stock", dd))
}

func TestExtractSymbols_CompanyNameMention(t *testing.T) {
	got := ExtractSymbols("apple keeps printing money", apple)
	assert.Equal(t, []string{"AAPL"}, got)
}

func TestExtractSymbols_Deduplicates(t *testing.T) {
	got := ExtractSymbols("$AAPL AAPL Apple all the way", apple)
	assert.Equal(t, []string{"AAPL"}, got)
}

func TestExtractSymbols_NoMention(t *testing.T) {
	got := ExtractSymbols("markets are quiet today", apple)
	assert.Empty(t, got)
}

func rawPost(source domain.Source, id, author, text string) domain.RawPost {
	return domain.RawPost{Source: source, PlatformID: id, AuthorID: author, Text: text}
}

func TestClean_DropsDuplicatePlatformIDs(t *testing.T) {
	batch := []domain.RawPost{
		rawPost(domain.SourceX, "1", "alice", "$AAPL going up"),
		rawPost(domain.SourceX, "1", "alice", "$AAPL going up"),
	}

	cleaned := Clean(batch, apple)

	require.Len(t, cleaned, 1)
	assert.Equal(t, "1", cleaned[0].PlatformID)
}

func TestClean_SamePlatformIDAcrossSourcesKept(t *testing.T) {
	// Identity is (source, platformID); "1" on X and "1" on Reddit are
	// different posts.
	batch := []domain.RawPost{
		rawPost(domain.SourceX, "1", "alice", "$AAPL going up"),
		rawPost(domain.SourceReddit, "1", "bob", "$AAPL going down"),
	}

	cleaned := Clean(batch, apple)
	assert.Len(t, cleaned, 2)
}

func TestClean_DropsSameAuthorResubmission(t *testing.T) {
	batch := []domain.RawPost{
		rawPost(domain.SourceX, "1", "alice", "buying more $AAPL today"),
		rawPost(domain.SourceX, "2", "alice", "buying  more   $AAPL today"), // same after normalization
		rawPost(domain.SourceX, "3", "bob", "buying more $AAPL today"),     // different author, kept
	}

	cleaned := Clean(batch, apple)

	require.Len(t, cleaned, 2)
	assert.Equal(t, "alice", cleaned[0].AuthorID)
	assert.Equal(t, "bob", cleaned[1].AuthorID)
}

func TestClean_DropsPostsWithoutSymbols(t *testing.T) {
	batch := []domain.RawPost{
		rawPost(domain.SourceX, "1", "alice", "$AAPL to the moon"),
		rawPost(domain.SourceX, "2", "bob", "what a weird day in the market"),
	}

	cleaned := Clean(batch, apple)

	require.Len(t, cleaned, 1)
	assert.Equal(t, "1", cleaned[0].PlatformID)
	assert.Equal(t, []string{"AAPL"}, cleaned[0].ExtractedSymbols)
}

func TestClean_FirstDuplicateWins(t *testing.T) {
	batch := []domain.RawPost{
		rawPost(domain.SourceX, "1", "alice", "first copy of $AAPL post"),
		{Source: domain.SourceX, PlatformID: "1", AuthorID: "alice", Text: "second copy of $AAPL post", LikeCount: 99},
	}

	cleaned := Clean(batch, apple)

	require.Len(t, cleaned, 1)
	assert.Equal(t, "first copy of $AAPL post", cleaned[0].NormalizedText)
	assert.Zero(t, cleaned[0].LikeCount)
}

func TestClean_Deterministic(t *testing.T) {
	batch := []domain.RawPost{
		rawPost(domain.SourceX, "1", "alice", "long $AAPL into earnings"),
		rawPost(domain.SourceReddit, "2", "bob", "Apple looks overvalued here"),
		rawPost(domain.SourceStockTwits, "3", "carol", "$AAPL $TSLA pair trade"),
	}

	first := Clean(batch, apple)
	second := Clean(batch, apple)

	assert.Equal(t, first, second)
}
