// Package clean normalizes raw post text, extracts mentioned symbols and
// deduplicates a batch. Every function here is a pure transform: output is
// stable and deterministic for a fixed input batch.
package clean

import (
	"regexp"
	"strings"

	"github.com/zach-wendland/stonkzap/internal/domain"
	"github.com/zach-wendland/stonkzap/internal/metrics"
)

var (
	urlPattern        = regexp.MustCompile(`https?://\S+`)
	whitespacePattern = regexp.MustCompile(`\s+`)
	cashtagPattern    = regexp.MustCompile(`\$([A-Za-z]{1,5})\b`)
	bareTickerPattern = regexp.MustCompile(`\b([A-Z]{2,5})\b`)
	// Platform markup that carries no sentiment: markdown emphasis,
	// spoilers, strikethrough, quote markers. Emoji are kept; they carry
	// sentiment signal downstream.
	markupPattern = regexp.MustCompile("[*_~`|]+|^>\\s?|\\n>\\s?")
)

// commonWords are uppercase tokens that look like tickers but almost never
// are; bare-ticker extraction skips them unless they match the queried
// instrument.
var commonWords = map[string]bool{
	"AM": true, "AN": true, "AND": true, "ARE": true,
	"AT": true, "BE": true, "BUY": true, "CEO": true, "DD": true, "DO": true,
	"EOD": true, "ETF": true, "FOMO": true, "FOR": true, "GO": true,
	"HODL": true, "IMO": true, "IPO": true, "IS": true, "IT": true,
	"LOL": true, "NEW": true, "NOT": true, "NOW": true, "ON": true,
	"OR": true, "PUT": true, "SEC": true, "SELL": true, "SO": true,
	"THE": true, "TO": true, "UP": true, "USA": true, "WSB": true,
	"YOLO": true, "YOU": true,
}

// Normalize strips URLs and platform markup and collapses whitespace.
// Emoji are preserved.
func Normalize(text string) string {
	t := urlPattern.ReplaceAllString(text, "")
	t = markupPattern.ReplaceAllString(t, "")
	t = whitespacePattern.ReplaceAllString(t, " ")
	return strings.TrimSpace(t)
}

// ExtractSymbols finds tickers mentioned in normalized text: cashtags,
// bare uppercase tickers (with a common-word blocklist), and the queried
// instrument's symbol or company name. The result is sorted-insertion
// ordered and deduplicated.
func ExtractSymbols(text string, inst domain.Instrument) []string {
	seen := make(map[string]bool)
	var symbols []string
	add := func(sym string) {
		sym = strings.ToUpper(sym)
		if !seen[sym] {
			seen[sym] = true
			symbols = append(symbols, sym)
		}
	}

	for _, m := range cashtagPattern.FindAllStringSubmatch(text, -1) {
		add(m[1])
	}

	// Bare uppercase tokens are ambiguous; only the queried instrument's
	// symbol is accepted without a cashtag, and never when it collides
	// with a common word.
	upper := strings.ToUpper(text)
	for _, m := range bareTickerPattern.FindAllStringSubmatch(text, -1) {
		tok := m[1]
		if tok == inst.Symbol && !commonWords[tok] {
			add(tok)
		}
	}

	if inst.CompanyName != "" {
		if name := strings.ToUpper(primaryName(inst.CompanyName)); name != "" && strings.Contains(upper, name) {
			add(inst.Symbol)
		}
	}

	return symbols
}

// primaryName strips corporate suffixes so "Apple Inc." matches "apple".
func primaryName(companyName string) string {
	name := companyName
	for _, suffix := range []string{", Inc.", " Inc.", ", Inc", " Inc", " Corp.", " Corp", " Corporation", " Holdings", " Ltd.", " Ltd", " PLC"} {
		name = strings.TrimSuffix(name, suffix)
	}
	return strings.TrimSpace(name)
}

type dedupKey struct {
	source     domain.Source
	platformID string
}

type resubmitKey struct {
	source   domain.Source
	authorID string
	text     string
}

// Clean normalizes, extracts and deduplicates a raw batch. Posts yielding
// no symbol are dropped (they cannot be attributed to the queried
// instrument), as are repeats of the same (source, platformID) and exact
// same-author resubmissions. Input order decides which duplicate survives:
// the first one wins.
func Clean(batch []domain.RawPost, inst domain.Instrument) []domain.CleanedPost {
	seenIDs := make(map[dedupKey]bool, len(batch))
	seenTexts := make(map[resubmitKey]bool, len(batch))

	cleaned := make([]domain.CleanedPost, 0, len(batch))
	for _, raw := range batch {
		id := dedupKey{source: raw.Source, platformID: raw.PlatformID}
		if seenIDs[id] {
			metrics.PostsDropped.WithLabelValues("duplicate").Inc()
			continue
		}
		seenIDs[id] = true

		normalized := Normalize(raw.Text)

		resubmit := resubmitKey{source: raw.Source, authorID: raw.AuthorID, text: normalized}
		if seenTexts[resubmit] {
			metrics.PostsDropped.WithLabelValues("duplicate").Inc()
			continue
		}
		seenTexts[resubmit] = true

		symbols := ExtractSymbols(normalized, inst)
		if len(symbols) == 0 {
			metrics.PostsDropped.WithLabelValues("no_symbol").Inc()
			continue
		}

		cleaned = append(cleaned, domain.CleanedPost{
			RawPost:          raw,
			NormalizedText:   normalized,
			ExtractedSymbols: symbols,
		})
	}

	return cleaned
}
