package resolver

import (
	"context"
	"strings"

	"github.com/zach-wendland/stonkzap/internal/domain"
)

// companySymbols maps well-known company names to their tickers.
var companySymbols = map[string]domain.Instrument{
	"APPLE":     {Symbol: "AAPL", CompanyName: "Apple Inc.", CIK: "0000320193"},
	"TESLA":     {Symbol: "TSLA", CompanyName: "Tesla, Inc.", CIK: "0001318605"},
	"MICROSOFT": {Symbol: "MSFT", CompanyName: "Microsoft Corporation", CIK: "0000789019"},
	"AMAZON":    {Symbol: "AMZN", CompanyName: "Amazon.com, Inc.", CIK: "0001018724"},
	"GOOGLE":    {Symbol: "GOOGL", CompanyName: "Alphabet Inc.", CIK: "0001652044"},
	"ALPHABET":  {Symbol: "GOOGL", CompanyName: "Alphabet Inc.", CIK: "0001652044"},
	"META":      {Symbol: "META", CompanyName: "Meta Platforms, Inc.", CIK: "0001326801"},
	"FACEBOOK":  {Symbol: "META", CompanyName: "Meta Platforms, Inc.", CIK: "0001326801"},
	"NVIDIA":    {Symbol: "NVDA", CompanyName: "NVIDIA Corporation", CIK: "0001045810"},
	"NETFLIX":   {Symbol: "NFLX", CompanyName: "Netflix, Inc.", CIK: "0001065280"},
	"GAMESTOP":  {Symbol: "GME", CompanyName: "GameStop Corp.", CIK: "0001326380"},
	"AMD":       {Symbol: "AMD", CompanyName: "Advanced Micro Devices, Inc.", CIK: "0000002488"},
}

// knownTickers are symbols accepted as-is without a company-name entry.
var knownTickers = map[string]string{
	"AAPL":  "Apple Inc.",
	"TSLA":  "Tesla, Inc.",
	"MSFT":  "Microsoft Corporation",
	"AMZN":  "Amazon.com, Inc.",
	"GOOGL": "Alphabet Inc.",
	"GOOG":  "Alphabet Inc.",
	"META":  "Meta Platforms, Inc.",
	"NVDA":  "NVIDIA Corporation",
	"NFLX":  "Netflix, Inc.",
	"GME":   "GameStop Corp.",
	"AMC":   "AMC Entertainment Holdings, Inc.",
	"AMD":   "Advanced Micro Devices, Inc.",
	"SPY":   "SPDR S&P 500 ETF Trust",
	"QQQ":   "Invesco QQQ Trust",
}

// StaticLookup resolves queries against a built-in symbol table, plus a
// ticker-shape rule for symbols outside the table. It is the default
// SymbolLookup; a reference-data-backed implementation can replace it at
// wiring time.
type StaticLookup struct{}

func NewStaticLookup() *StaticLookup {
	return &StaticLookup{}
}

// Lookup expects an already-normalized query (uppercase, no $/@ prefix).
func (l *StaticLookup) Lookup(_ context.Context, query string) (*domain.Instrument, error) {
	if inst, ok := companySymbols[query]; ok {
		return &inst, nil
	}

	if name, ok := knownTickers[query]; ok {
		return &domain.Instrument{Symbol: query, CompanyName: name}, nil
	}

	// Ticker-shaped queries (1-5 letters) outside the table are accepted
	// as bare instruments; anything else is not a symbol we know.
	if len(query) >= 1 && len(query) <= 5 && isAlpha(query) {
		return &domain.Instrument{Symbol: query, CompanyName: query}, nil
	}

	return nil, domain.ErrSymbolNotFound
}

func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return len(s) > 0
}

// Normalize canonicalizes a user query: trim, case-fold, strip a leading
// cashtag or mention sigil.
func Normalize(query string) string {
	q := strings.ToUpper(strings.TrimSpace(query))
	q = strings.TrimPrefix(q, "$")
	q = strings.TrimPrefix(q, "@")
	return q
}
