// Package scoring provides the sentiment-scoring capability consumed by
// the pipeline. The lexicon scorer is the default; a model-backed
// implementation can be selected at wiring time since the pipeline only
// depends on domain.Scorer.
package scoring

import (
	"strings"

	"github.com/zach-wendland/stonkzap/internal/domain"
)

const lexiconModelID = "lexicon-v1"

var bullishWords = []string{
	"bullish", "moon", "buy", "long", "growth", "profit", "gain", "up",
	"calls", "rocket", "breakout", "rally", "winner",
}

var bearishWords = []string{
	"bearish", "crash", "sell", "short", "loss", "down", "dump",
	"puts", "tank", "drill", "bagholder", "overvalued",
}

var sarcasmIndicators = []string{
	"yeah right", "sure thing", "totally", "/s", "🙄", "🤡",
}

// LexiconScorer scores text against fixed bullish/bearish word lists.
// Deterministic, allocation-light, never blocks.
type LexiconScorer struct{}

func NewLexiconScorer() *LexiconScorer {
	return &LexiconScorer{}
}

func (s *LexiconScorer) Score(text string) (domain.Score, error) {
	lower := strings.ToLower(text)

	var pos, neg int
	for _, w := range bullishWords {
		if strings.Contains(lower, w) {
			pos++
		}
	}
	for _, w := range bearishWords {
		if strings.Contains(lower, w) {
			neg++
		}
	}

	total := pos + neg
	var polarity float64
	if total > 0 {
		polarity = float64(pos-neg) / float64(total)
	}

	// Longer posts tend to be more opinionated; 280 chars is one full
	// X-length post.
	subjectivity := min(1.0, float64(len(text))/280*0.7)

	sarcasm := 0.1
	for _, ind := range sarcasmIndicators {
		if strings.Contains(lower, ind) {
			sarcasm = 0.8
			break
		}
	}

	confidence := 0.3
	if total > 0 {
		confidence = 0.6
	}

	return domain.Score{
		Polarity:     clamp(polarity, -1, 1),
		Subjectivity: subjectivity,
		SarcasmProb:  sarcasm,
		Confidence:   confidence,
		ModelID:      lexiconModelID,
	}, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
