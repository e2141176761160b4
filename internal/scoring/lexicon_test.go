package scoring

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLexiconScorer_Bullish(t *testing.T) {
	scorer := NewLexiconScorer()

	score, err := scorer.Score("to the moon, time to buy calls")
	require.NoError(t, err)

	assert.Equal(t, 1.0, score.Polarity)
	assert.Equal(t, 0.6, score.Confidence)
	assert.Equal(t, "lexicon-v1", score.ModelID)
}

func TestLexiconScorer_Bearish(t *testing.T) {
	scorer := NewLexiconScorer()

	score, err := scorer.Score("this will crash, load the puts before the dump")
	require.NoError(t, err)

	assert.Equal(t, -1.0, score.Polarity)
	assert.Equal(t, 0.6, score.Confidence)
}

func TestLexiconScorer_Mixed(t *testing.T) {
	scorer := NewLexiconScorer()

	// One bullish hit, one bearish hit.
	score, err := scorer.Score("no idea whether to buy or sell this thing")
	require.NoError(t, err)

	assert.Equal(t, 0.0, score.Polarity)
	assert.Equal(t, 0.6, score.Confidence, "lexicon hits keep confidence high even when they cancel")
}

func TestLexiconScorer_Neutral(t *testing.T) {
	scorer := NewLexiconScorer()

	score, err := scorer.Score("what does everyone think of the earnings report")
	require.NoError(t, err)

	assert.Equal(t, 0.0, score.Polarity)
	assert.Equal(t, 0.3, score.Confidence, "no lexicon hits means low confidence")
}

func TestLexiconScorer_Sarcasm(t *testing.T) {
	scorer := NewLexiconScorer()

	score, err := scorer.Score("totally a winner, definitely not a scam /s")
	require.NoError(t, err)
	assert.Equal(t, 0.8, score.SarcasmProb)

	score, err = scorer.Score("solid quarter, decent guidance")
	require.NoError(t, err)
	assert.Equal(t, 0.1, score.SarcasmProb)
}

func TestLexiconScorer_SubjectivityScalesWithLength(t *testing.T) {
	scorer := NewLexiconScorer()

	short, err := scorer.Score("fine")
	require.NoError(t, err)

	long, err := scorer.Score(strings.Repeat("a very opinionated take ", 10))
	require.NoError(t, err)

	assert.Less(t, short.Subjectivity, long.Subjectivity)

	capped, err := scorer.Score(strings.Repeat("x", 500))
	require.NoError(t, err)
	assert.Equal(t, 1.0, capped.Subjectivity)
}

func TestLexiconScorer_Bounds(t *testing.T) {
	scorer := NewLexiconScorer()

	inputs := []string{
		"",
		"moon rocket rally breakout gain profit growth",
		"crash dump tank drill loss bagholder",
		strings.Repeat("buy sell ", 100),
	}

	for _, text := range inputs {
		score, err := scorer.Score(text)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, score.Polarity, -1.0)
		assert.LessOrEqual(t, score.Polarity, 1.0)
		assert.GreaterOrEqual(t, score.Subjectivity, 0.0)
		assert.LessOrEqual(t, score.Subjectivity, 1.0)
		assert.GreaterOrEqual(t, score.Confidence, 0.0)
		assert.LessOrEqual(t, score.Confidence, 1.0)
	}
}

func TestLexiconScorer_Deterministic(t *testing.T) {
	scorer := NewLexiconScorer()

	a, err := scorer.Score("bullish on this, buying the breakout")
	require.NoError(t, err)
	b, err := scorer.Score("bullish on this, buying the breakout")
	require.NoError(t, err)

	assert.Equal(t, a, b)
}
