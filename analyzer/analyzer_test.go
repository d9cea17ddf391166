package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ashare-chanlun/model"
)

func TestAnalyze_FewerThanMinBars(t *testing.T) {
	bars := makeBars([]float64{10, 11, 12}, []float64{9, 10, 11})

	result := Analyze(bars)

	assert.NotEmpty(t, result.Warning)
	assert.Nil(t, result.Fractals)
	assert.Equal(t, float64(0), result.Score)
}

func TestAnalyze_InvalidBarProducesWarningNotPanic(t *testing.T) {
	bars := makeBars(
		[]float64{10, 11, 12, 11, 10, 9, 8, 9, 10, 11},
		[]float64{9, 10, 11, 10, 9, 8, 7, 8, 9, 10},
	)
	bars[3].High = 0 // violates low <= high

	result := Analyze(bars)

	assert.NotEmpty(t, result.Warning)
}

// Boundary scenario (spec §8): exactly 3 fractals of alternating type
// produce 2 strokes, 0 pivots, 0 signals.
func TestAnalyze_ThreeAlternatingFractalsBoundary(t *testing.T) {
	bars := makeBars(
		[]float64{10, 8, 9, 11, 13, 11, 9, 7, 9, 10},
		[]float64{9, 7, 8, 10, 12, 10, 8, 6, 8, 9},
	)

	result := Analyze(bars)

	require.Empty(t, result.Warning)
	require.Len(t, result.Fractals, 3)
	assert.Equal(t, model.FractalBottom, result.Fractals[0].Type)
	assert.Equal(t, model.FractalTop, result.Fractals[1].Type)
	assert.Equal(t, model.FractalBottom, result.Fractals[2].Type)

	require.Len(t, result.Strokes, 2)
	assert.Empty(t, result.Pivots)
	assert.Empty(t, result.Signals)
	assert.Equal(t, model.TrendConsolidation, result.Trend)
}

// Invariant 8 (spec §8): score is always in [0, 100].
func TestAnalyze_ScoreAlwaysInRange(t *testing.T) {
	bars := makeBars(
		[]float64{10, 8, 9, 11, 13, 11, 9, 7, 9, 10, 13, 16, 14, 18, 20},
		[]float64{9, 7, 8, 10, 12, 10, 8, 6, 8, 9, 12, 15, 13, 17, 19},
	)

	result := Analyze(bars)

	assert.GreaterOrEqual(t, result.Score, 0.0)
	assert.LessOrEqual(t, result.Score, 100.0)
	assert.NotEmpty(t, result.Summary)
}

func TestAnalyze_TrendTypeIsOneOfThree(t *testing.T) {
	bars := makeBars(
		[]float64{10, 8, 9, 11, 13, 11, 9, 7, 9, 10},
		[]float64{9, 7, 8, 10, 12, 10, 8, 6, 8, 9},
	)
	result := Analyze(bars)
	switch result.Trend {
	case model.TrendUp, model.TrendDown, model.TrendConsolidation:
	default:
		t.Fatalf("unexpected trend type %v", result.Trend)
	}
}
