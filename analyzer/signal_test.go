package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ashare-chanlun/model"
)

// Scenario 4 (spec §8): a central pivot preceded by a Down stroke and
// followed by an Up stroke whose start is at price 10 produces one
// Buy1 signal at that fractal with confidence 0.8.
func TestClassifySignals_FirstClassBuyScenario(t *testing.T) {
	strokes := []model.Stroke{
		strokeWithRange(0, 1, 25, 20, model.StrokeDown), // prior down stroke, disjoint range
		strokeWithRange(1, 3, 8, 12, model.StrokeUp),
		strokeWithRange(3, 5, 12, 9, model.StrokeDown),
		strokeWithRange(5, 7, 9, 11, model.StrokeUp),
		strokeWithRange(7, 9, 10, 15, model.StrokeUp), // follow-on up stroke starting at 10
	}

	pivots := BuildPivots(strokes)
	require.Len(t, pivots, 1)
	require.Equal(t, 1, pivots[0].StartStrokeIndex)
	require.Equal(t, 3, pivots[0].EndStrokeIndex)

	signals := ClassifySignals(strokes, pivots)

	var buys []model.Signal
	for _, s := range signals {
		if s.Class == model.Buy1 {
			buys = append(buys, s)
		}
	}
	require.Len(t, buys, 1)
	assert.Equal(t, 10.0, buys[0].Price)
	assert.Equal(t, 0.8, buys[0].Confidence)
}

// Invariant 6 (spec §8): signals sort strictly non-decreasing by index.
func TestClassifySignals_SortedByIndex(t *testing.T) {
	strokes := []model.Stroke{
		strokeWithRange(0, 1, 25, 20, model.StrokeDown),
		strokeWithRange(1, 3, 8, 12, model.StrokeUp),
		strokeWithRange(3, 5, 12, 9, model.StrokeDown),
		strokeWithRange(5, 7, 9, 11, model.StrokeUp),
		strokeWithRange(7, 9, 10, 15, model.StrokeUp),
		strokeWithRange(9, 11, 15, 5, model.StrokeDown),
	}
	pivots := BuildPivots(strokes)
	signals := ClassifySignals(strokes, pivots)

	for i := 1; i < len(signals); i++ {
		assert.LessOrEqual(t, signals[i-1].Index, signals[i].Index)
	}
}

func TestClassifyTrend(t *testing.T) {
	up := model.Stroke{Direction: model.StrokeUp}
	down := model.Stroke{Direction: model.StrokeDown}

	assert.Equal(t, model.TrendUp, ClassifyTrend([]model.Stroke{up, up, up, down}))
	assert.Equal(t, model.TrendDown, ClassifyTrend([]model.Stroke{down, down, down, up}))
	assert.Equal(t, model.TrendConsolidation, ClassifyTrend([]model.Stroke{up, down}))
	assert.Equal(t, model.TrendConsolidation, ClassifyTrend(nil))
}

func TestDetectDivergence(t *testing.T) {
	prev := model.Stroke{Direction: model.StrokeUp, Strength: 0.5, End: fractal(2, model.FractalTop, 12, 12, 10, 11)}
	lastWeaker := model.Stroke{Direction: model.StrokeUp, Strength: 0.3, End: fractal(4, model.FractalTop, 14, 14, 12, 13)}

	report := DetectDivergence([]model.Stroke{prev, lastWeaker})
	assert.True(t, report.HasDivergence)
	assert.Equal(t, model.UpDivergence, report.Type)

	lastStronger := model.Stroke{Direction: model.StrokeUp, Strength: 0.9, End: fractal(4, model.FractalTop, 14, 14, 12, 13)}
	report2 := DetectDivergence([]model.Stroke{prev, lastStronger})
	assert.False(t, report2.HasDivergence)
}
