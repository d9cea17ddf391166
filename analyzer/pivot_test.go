package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ashare-chanlun/model"
)

func strokeWithRange(startIdx, endIdx int, startPrice, endPrice float64, dir model.StrokeDirection) model.Stroke {
	start := fractal(startIdx, model.FractalBottom, startPrice, startPrice, startPrice, startPrice)
	end := fractal(endIdx, model.FractalTop, endPrice, endPrice, endPrice, endPrice)
	if dir == model.StrokeDown {
		start.Type, end.Type = model.FractalTop, model.FractalBottom
	}
	return model.Stroke{Start: start, End: end, Direction: dir, Length: endIdx - startIdx}
}

// Scenario 3 (spec §8): three strokes with price ranges [8,12], [12,9],
// [9,11] -> overlap(s1,s2)=[9,12], overlap(s2,s3)=[9,11],
// pivot=[9,11], stroke_count=3.
func TestBuildPivots_ThreeStrokeScenario(t *testing.T) {
	strokes := []model.Stroke{
		strokeWithRange(0, 2, 8, 12, model.StrokeUp),
		strokeWithRange(2, 4, 12, 9, model.StrokeDown),
		strokeWithRange(4, 6, 9, 11, model.StrokeUp),
	}

	pivots := BuildPivots(strokes)

	require.Len(t, pivots, 1)
	z := pivots[0]
	assert.Equal(t, 11.0, z.High)
	assert.Equal(t, 9.0, z.Low)
	assert.Equal(t, 3, z.StrokeCount)
	assert.Equal(t, 0, z.StartStrokeIndex)
	assert.Equal(t, 2, z.EndStrokeIndex)
}

func TestBuildPivots_ExtendsOverContainedStrokes(t *testing.T) {
	strokes := []model.Stroke{
		strokeWithRange(0, 2, 8, 12, model.StrokeUp),
		strokeWithRange(2, 4, 12, 9, model.StrokeDown),
		strokeWithRange(4, 6, 9, 11, model.StrokeUp),
		strokeWithRange(6, 8, 11, 10, model.StrokeDown), // fully within [9,11], start exactly at pivot.High: extends (closed boundary, spec §9)
		strokeWithRange(8, 10, 10, 13, model.StrokeUp),  // breaks out: stops extension
	}

	pivots := BuildPivots(strokes)

	require.Len(t, pivots, 1)
	assert.Equal(t, 4, pivots[0].StrokeCount)
	assert.Equal(t, 3, pivots[0].EndStrokeIndex)
}

func TestBuildPivots_NoOverlapProducesNoPivot(t *testing.T) {
	strokes := []model.Stroke{
		strokeWithRange(0, 2, 1, 2, model.StrokeUp),
		strokeWithRange(2, 4, 10, 20, model.StrokeUp),
		strokeWithRange(4, 6, 30, 40, model.StrokeUp),
	}

	assert.Empty(t, BuildPivots(strokes))
}

func TestBuildPivots_FewerThanThreeStrokes(t *testing.T) {
	strokes := []model.Stroke{
		strokeWithRange(0, 2, 8, 12, model.StrokeUp),
		strokeWithRange(2, 4, 12, 9, model.StrokeDown),
	}
	assert.Empty(t, BuildPivots(strokes))
}
