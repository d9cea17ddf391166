package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ashare-chanlun/model"
)

// Scenario 2 (spec §8): fractals [Bottom@0 price 8, Top@2 price 12,
// Bottom@4 price 9] produce two strokes: Up (0->2, strength 0.5),
// Down (2->4, strength 0.25).
func TestBuildStrokes_TwoStrokeScenario(t *testing.T) {
	fractals := []model.Fractal{
		fractal(0, model.FractalBottom, 8, 9, 8, 8.5),
		fractal(2, model.FractalTop, 12, 12, 10, 11),
		fractal(4, model.FractalBottom, 9, 10, 9, 9.5),
	}

	strokes := BuildStrokes(fractals)

	require.Len(t, strokes, 2)

	assert.Equal(t, model.StrokeUp, strokes[0].Direction)
	assert.InDelta(t, 0.5, strokes[0].Strength, 1e-9)
	assert.Equal(t, 2, strokes[0].Length)

	assert.Equal(t, model.StrokeDown, strokes[1].Direction)
	assert.InDelta(t, 0.25, strokes[1].Strength, 1e-9)
	assert.Equal(t, 2, strokes[1].Length)
}

func TestBuildStrokes_SkipsSameTypePair(t *testing.T) {
	fractals := []model.Fractal{
		fractal(0, model.FractalTop, 10, 10, 8, 9),
		fractal(2, model.FractalTop, 11, 11, 9, 10),
		fractal(4, model.FractalBottom, 6, 8, 6, 7),
	}

	strokes := BuildStrokes(fractals)

	require.Len(t, strokes, 1)
	assert.Equal(t, model.StrokeDown, strokes[0].Direction)
}

// Invariant 4 (spec §8): start/end types always differ; direction is
// consistent with the start type.
func TestBuildStrokes_DirectionConsistentWithStartType(t *testing.T) {
	fractals := []model.Fractal{
		fractal(0, model.FractalBottom, 8, 9, 8, 8.5),
		fractal(2, model.FractalTop, 12, 12, 10, 11),
	}

	strokes := BuildStrokes(fractals)
	require.Len(t, strokes, 1)
	s := strokes[0]
	assert.NotEqual(t, s.Start.Type, s.End.Type)
	if s.Start.Type == model.FractalBottom {
		assert.Equal(t, model.StrokeUp, s.Direction)
	} else {
		assert.Equal(t, model.StrokeDown, s.Direction)
	}
}
