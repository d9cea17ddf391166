package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ashare-chanlun/model"
)

// Scenario 1 (spec §8): highs [10,11,12,11,10], lows [9,10,11,10,9]
// produce exactly one Top fractal at index 2, price 12.
func TestDetectFractals_SingleTop(t *testing.T) {
	bars := makeBars(
		[]float64{10, 11, 12, 11, 10},
		[]float64{9, 10, 11, 10, 9},
	)

	fractals := DetectFractals(bars)

	require.Len(t, fractals, 1)
	assert.Equal(t, 2, fractals[0].Index)
	assert.Equal(t, model.FractalTop, fractals[0].Type)
	assert.Equal(t, 12.0, fractals[0].Price)
}

func TestDetectFractals_SingleBottom(t *testing.T) {
	bars := makeBars(
		[]float64{10, 9, 8, 9, 10},
		[]float64{9, 8, 7, 8, 9},
	)

	fractals := DetectFractals(bars)

	require.Len(t, fractals, 1)
	assert.Equal(t, 2, fractals[0].Index)
	assert.Equal(t, model.FractalBottom, fractals[0].Type)
	assert.Equal(t, 7.0, fractals[0].Price)
}

func TestDetectFractals_NoExtremumInStraightRun(t *testing.T) {
	bars := makeBars(
		[]float64{10, 11, 12, 13, 14},
		[]float64{9, 10, 11, 12, 13},
	)

	assert.Empty(t, DetectFractals(bars))
}

func TestFilterAdjacentFractals_CollapsesToExtremum(t *testing.T) {
	in := []model.Fractal{
		fractal(1, model.FractalTop, 10, 10, 8, 9),
		fractal(3, model.FractalTop, 12, 12, 9, 10), // same type, more extreme: replaces
		fractal(5, model.FractalBottom, 5, 7, 5, 6),
	}

	out := filterAdjacentFractals(in)

	require.Len(t, out, 2)
	assert.Equal(t, 12.0, out[0].Price)
	assert.Equal(t, model.FractalBottom, out[1].Type)
}

func TestFilterAdjacentFractals_KeepsFirstWhenLessExtreme(t *testing.T) {
	in := []model.Fractal{
		fractal(1, model.FractalTop, 12, 12, 9, 10),
		fractal(3, model.FractalTop, 10, 10, 8, 9), // less extreme: dropped
	}

	out := filterAdjacentFractals(in)

	require.Len(t, out, 1)
	assert.Equal(t, 12.0, out[0].Price)
}

// Invariant 3 (spec §8): adjacent fractals in the filtered list never
// share a type with a dominated (less extreme) extremum.
func TestFilterAdjacentFractals_InvariantHolds(t *testing.T) {
	in := []model.Fractal{
		fractal(1, model.FractalTop, 10, 10, 8, 9),
		fractal(3, model.FractalTop, 9, 9, 7, 8),
		fractal(5, model.FractalTop, 14, 14, 11, 12),
		fractal(7, model.FractalBottom, 5, 8, 5, 6),
	}

	out := filterAdjacentFractals(in)

	for i := 1; i < len(out); i++ {
		if out[i].Type == out[i-1].Type {
			t.Fatalf("adjacent same-type fractals at %d,%d should have collapsed", i-1, i)
		}
	}
	require.Len(t, out, 2)
	assert.Equal(t, 14.0, out[0].Price)
}
