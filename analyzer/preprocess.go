// Package analyzer implements the Chan-Lun geometric/topological
// decomposition over a bar sequence: fractal detection, stroke
// construction, central-pivot assembly, signal classification, trend
// typing, divergence detection, and the scoring summary. One file per
// stage, orchestrated by Analyze, grounded line-for-line on
// original_source/analyzers/chanlun_analyzer.py. The analyzer is pure
// CPU over in-memory bars: no I/O, no shared mutable state between
// invocations (spec §5).
package analyzer

import (
	"fmt"
	"log"

	"ashare-chanlun/model"
)

// MinBars is the fewest bars the analyzer will accept. Below this,
// Analyze returns an empty Result and a warning rather than an error —
// an intentional best-effort contract for a downstream that may batch
// many symbols (spec §7).
const MinBars = 10

// Result is everything one analysis invocation produces. Between
// invocations none of this persists; it is always regenerated from the
// current bar sequence (spec §3).
type Result struct {
	Fractals     []model.Fractal
	Strokes      []model.Stroke
	Pivots       []model.CentralPivot
	Signals      []model.Signal
	Trend        model.TrendType
	Divergence   model.DivergenceReport
	Score        float64
	Summary      string
	Warning      string // non-empty iff the precondition in §4.6 failed
}

// Analyze runs the full Chan-Lun pipeline over bars. If bars don't meet
// the precondition (at least MinBars sessions, all required columns
// present, well-formed), Analyze logs a warning and returns an empty
// Result carrying that warning instead of an error.
func Analyze(bars []model.Bar) Result {
	if warn := precondition(bars); warn != "" {
		log.Printf("analyzer: %s", warn)
		return Result{Warning: warn}
	}

	fractals := DetectFractals(bars)
	strokes := BuildStrokes(fractals)
	pivots := BuildPivots(strokes)
	signals := ClassifySignals(strokes, pivots)
	trend := ClassifyTrend(strokes)
	divergence := DetectDivergence(strokes)
	score, summary := Summarize(bars, fractals, strokes, pivots, signals, trend, divergence)

	return Result{
		Fractals:   fractals,
		Strokes:    strokes,
		Pivots:     pivots,
		Signals:    signals,
		Trend:      trend,
		Divergence: divergence,
		Score:      score,
		Summary:    summary,
	}
}

// precondition checks the input gate of spec §4.6: at least MinBars
// bars, with every bar individually well-formed. It returns a non-empty
// warning string describing the first failure found, or "" if the
// input is acceptable.
func precondition(bars []model.Bar) string {
	if len(bars) == 0 {
		return "input data is empty"
	}
	if len(bars) < MinBars {
		return fmt.Sprintf("insufficient data (%d bars), at least %d required", len(bars), MinBars)
	}
	for i, b := range bars {
		if err := b.Validate(); err != nil {
			return fmt.Sprintf("bar at index %d fails validation: %v", i, err)
		}
	}
	return ""
}
