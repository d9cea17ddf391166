package analyzer

import (
	"sort"

	"ashare-chanlun/model"
)

// ClassifySignals runs the three canonical buy/sell point families over
// every central pivot and returns the combined list sorted by bar index
// ascending (spec §4.6.4, invariant 6 in spec §8).
func ClassifySignals(strokes []model.Stroke, pivots []model.CentralPivot) []model.Signal {
	var signals []model.Signal
	signals = append(signals, classifyFirstClass(strokes, pivots)...)
	signals = append(signals, classifySecondClass(strokes, pivots)...)
	signals = append(signals, classifyThirdClass(strokes, pivots)...)

	sort.SliceStable(signals, func(i, j int) bool { return signals[i].Index < signals[j].Index })
	return signals
}

// classifyFirstClass finds Class-1 Buy/Sell at the first stroke after a
// pivot: Buy1 when that stroke is Up and the stroke preceding the pivot
// was Down; Sell1 whenever that stroke is Down, whatever preceded the
// pivot.
func classifyFirstClass(strokes []model.Stroke, pivots []model.CentralPivot) []model.Signal {
	var out []model.Signal

	for _, z := range pivots {
		if z.StartStrokeIndex > 0 {
			prev := strokes[z.StartStrokeIndex-1]
			if prev.Direction == model.StrokeDown && z.EndStrokeIndex+1 < len(strokes) {
				next := strokes[z.EndStrokeIndex+1]
				if next.Direction == model.StrokeUp {
					out = append(out, model.Signal{
						Index: next.Start.Index, Date: next.Start.Date, Price: next.Start.Price,
						Class: model.Buy1, Confidence: 0.8,
						Reason: "downtrend ended, upward break after pivot",
					})
				}
			}
		}

		if z.EndStrokeIndex+1 < len(strokes) {
			next := strokes[z.EndStrokeIndex+1]
			if next.Direction == model.StrokeDown {
				out = append(out, model.Signal{
					Index: next.Start.Index, Date: next.Start.Date, Price: next.Start.Price,
					Class: model.Sell1, Confidence: 0.8,
					Reason: "uptrend ended, downward break after pivot",
				})
			}
		}
	}
	return out
}

// classifySecondClass finds Class-2 Buy/Sell inside a pivot's own
// stroke range: a pullback that holds above the pivot's low, or a
// rebound that stays below the pivot's high. This is deliberately
// scoped to strokes within [StartStrokeIndex, EndStrokeIndex), matching
// original_source's behavior rather than classical Chan-Lun's "at pivot
// exit" definition (spec §9).
func classifySecondClass(strokes []model.Stroke, pivots []model.CentralPivot) []model.Signal {
	var out []model.Signal

	for _, z := range pivots {
		for i := z.StartStrokeIndex; i < z.EndStrokeIndex; i++ {
			if i+1 >= len(strokes) {
				continue
			}
			bi, next := strokes[i], strokes[i+1]

			switch {
			case bi.Direction == model.StrokeDown && next.Direction == model.StrokeUp && bi.End.Price > z.Low:
				out = append(out, model.Signal{
					Index: next.Start.Index, Date: next.Start.Date, Price: next.Start.Price,
					Class: model.Buy2, Confidence: 0.6, Reason: "pullback holds support",
				})
			case bi.Direction == model.StrokeUp && next.Direction == model.StrokeDown && bi.End.Price < z.High:
				out = append(out, model.Signal{
					Index: next.Start.Index, Date: next.Start.Date, Price: next.Start.Price,
					Class: model.Sell2, Confidence: 0.6, Reason: "rebound fails resistance",
				})
			}
		}
	}
	return out
}

// classifyThirdClass finds Class-3 Buy/Sell: a breakout stroke beyond
// the pivot followed by a retest that holds beyond the pivot edge.
func classifyThirdClass(strokes []model.Stroke, pivots []model.CentralPivot) []model.Signal {
	var out []model.Signal

	for _, z := range pivots {
		if z.EndStrokeIndex+1 >= len(strokes) {
			continue
		}
		breakout := strokes[z.EndStrokeIndex+1]

		switch {
		case breakout.Direction == model.StrokeUp && breakout.End.Price > z.High:
			if z.EndStrokeIndex+2 < len(strokes) {
				retest := strokes[z.EndStrokeIndex+2]
				if retest.Direction == model.StrokeDown && retest.End.Price > z.High {
					out = append(out, model.Signal{
						Index: retest.End.Index, Date: retest.End.Date, Price: retest.End.Price,
						Class: model.Buy3, Confidence: 0.7, Reason: "breakout retest holds above pivot",
					})
				}
			}
		case breakout.Direction == model.StrokeDown && breakout.End.Price < z.Low:
			if z.EndStrokeIndex+2 < len(strokes) {
				retest := strokes[z.EndStrokeIndex+2]
				if retest.Direction == model.StrokeUp && retest.End.Price < z.Low {
					out = append(out, model.Signal{
						Index: retest.End.Index, Date: retest.End.Date, Price: retest.End.Price,
						Class: model.Sell3, Confidence: 0.7, Reason: "breakdown retest holds below pivot",
					})
				}
			}
		}
	}
	return out
}
