package analyzer

import "ashare-chanlun/model"

// BuildPivots scans strokes for overlapping triples and assembles them
// into CentralPivot zones, extending each zone over any subsequent
// stroke that lies fully within it (spec §4.6.3).
//
// Boundary convention: the central-pivot open/closed question left open
// by spec §9 is resolved here as closed on both sides — a stroke
// endpoint exactly at pivot.Low or pivot.High counts as "within" for
// extension purposes. See pivot_test.go for the scenario this decision
// is pinned against.
func BuildPivots(strokes []model.Stroke) []model.CentralPivot {
	var pivots []model.CentralPivot
	if len(strokes) < 3 {
		return pivots
	}

	i := 0
	for i+2 < len(strokes) {
		pivot, ok := tryBuildPivot(strokes, i)
		if !ok {
			i++
			continue
		}
		pivots = append(pivots, pivot)
		i = pivot.EndStrokeIndex
	}
	return pivots
}

// overlap returns the intersection [max(min(a),min(b)), min(max(a),max(b))]
// of two strokes' price ranges (spec §4.6.3). ok is false when the
// overlap is empty or degenerate (high <= low).
func overlap(a, b model.Stroke) (lo, hi float64, ok bool) {
	lo = max(a.Min(), b.Min())
	hi = min(a.Max(), b.Max())
	return lo, hi, hi > lo
}

func tryBuildPivot(strokes []model.Stroke, start int) (model.CentralPivot, bool) {
	bi1, bi2, bi3 := strokes[start], strokes[start+1], strokes[start+2]

	lo1, hi1, ok := overlap(bi1, bi2)
	if !ok {
		return model.CentralPivot{}, false
	}
	lo2, hi2, ok := overlap(bi2, bi3)
	if !ok {
		return model.CentralPivot{}, false
	}

	low := max(lo1, lo2)
	high := min(hi1, hi2)
	if high <= low {
		return model.CentralPivot{}, false
	}

	endIdx := start + 2
	count := 3
	for j := start + 3; j < len(strokes); j++ {
		s := strokes[j]
		if withinClosed(s.Start.Price, low, high) && withinClosed(s.End.Price, low, high) {
			endIdx = j
			count++
		} else {
			break
		}
	}

	return model.CentralPivot{
		High:             high,
		Low:              low,
		StartStrokeIndex: start,
		EndStrokeIndex:   endIdx,
		LevelLabel:       "5m",
		StrokeCount:      count,
	}, true
}

func withinClosed(price, low, high float64) bool {
	return price >= low && price <= high
}
