package analyzer

import "ashare-chanlun/model"

// DetectFractals walks bar positions 1..len(bars)-2 looking for the
// three-bar local-extremum pattern of spec §4.6.1, then collapses
// adjacent same-type runs to their most extreme member.
func DetectFractals(bars []model.Bar) []model.Fractal {
	var raw []model.Fractal

	for i := 1; i < len(bars)-1; i++ {
		cur, prev, next := bars[i], bars[i-1], bars[i+1]

		switch {
		case cur.High > prev.High && cur.High > next.High && cur.Low > prev.Low && cur.Low > next.Low:
			raw = append(raw, model.Fractal{
				Index: i, Date: cur.Date, Type: model.FractalTop,
				Price: cur.High, High: cur.High, Low: cur.Low, Close: cur.Close,
			})
		case cur.Low < prev.Low && cur.Low < next.Low && cur.High < prev.High && cur.High < next.High:
			raw = append(raw, model.Fractal{
				Index: i, Date: cur.Date, Type: model.FractalBottom,
				Price: cur.Low, High: cur.High, Low: cur.Low, Close: cur.Close,
			})
		}
	}

	return filterAdjacentFractals(raw)
}

// filterAdjacentFractals walks left to right, collapsing same-type runs
// to their extremum: a Top run keeps the highest price, a Bottom run
// keeps the lowest. Opposite types are always appended as-is, so the
// result strictly alternates Top/Bottom (spec §4.6.1).
func filterAdjacentFractals(fractals []model.Fractal) []model.Fractal {
	if len(fractals) <= 1 {
		return fractals
	}

	out := []model.Fractal{fractals[0]}
	for i := 1; i < len(fractals); i++ {
		cur := fractals[i]
		last := &out[len(out)-1]

		if cur.Type != last.Type {
			out = append(out, cur)
			continue
		}
		if cur.Type == model.FractalTop {
			if cur.Price > last.Price {
				*last = cur
			}
		} else {
			if cur.Price < last.Price {
				*last = cur
			}
		}
	}
	return out
}
