package analyzer

import "ashare-chanlun/model"

// BuildStrokes pairs each consecutive pair of filtered fractals into a
// Stroke when their types are opposite (spec §4.6.2). Same-type pairs
// — which DetectFractals' filtered output never contains, but unfiltered
// input can — are skipped rather than emitted as an invalid stroke.
func BuildStrokes(fractals []model.Fractal) []model.Stroke {
	if len(fractals) < 2 {
		return nil
	}

	strokes := make([]model.Stroke, 0, len(fractals)-1)
	for i := 0; i < len(fractals)-1; i++ {
		start, end := fractals[i], fractals[i+1]

		var direction model.StrokeDirection
		switch {
		case start.Type == model.FractalBottom && end.Type == model.FractalTop:
			direction = model.StrokeUp
		case start.Type == model.FractalTop && end.Type == model.FractalBottom:
			direction = model.StrokeDown
		default:
			continue
		}

		strokes = append(strokes, model.Stroke{
			Start:     start,
			End:       end,
			Direction: direction,
			Strength:  abs(end.Price-start.Price) / start.Price,
			Length:    end.Index - start.Index,
		})
	}
	return strokes
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
