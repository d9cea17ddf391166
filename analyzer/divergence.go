package analyzer

import "ashare-chanlun/model"

// divergenceWeakenRatio: the later same-direction stroke must be under
// this fraction of the prior one's strength to count as weakening
// (spec §4.6.6).
const divergenceWeakenRatio = 0.8

// DetectDivergence compares the final two strokes: if they share a
// direction, the later reaches a new extreme, and its strength is under
// divergenceWeakenRatio of the prior's, momentum is diverging from price
// (spec §4.6.6).
func DetectDivergence(strokes []model.Stroke) model.DivergenceReport {
	if len(strokes) < 2 {
		return model.DivergenceReport{Type: model.NoDivergence}
	}

	last := strokes[len(strokes)-1]
	prev := strokes[len(strokes)-2]

	if last.Direction != prev.Direction {
		return model.DivergenceReport{Type: model.NoDivergence}
	}

	strengthDelta := abs(last.Strength-prev.Strength) / prev.Strength
	weaker := last.Strength < prev.Strength*divergenceWeakenRatio

	switch last.Direction {
	case model.StrokeUp:
		if last.End.Price > prev.End.Price && weaker {
			return model.DivergenceReport{HasDivergence: true, Type: model.UpDivergence, Strength: strengthDelta}
		}
	case model.StrokeDown:
		if last.End.Price < prev.End.Price && weaker {
			return model.DivergenceReport{HasDivergence: true, Type: model.DownDivergence, Strength: strengthDelta}
		}
	}
	return model.DivergenceReport{Type: model.NoDivergence}
}
