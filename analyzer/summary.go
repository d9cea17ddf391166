package analyzer

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"ashare-chanlun/model"
)

const (
	baseScore           = 50.0
	trendUpBonus        = 20.0
	trendDownPenalty    = 20.0
	downDivergenceBump  = 15.0
	upDivergencePenalty = 15.0
	perSignalPoints     = 5.0
	recentSignalWindow  = 10
)

// Summarize computes the scoring-summary score (spec §4.6.7, clamped to
// [0,100]) and a human-readable text summary concatenating the stage
// counts, formatted with go-humanize the way the rest of the pack
// formats user-facing counts.
func Summarize(
	bars []model.Bar,
	fractals []model.Fractal,
	strokes []model.Stroke,
	pivots []model.CentralPivot,
	signals []model.Signal,
	trend model.TrendType,
	divergence model.DivergenceReport,
) (float64, string) {
	score := baseScore
	switch trend {
	case model.TrendUp:
		score += trendUpBonus
	case model.TrendDown:
		score -= trendDownPenalty
	}

	if divergence.HasDivergence {
		switch divergence.Type {
		case model.DownDivergence:
			score += downDivergenceBump // bullish: downtrend losing steam
		case model.UpDivergence:
			score -= upDivergencePenalty // bearish: uptrend losing steam
		}
	}

	recent := signals
	if len(signals) > recentSignalWindow {
		recent = signals[len(signals)-recentSignalWindow:]
	}
	var buyCount, sellCount int
	for _, s := range recent {
		if s.Class.IsBuy() {
			buyCount++
		} else {
			sellCount++
		}
	}
	score += float64(buyCount) * perSignalPoints
	score -= float64(sellCount) * perSignalPoints

	if score < 0 {
		score = 0
	} else if score > 100 {
		score = 100
	}

	return score, buildSummaryText(bars, fractals, strokes, pivots, buyCount, sellCount)
}

func buildSummaryText(bars []model.Bar, fractals []model.Fractal, strokes []model.Stroke, pivots []model.CentralPivot, buyCount, sellCount int) string {
	var parts []string
	parts = append(parts, fmt.Sprintf("%s bars analyzed", humanize.Comma(int64(len(bars)))))
	if len(fractals) > 0 {
		parts = append(parts, fmt.Sprintf("%s fractals found", humanize.Comma(int64(len(fractals)))))
	}
	if len(strokes) > 0 {
		parts = append(parts, fmt.Sprintf("%s strokes built", humanize.Comma(int64(len(strokes)))))
	}
	if len(pivots) > 0 {
		parts = append(parts, fmt.Sprintf("%s central pivots found", humanize.Comma(int64(len(pivots)))))
	}
	if buyCount > 0 || sellCount > 0 {
		parts = append(parts, fmt.Sprintf("%d buy / %d sell signals", buyCount, sellCount))
	}
	if len(parts) == 0 {
		return "chan-lun analysis complete"
	}
	return strings.Join(parts, ", ")
}
