package analyzer

import (
	"time"

	"ashare-chanlun/model"
)

// makeBars builds a bar sequence from parallel high/low slices for
// fractal/stroke geometry tests. Open and close are pinned to the
// midpoint of each bar so model.Bar's OHLC invariant always holds
// regardless of the high/low shape under test.
func makeBars(highs, lows []float64) []model.Bar {
	bars := make([]model.Bar, len(highs))
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range highs {
		mid := (highs[i] + lows[i]) / 2
		bars[i] = model.Bar{
			Code:   "600519",
			Date:   base.AddDate(0, 0, i),
			Open:   mid,
			Close:  mid,
			High:   highs[i],
			Low:    lows[i],
			Volume: 1000,
			Amount: mid * 1000,
		}
	}
	return bars
}

func fractal(index int, typ model.FractalType, price, high, low, close float64) model.Fractal {
	return model.Fractal{Index: index, Type: typ, Price: price, High: high, Low: low, Close: close}
}
