// Package model holds the canonical data types shared by the provider
// and the analyzer: price bars, realtime quotes, fundamentals, and the
// Chan-Lun derived geometry (fractals, strokes, central pivots, signals).
package model

import (
	"fmt"
	"time"
)

// CanonicalColumns is the exact, ordered column set every adapter must
// produce before a Bar leaves the provider layer.
var CanonicalColumns = []string{"code", "date", "open", "high", "low", "close", "volume", "amount", "pct_chg"}

// Bar is one trading session's OHLCV record for a single code. Bars are
// immutable once produced and, within one code, form a strictly
// increasing, duplicate-free sequence ordered by Date.
type Bar struct {
	Code    string
	Date    time.Time
	Open    float64
	High    float64
	Low     float64
	Close   float64
	Volume  int64
	Amount  float64
	PctChg  float64 // optional; may be computed, see International adapter
}

// Validate checks the invariant low <= min(open,close) <= max(open,close) <= high.
func (b Bar) Validate() error {
	lo, hi := b.Open, b.Close
	if lo > hi {
		lo, hi = hi, lo
	}
	if b.Low > lo || lo > hi || hi > b.High || b.High < b.Low {
		return fmt.Errorf("model: bar %s %s violates low<=min(open,close)<=max(open,close)<=high (o=%.4f h=%.4f l=%.4f c=%.4f)",
			b.Code, b.Date.Format("2006-01-02"), b.Open, b.High, b.Low, b.Close)
	}
	if b.Volume < 0 {
		return fmt.Errorf("model: bar %s %s has negative volume %d", b.Code, b.Date.Format("2006-01-02"), b.Volume)
	}
	if b.Amount < 0 {
		return fmt.Errorf("model: bar %s %s has negative amount %.4f", b.Code, b.Date.Format("2006-01-02"), b.Amount)
	}
	return nil
}

// ValidateSequence checks that bars are strictly increasing by date with
// no duplicates, in addition to each bar's own invariant.
func ValidateSequence(bars []Bar) error {
	for i, b := range bars {
		if err := b.Validate(); err != nil {
			return err
		}
		if i > 0 && !bars[i-1].Date.Before(b.Date) {
			return fmt.Errorf("model: bar sequence not strictly increasing at index %d (%s -> %s)",
				i, bars[i-1].Date.Format("2006-01-02"), b.Date.Format("2006-01-02"))
		}
	}
	return nil
}
