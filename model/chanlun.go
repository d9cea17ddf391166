package model

import "time"

// FractalType distinguishes a top fractal (local high) from a bottom
// fractal (local low). Closed tagged variant, not a string, per the
// analyzer's design notes.
type FractalType int

const (
	FractalTop FractalType = iota
	FractalBottom
)

func (t FractalType) String() string {
	switch t {
	case FractalTop:
		return "Top"
	case FractalBottom:
		return "Bottom"
	default:
		return "Unknown"
	}
}

// StrokeDirection is Up (Bottom -> Top) or Down (Top -> Bottom).
type StrokeDirection int

const (
	StrokeUp StrokeDirection = iota
	StrokeDown
)

func (d StrokeDirection) String() string {
	switch d {
	case StrokeUp:
		return "Up"
	case StrokeDown:
		return "Down"
	default:
		return "Unknown"
	}
}

// TrendType is the analyzer's overall directional classification for a
// bar sequence.
type TrendType int

const (
	TrendUp TrendType = iota
	TrendDown
	TrendConsolidation
)

func (t TrendType) String() string {
	switch t {
	case TrendUp:
		return "Up"
	case TrendDown:
		return "Down"
	case TrendConsolidation:
		return "Consolidation"
	default:
		return "Unknown"
	}
}

// SignalClass is a canonical Chan-Lun buy/sell point category.
type SignalClass int

const (
	Buy1 SignalClass = iota
	Buy2
	Buy3
	Sell1
	Sell2
	Sell3
)

func (c SignalClass) String() string {
	switch c {
	case Buy1:
		return "Buy1"
	case Buy2:
		return "Buy2"
	case Buy3:
		return "Buy3"
	case Sell1:
		return "Sell1"
	case Sell2:
		return "Sell2"
	case Sell3:
		return "Sell3"
	default:
		return "Unknown"
	}
}

// IsBuy reports whether the class is one of the Buy1/Buy2/Buy3 family.
func (c SignalClass) IsBuy() bool {
	return c == Buy1 || c == Buy2 || c == Buy3
}

// DivergenceType distinguishes bullish (down-move weakening) from
// bearish (up-move weakening) momentum divergence.
type DivergenceType int

const (
	NoDivergence DivergenceType = iota
	UpDivergence
	DownDivergence
)

func (d DivergenceType) String() string {
	switch d {
	case UpDivergence:
		return "UpDivergence"
	case DownDivergence:
		return "DownDivergence"
	default:
		return "None"
	}
}

// Fractal is a local extremum over three adjacent bars. Created once
// per analysis run and never mutated.
type Fractal struct {
	Index int // position in the bar sequence, 1 <= Index <= len(bars)-2
	Date  time.Time
	Type  FractalType
	Price float64 // High for Top, Low for Bottom
	High  float64
	Low   float64
	Close float64
}

// Stroke connects two adjacent fractals of opposite type.
type Stroke struct {
	Start     Fractal
	End       Fractal
	Direction StrokeDirection
	Strength  float64 // |end.Price - start.Price| / start.Price
	Length    int     // end.Index - start.Index, > 0
}

// Min and Max return the smaller/larger of the stroke's two endpoint prices.
func (s Stroke) Min() float64 {
	if s.Start.Price < s.End.Price {
		return s.Start.Price
	}
	return s.End.Price
}

func (s Stroke) Max() float64 {
	if s.Start.Price > s.End.Price {
		return s.Start.Price
	}
	return s.End.Price
}

// CentralPivot is a consolidation zone formed by the overlap of three
// or more consecutive strokes.
type CentralPivot struct {
	High             float64
	Low              float64
	StartStrokeIndex int
	EndStrokeIndex   int
	LevelLabel       string
	StrokeCount      int // >= 3
}

// Signal is a classified canonical buy/sell point.
type Signal struct {
	Index      int
	Date       time.Time
	Price      float64
	Class      SignalClass
	Confidence float64
	Reason     string
}

// DivergenceReport summarizes the momentum-divergence check over the
// final two strokes.
type DivergenceReport struct {
	HasDivergence bool
	Type          DivergenceType
	Strength      float64
}
