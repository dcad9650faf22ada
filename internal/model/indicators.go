package model

import "time"

// Indicator is a derived value that may be undefined when the series is too
// short. Callers must check Valid before reading Value; an undefined indicator
// is distinct from a computed zero.
type Indicator struct {
	Value float64
	Valid bool
}

// Defined wraps a computed value.
func Defined(v float64) Indicator { return Indicator{Value: v, Valid: true} }

// IndicatorSet holds everything derived from one instrument's bar series as of
// its latest bar. Recomputed fresh on every evaluation; never cached, because
// the latest bar mutates intraday.
type IndicatorSet struct {
	Date  time.Time
	Final bool

	Open   float64
	Close  float64
	Volume int64

	SMA200          Indicator
	ATR14           Indicator
	RSI14           Indicator
	AvgVolume20     Indicator
	ProjectedVolume Indicator
	RVOL            Indicator
	PriceChange     Indicator // fractional, e.g. 0.015 for +1.5%
}
