package model

import "time"

// Bar is one daily price/volume record for a single instrument.
// Final=false marks an intraday snapshot whose volume covers only part of the
// session; such a bar may be overwritten in place until the closing write
// freezes it with Final=true. At most one bar exists per (ticker, date).
type Bar struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
	Final  bool
}

// SameDay reports whether the bar belongs to the calendar day of t.
func (b Bar) SameDay(t time.Time) bool {
	return b.Date.Year() == t.Year() && b.Date.YearDay() == t.YearDay()
}

// Closes extracts the close column from a bar series.
func Closes(bars []Bar) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}
