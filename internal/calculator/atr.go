package calculator

import (
	"errors"
	"fmt"
	"math"

	"VolumeSniper/internal/model"
)

// TrueRange captures the day's full movement including overnight gaps:
// max(high-low, |high-prevClose|, |low-prevClose|).
func TrueRange(bar model.Bar, prevClose float64) float64 {
	tr := bar.High - bar.Low
	if gap := math.Abs(bar.High - prevClose); gap > tr {
		tr = gap
	}
	if gap := math.Abs(bar.Low - prevClose); gap > tr {
		tr = gap
	}
	return tr
}

// CalculateATR computes the Average True Range over the given period.
// The first ATR value is seeded as the simple mean of the first `period` true
// ranges; subsequent values are EMA-smoothed with alpha = 2/(period+1).
// Requires at least period+1 bars (true range needs a previous close).
func CalculateATR(bars []model.Bar, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(bars) < period+1 {
		return 0, fmt.Errorf("atr(%d) over %d bars: %w", period, len(bars), ErrInsufficientData)
	}

	trs := make([]float64, 0, len(bars)-1)
	for i := 1; i < len(bars); i++ {
		trs = append(trs, TrueRange(bars[i], bars[i-1].Close))
	}

	seed := 0.0
	for _, tr := range trs[:period] {
		seed += tr
	}
	atr := seed / float64(period)

	alpha := 2.0 / float64(period+1)
	for _, tr := range trs[period:] {
		atr += alpha * (tr - atr)
	}
	return atr, nil
}
