package calculator

import (
	"errors"
	"fmt"
)

// Indicator periods used throughout the scanner.
const (
	SMAPeriod    = 200
	ATRPeriod    = 14
	RSIPeriod    = 14
	VolumePeriod = 20
)

// ErrInsufficientData signals that a series is too short for an indicator.
// Callers must treat this as "undefined", never as zero: a short history must
// not produce a falsely low average or a spurious signal.
var ErrInsufficientData = errors.New("not enough data")

// CalculateSMA computes the simple moving average of the last `period` values.
func CalculateSMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) < period {
		return 0, fmt.Errorf("sma(%d) over %d values: %w", period, len(prices), ErrInsufficientData)
	}
	sum := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		sum += prices[i]
	}
	return sum / float64(period), nil
}
