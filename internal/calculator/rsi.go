package calculator

import (
	"errors"
	"fmt"

	"VolumeSniper/internal/model"
)

// CalculateRSI computes the Relative Strength Index over the given period.
// Average gain and average loss are seeded over the first `period` changes and
// then EMA-smoothed with the same alpha as ATR. RSI is defined as 100 when the
// average loss is zero. Requires at least period+1 bars.
func CalculateRSI(bars []model.Bar, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(bars) < period+1 {
		return 0, fmt.Errorf("rsi(%d) over %d bars: %w", period, len(bars), ErrInsufficientData)
	}

	closes := model.Closes(bars)

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	alpha := 2.0 / float64(period+1)
	for i := period + 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain += alpha * (gain - avgGain)
		avgLoss += alpha * (loss - avgLoss)
	}

	if avgLoss == 0 {
		return 100.0, nil
	}
	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs), nil
}
