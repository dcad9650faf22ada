package calculator

import (
	"fmt"

	"VolumeSniper/internal/model"
)

// CalculateAvgVolume20 returns the mean of the 20 volumes strictly preceding
// the latest bar. The latest bar is excluded even when final so that a partial
// or just-closed bar never pollutes its own baseline. Requires 21 bars.
func CalculateAvgVolume20(bars []model.Bar) (float64, error) {
	if len(bars) < VolumePeriod+1 {
		return 0, fmt.Errorf("avg volume over %d bars: %w", len(bars), ErrInsufficientData)
	}
	window := bars[len(bars)-VolumePeriod-1 : len(bars)-1]
	var sum int64
	for _, b := range window {
		sum += b.Volume
	}
	return float64(sum) / float64(VolumePeriod), nil
}

// ProjectVolume extrapolates a partial-day volume to a full-session estimate.
// minutesElapsed is clamped to at least 1 to avoid division blowups right at
// the open.
func ProjectVolume(volume int64, minutesElapsed, sessionMinutes int) float64 {
	if minutesElapsed < 1 {
		minutesElapsed = 1
	}
	return float64(volume) / float64(minutesElapsed) * float64(sessionMinutes)
}
