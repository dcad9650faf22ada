// Package filter applies survival rules that reject untradeable instruments
// before any scoring happens. Rejected tickers are reported as filtered, never
// scored zero.
package filter

import (
	"fmt"
	"math"

	"VolumeSniper/internal/model"
)

// Config holds the survival thresholds.
type Config struct {
	// GhostTownDays is how many consecutive final zero-volume bars kill a ticker.
	GhostTownDays int
	// HighCapThreshold marks heavy instruments (paid-up capital, in Crores).
	HighCapThreshold float64
	// PennyTrapMovePct is the minimal fractional move a heavy instrument must
	// show to stay in the universe.
	PennyTrapMovePct float64
	// MinVolume is the absolute floor on the latest bar's volume.
	MinVolume int64
}

// DefaultConfig mirrors the survival rules of the scanner.
func DefaultConfig() Config {
	return Config{
		GhostTownDays:    3,
		HighCapThreshold: 500,
		PennyTrapMovePct: 0.005,
		MinVolume:        50000,
	}
}

// Verdict is the filter outcome for one instrument.
type Verdict struct {
	Passed bool
	Reason string
}

// Check runs all survival rules over the bar series. paidUpCapital is nil when
// fundamental data is unavailable, which disables the penny-trap rule.
// priceChange is the latest fractional move and may be undefined on short
// histories.
func Check(cfg Config, bars []model.Bar, paidUpCapital *float64, priceChange model.Indicator) Verdict {
	if len(bars) == 0 {
		return Verdict{Passed: false, Reason: "no data"}
	}

	// Ghost-Town: zero volume across the most recent consecutive final bars.
	finals := finalBars(bars)
	if len(finals) >= cfg.GhostTownDays {
		dead := true
		for _, b := range finals[len(finals)-cfg.GhostTownDays:] {
			if b.Volume != 0 {
				dead = false
				break
			}
		}
		if dead {
			return Verdict{Passed: false, Reason: fmt.Sprintf("ghost town: zero volume for %d days", cfg.GhostTownDays)}
		}
	}

	// Penny-Trap: heavy, inert instruments cannot be moved by accumulation.
	if paidUpCapital != nil && *paidUpCapital > cfg.HighCapThreshold &&
		priceChange.Valid && math.Abs(priceChange.Value) < cfg.PennyTrapMovePct {
		return Verdict{Passed: false, Reason: fmt.Sprintf("penny trap: %.0f Cr capital, %.2f%% move", *paidUpCapital, priceChange.Value*100)}
	}

	// Minimum turnover.
	latest := bars[len(bars)-1]
	if latest.Volume < cfg.MinVolume {
		return Verdict{Passed: false, Reason: fmt.Sprintf("low volume: %d", latest.Volume)}
	}

	return Verdict{Passed: true, Reason: "all filters passed"}
}

func finalBars(bars []model.Bar) []model.Bar {
	out := make([]model.Bar, 0, len(bars))
	for _, b := range bars {
		if b.Final {
			out = append(out, b)
		}
	}
	return out
}
