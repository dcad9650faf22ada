// Package strategy turns an indicator set into a composite buy score and a
// discrete action. Scoring is a pure function: the same inputs always yield
// the same score and the same reason order.
package strategy

import "VolumeSniper/internal/model"

// Config holds the scoring thresholds.
type Config struct {
	RVOLThreshold   float64 // relative volume that marks an anomaly
	QuietMovePct    float64 // fractional move below which accumulation is "quiet"
	LowCapThreshold float64 // paid-up capital (Crores) below which float is low
	BuyScore        int     // minimum score for BUY
	WaitScore       int     // minimum score for WAIT
}

// DefaultConfig returns the scanner's stock thresholds.
func DefaultConfig() Config {
	return Config{
		RVOLThreshold:   2.5,
		QuietMovePct:    0.02,
		LowCapThreshold: 50,
		BuyScore:        80,
		WaitScore:       45,
	}
}

// Reason labels, emitted in evaluation order.
const (
	ReasonHighRVOL    = "High RVOL"
	ReasonQuietAccum  = "Quiet Accumulation"
	ReasonLowFloat    = "Low Float"
	ReasonAboveSMA200 = "Above 200 SMA"
	ReasonBelowSMA200 = "Below 200 SMA"
)

// Evaluate scores one instrument. paidUpCapital is nil when fundamental data
// is missing, in which case the low-float bonus simply does not apply.
// Undefined indicators contribute nothing; they are never defaulted to zero.
//
// The order of checks is fixed so the reasons list is deterministic:
//  1. RVOL above threshold          +50
//  2. quiet accumulation (gated on 1) +20
//  3. low float                     +20
//  4. above 200 SMA +10, below −50
func Evaluate(cfg Config, ticker string, set *model.IndicatorSet, paidUpCapital *float64) model.Score {
	score := 0
	reasons := []string{}

	highRVOL := set.RVOL.Valid && set.RVOL.Value > cfg.RVOLThreshold
	if highRVOL {
		score += 50
		reasons = append(reasons, ReasonHighRVOL)

		// Volume without price movement: somebody is accumulating quietly.
		if set.PriceChange.Valid && abs(set.PriceChange.Value) < cfg.QuietMovePct {
			score += 20
			reasons = append(reasons, ReasonQuietAccum)
		}
	}

	if paidUpCapital != nil && *paidUpCapital < cfg.LowCapThreshold {
		score += 20
		reasons = append(reasons, ReasonLowFloat)
	}

	if set.SMA200.Valid {
		if set.Close > set.SMA200.Value {
			score += 10
			reasons = append(reasons, ReasonAboveSMA200)
		} else {
			score -= 50
			reasons = append(reasons, ReasonBelowSMA200)
		}
	}

	out := model.Score{
		Ticker:  ticker,
		Date:    set.Date,
		Score:   score,
		Action:  actionFor(cfg, score),
		Reasons: reasons,
		Close:   set.Close,
		Volume:  set.Volume,
	}
	if set.RVOL.Valid {
		out.RVOL = set.RVOL.Value
	}
	if set.AvgVolume20.Valid {
		out.AvgVolume20 = int64(set.AvgVolume20.Value)
	}
	if set.PriceChange.Valid {
		out.PriceChange = set.PriceChange.Value
	}
	if set.SMA200.Valid {
		out.SMA200 = set.SMA200.Value
	}
	return out
}

func actionFor(cfg Config, score int) model.Action {
	switch {
	case score >= cfg.BuyScore:
		return model.ActionBuy
	case score >= cfg.WaitScore:
		return model.ActionWait
	default:
		return model.ActionIgnore
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
