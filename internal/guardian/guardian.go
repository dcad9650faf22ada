// Package guardian evaluates open positions against a layered exit decision
// matrix. The engine is advisory: it recommends, a human sells. The only state
// it owns is the highest-seen price ratchet, which moves up and never down.
package guardian

import (
	"fmt"
	"time"

	"VolumeSniper/internal/model"
)

// Config holds the exit thresholds.
type Config struct {
	StopLossPct      float64 // drop below buy price that triggers the emergency brake
	TrailFallbackPct float64 // trailing stop distance when ATR is undefined
	ClimaxProfitPct  float64 // minimum unrealized profit before climax applies
	ClimaxRVOL       float64 // relative volume that marks a blow-off
	ZombieDays       int     // holding days after which dead money is flagged
	ZombieProfitPct  float64 // profit below which a long-held position is a zombie
}

// DefaultConfig returns the stock exit thresholds.
func DefaultConfig() Config {
	return Config{
		StopLossPct:      0.07,
		TrailFallbackPct: 0.05,
		ClimaxProfitPct:  0.20,
		ClimaxRVOL:       5.0,
		ZombieDays:       10,
		ZombieProfitPct:  0.02,
	}
}

// TrailMultiplier returns the ATR multiple for the trailing stop. The stop
// tightens as momentum extends: 2.0 baseline, 1.5 above RSI 70, 1.0 above 80.
func TrailMultiplier(rsi model.Indicator) float64 {
	mult := 2.0
	if rsi.Valid && rsi.Value > 70 {
		mult = 1.5
	}
	if rsi.Valid && rsi.Value > 80 {
		mult = 1.0
	}
	return mult
}

// trailPrice computes the ratchet exit level below the peak.
func trailPrice(cfg Config, highest float64, set *model.IndicatorSet) float64 {
	if set.ATR14.Valid {
		return highest - TrailMultiplier(set.RSI14)*set.ATR14.Value
	}
	return highest * (1 - cfg.TrailFallbackPct)
}

// Evaluate runs the decision matrix for one position as of the latest bar in
// set. Conditions are checked in strict priority order and the first match
// wins. The returned newHighest reflects the ratchet update, which is applied
// before the trailing-stop comparison; the caller persists it with a monotone
// conditional write.
func Evaluate(cfg Config, pos model.Position, set *model.IndicatorSet, asOf time.Time) (model.GuardianResult, float64) {
	current := set.Close

	newHighest := pos.HighestSeen
	if current > newHighest {
		newHighest = current
	}

	stopLoss := pos.BuyPrice * (1 - cfg.StopLossPct)
	trail := trailPrice(cfg, newHighest, set)
	profit := (current - pos.BuyPrice) / pos.BuyPrice
	days := pos.DaysHeld(asOf)

	res := model.GuardianResult{
		Ticker:        pos.Ticker,
		Action:        model.ExitHold,
		Urgency:       model.UrgencyLow,
		BuyPrice:      pos.BuyPrice,
		CurrentPrice:  current,
		HighestSeen:   newHighest,
		StopLossPrice: stopLoss,
		TrailPrice:    trail,
		ProfitPct:     profit * 100,
		DaysHeld:      days,
	}
	if set.RVOL.Valid {
		res.RVOL = set.RVOL.Value
	}

	switch {
	// 1. Emergency brake. Active from the moment the position exists.
	case current <= stopLoss:
		res.Action = model.ExitStopLoss
		res.Urgency = model.UrgencyCritical
		res.Reason = fmt.Sprintf("emergency brake: %.2f at or below stop loss %.2f (-%.0f%%)",
			current, stopLoss, cfg.StopLossPct*100)

	// 2. Trailing stop, armed only once the position has been profitable.
	case newHighest > pos.BuyPrice && current <= trail:
		res.Action = model.ExitTakeProfit
		res.Urgency = model.UrgencyHigh
		res.Reason = fmt.Sprintf("trailing stop: %.2f fell to %.2f from peak %.2f, trend broken",
			current, trail, newHighest)

	// 3. Climax: blow-off volume on a red or neutral candle while deep in profit.
	case profit > cfg.ClimaxProfitPct && set.RVOL.Valid && set.RVOL.Value > cfg.ClimaxRVOL && set.Close <= set.Open:
		res.Action = model.ExitClimax
		res.Urgency = model.UrgencyHigh
		res.Reason = fmt.Sprintf("climax: RVOL %.1fx on a red/neutral candle at +%.1f%%, consider selling half",
			set.RVOL.Value, profit*100)

	// 4. Zombie: dead money tying up capital.
	case days > cfg.ZombieDays && profit < cfg.ZombieProfitPct:
		res.Action = model.ExitZombie
		res.Urgency = model.UrgencyMedium
		res.Reason = fmt.Sprintf("zombie: held %d days with %.1f%% profit, capital better deployed elsewhere",
			days, profit*100)
	}

	return res, newHighest
}
