package calculator

import (
	"errors"

	"VolumeSniper/internal/model"
)

// ComputeSet derives the full indicator set from an ordered bar series.
// minutesElapsed is minutes from session open to the evaluation instant, or 0
// when the instant falls outside the trading session; sessionMinutes is the
// total session length. Indicators lacking history come back undefined rather
// than zero. Returns an error only for an empty series.
func ComputeSet(bars []model.Bar, minutesElapsed, sessionMinutes int) (*model.IndicatorSet, error) {
	if len(bars) == 0 {
		return nil, errors.New("empty bar series")
	}
	latest := bars[len(bars)-1]

	set := &model.IndicatorSet{
		Date:   latest.Date,
		Final:  latest.Final,
		Open:   latest.Open,
		Close:  latest.Close,
		Volume: latest.Volume,
	}

	if sma, err := CalculateSMA(model.Closes(bars), SMAPeriod); err == nil {
		set.SMA200 = model.Defined(sma)
	}
	if atr, err := CalculateATR(bars, ATRPeriod); err == nil {
		set.ATR14 = model.Defined(atr)
	}
	if rsi, err := CalculateRSI(bars, RSIPeriod); err == nil {
		set.RSI14 = model.Defined(rsi)
	}
	if avg, err := CalculateAvgVolume20(bars); err == nil {
		set.AvgVolume20 = model.Defined(avg)
	}

	// A final bar needs no projection: its volume is the session volume.
	if !latest.Final && minutesElapsed > 0 && sessionMinutes > 0 {
		set.ProjectedVolume = model.Defined(ProjectVolume(latest.Volume, minutesElapsed, sessionMinutes))
	} else {
		set.ProjectedVolume = model.Defined(float64(latest.Volume))
	}

	if set.AvgVolume20.Valid && set.AvgVolume20.Value > 0 {
		set.RVOL = model.Defined(set.ProjectedVolume.Value / set.AvgVolume20.Value)
	}

	if len(bars) >= 2 {
		prev := bars[len(bars)-2].Close
		if prev > 0 {
			set.PriceChange = model.Defined((latest.Close - prev) / prev)
		}
	}

	return set, nil
}
