package notifier

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"VolumeSniper/internal/model"
)

func TestFormatScanSummary(t *testing.T) {
	result := &model.ScanResult{
		AsOf: time.Date(2025, 6, 10, 11, 0, 0, 0, time.UTC),
		Scores: []model.Score{
			{Ticker: "GP", Score: 100, Action: model.ActionBuy, Close: 100.5,
				Volume: 500000, RVOL: 3.3, Reasons: []string{"High RVOL", "Low Float"}},
			{Ticker: "MEH", Score: 50, Action: model.ActionWait, Close: 42, Volume: 80000, RVOL: 1.2},
			{Ticker: "DULL", Score: 10, Action: model.ActionIgnore},
		},
		Skipped: []model.Skip{{Ticker: "DEAD", Reason: model.SkipFiltered}},
	}

	msg := FormatScanSummary(result, 5)
	assert.Contains(t, msg, "GP")
	assert.Contains(t, msg, "[100] BUY")
	assert.Contains(t, msg, "500,000")
	assert.Contains(t, msg, "High RVOL, Low Float")
	assert.Contains(t, msg, "MEH")
	assert.NotContains(t, msg, "DULL", "IGNORE rows are only counted")
	assert.Contains(t, msg, "Scored 3 | ignored 1 | skipped 1")
}

func TestFormatScanSummary_LimitAndEmpty(t *testing.T) {
	result := &model.ScanResult{
		AsOf: time.Now(),
		Scores: []model.Score{
			{Ticker: "A", Score: 90, Action: model.ActionBuy},
			{Ticker: "B", Score: 85, Action: model.ActionBuy},
			{Ticker: "C", Score: 81, Action: model.ActionBuy},
		},
	}
	msg := FormatScanSummary(result, 2)
	assert.Contains(t, msg, "A")
	assert.Contains(t, msg, "B")
	assert.NotContains(t, msg, "<b>C</b>")

	empty := FormatScanSummary(&model.ScanResult{AsOf: time.Now()}, 5)
	assert.Contains(t, empty, "No actionable signals")
}

func TestFormatSellAlert(t *testing.T) {
	msg := FormatSellAlert(model.GuardianResult{
		Ticker: "GP", Action: model.ExitStopLoss, Urgency: model.UrgencyCritical,
		Reason: "emergency brake: 92.00 at or below stop loss 93.00 (-7%)",
		BuyPrice: 100, CurrentPrice: 92, HighestSeen: 105,
		StopLossPrice: 93, TrailPrice: 95, ProfitPct: -8, DaysHeld: 4,
	})
	assert.Contains(t, msg, "🚨")
	assert.Contains(t, msg, "STOP_LOSS")
	assert.Contains(t, msg, "CRITICAL")
	assert.Contains(t, msg, "-8.0%")
	assert.Contains(t, msg, "stop 93.00")
}
