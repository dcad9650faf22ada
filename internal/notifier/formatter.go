package notifier

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"VolumeSniper/internal/model"
)

// FormatScanSummary formats the top signals of a scan into a Telegram message.
// Only BUY and WAIT rows are listed; IGNORE rows are summarised as a count.
func FormatScanSummary(result *model.ScanResult, limit int) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("🎯 <b>Volume Scan</b> | %s\n\n", result.AsOf.Format("2006-01-02 15:04")))

	listed, ignored := 0, 0
	for _, s := range result.Scores {
		if s.Action == model.ActionIgnore {
			ignored++
			continue
		}
		if listed >= limit {
			continue
		}
		listed++
		icon := "⏳"
		if s.Action == model.ActionBuy {
			icon = "🟢"
		}
		b.WriteString(fmt.Sprintf("%s <b>%s</b> [%d] %s\n", icon, s.Ticker, s.Score, s.Action))
		b.WriteString(fmt.Sprintf("   close %.2f | vol %s | RVOL %.1f\n",
			s.Close, humanize.Comma(s.Volume), s.RVOL))
		if len(s.Reasons) > 0 {
			b.WriteString(fmt.Sprintf("   %s\n", strings.Join(s.Reasons, ", ")))
		}
	}

	if listed == 0 {
		b.WriteString("No actionable signals this run.\n")
	}
	b.WriteString(fmt.Sprintf("\nScored %d | ignored %d | skipped %d",
		len(result.Scores), ignored, len(result.Skipped)))
	return b.String()
}

// FormatSellAlert formats a single guardian exit recommendation.
func FormatSellAlert(r model.GuardianResult) string {
	var b strings.Builder

	icon := "⚠️"
	if r.Urgency == model.UrgencyCritical {
		icon = "🚨"
	}
	b.WriteString(fmt.Sprintf("%s <b>%s</b> — %s (%s)\n\n", icon, r.Ticker, r.Action, r.Urgency))
	b.WriteString(fmt.Sprintf("%s\n\n", r.Reason))
	b.WriteString(fmt.Sprintf("buy %.2f → now %.2f (%+.1f%%)\n", r.BuyPrice, r.CurrentPrice, r.ProfitPct))
	b.WriteString(fmt.Sprintf("peak %.2f | held %d days\n", r.HighestSeen, r.DaysHeld))
	if r.StopLossPrice > 0 {
		b.WriteString(fmt.Sprintf("stop %.2f", r.StopLossPrice))
		if r.TrailPrice > 0 {
			b.WriteString(fmt.Sprintf(" | trail %.2f", r.TrailPrice))
		}
		b.WriteString("\n")
	}
	return b.String()
}
