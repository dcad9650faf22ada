// Package report renders scan results for humans: a console table and a CSV
// file per run for spreadsheet follow-up.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"VolumeSniper/internal/model"
)

// RenderTable writes a ranked, human-readable signal table.
func RenderTable(w io.Writer, result *model.ScanResult) {
	fmt.Fprintf(w, "Scan as of %s — %d scored, %d skipped\n\n",
		result.AsOf.Format("2006-01-02 15:04"), len(result.Scores), len(result.Skipped))

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TICKER\tSCORE\tACTION\tCLOSE\tVOLUME\tRVOL\tCHG%\tREASONS")
	for _, s := range result.Scores {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%.2f\t%s\t%.1f\t%+.1f\t%s\n",
			s.Ticker, s.Score, s.Action, s.Close,
			humanize.Comma(s.Volume), s.RVOL, s.PriceChange*100,
			strings.Join(s.Reasons, ", "))
	}
	tw.Flush()

	if len(result.Skipped) > 0 {
		fmt.Fprintln(w)
		counts := map[model.SkipReason]int{}
		for _, sk := range result.Skipped {
			counts[sk.Reason]++
		}
		for _, reason := range []model.SkipReason{model.SkipNoData, model.SkipStaleBar, model.SkipFiltered, model.SkipError} {
			if n := counts[reason]; n > 0 {
				fmt.Fprintf(w, "skipped %s: %d\n", reason, n)
			}
		}
	}
}

// WriteCSV writes the scan to <dir>/signals_<date>_<hhmm>.csv and returns the
// file path. The directory is created if needed.
func WriteCSV(dir string, result *model.ScanResult) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("signals_%s.csv", result.AsOf.Format("2006-01-02_1504")))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create report: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"ticker", "date", "score", "action", "close", "volume", "avg_volume_20", "rvol", "price_change", "sma200", "reasons"}); err != nil {
		return "", err
	}
	for _, s := range result.Scores {
		record := []string{
			s.Ticker,
			s.Date.Format("2006-01-02"),
			strconv.Itoa(s.Score),
			string(s.Action),
			strconv.FormatFloat(s.Close, 'f', 2, 64),
			strconv.FormatInt(s.Volume, 10),
			strconv.FormatInt(s.AvgVolume20, 10),
			strconv.FormatFloat(s.RVOL, 'f', 2, 64),
			strconv.FormatFloat(s.PriceChange, 'f', 4, 64),
			strconv.FormatFloat(s.SMA200, 'f', 2, 64),
			strings.Join(s.Reasons, "; "),
		}
		if err := w.Write(record); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}
