// Package importer bulk-loads historical daily bars from CSV exports. Each
// file holds one ticker's history; the ticker is taken from the file name
// (GP.csv → GP). Imported bars are always final.
package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"VolumeSniper/internal/model"
)

// Store is the subset of the bar store the importer needs.
type Store interface {
	UpsertBar(ticker string, bar model.Bar) error
	RecordImport(ticker, source string, records int) error
}

// Result summarizes one import run.
type Result struct {
	Files   int
	Records int
	Failed  []string
}

// ImportDir loads every *.csv file in dir. A malformed file is skipped and
// reported; it never aborts the run.
func ImportDir(st Store, dir string) (Result, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return Result{}, err
	}
	if len(matches) == 0 {
		return Result{}, fmt.Errorf("no csv files in %s", dir)
	}

	var res Result
	for _, path := range matches {
		n, err := ImportFile(st, path)
		if err != nil {
			log.Error().Err(err).Str("file", path).Msg("import failed")
			res.Failed = append(res.Failed, filepath.Base(path))
			continue
		}
		res.Files++
		res.Records += n
	}
	log.Info().Int("files", res.Files).Int("records", res.Records).
		Int("failed", len(res.Failed)).Msg("import complete")
	return res, nil
}

// ImportFile loads one ticker's CSV and returns the number of bars written.
func ImportFile(st Store, path string) (int, error) {
	ticker := strings.ToUpper(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))

	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	count := 0
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return count, fmt.Errorf("%s: %w", ticker, err)
		}
		if len(record) < 6 {
			return count, fmt.Errorf("%s: expected 6 columns, got %d", ticker, len(record))
		}
		// Skip a header row.
		if strings.EqualFold(record[0], "date") {
			continue
		}

		bar, err := parseBar(record)
		if err != nil {
			return count, fmt.Errorf("%s: %w", ticker, err)
		}
		if err := st.UpsertBar(ticker, bar); err != nil {
			return count, fmt.Errorf("%s: %w", ticker, err)
		}
		count++
	}

	if err := st.RecordImport(ticker, filepath.Base(path), count); err != nil {
		return count, err
	}
	return count, nil
}

// parseBar reads date,open,high,low,close,volume.
func parseBar(record []string) (model.Bar, error) {
	date, err := time.Parse("2006-01-02", record[0])
	if err != nil {
		return model.Bar{}, fmt.Errorf("bad date %q: %w", record[0], err)
	}

	vals := make([]float64, 4)
	for i, raw := range record[1:5] {
		v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
		if err != nil {
			return model.Bar{}, fmt.Errorf("bad price %q: %w", raw, err)
		}
		vals[i] = v
	}
	volume, err := strconv.ParseInt(strings.ReplaceAll(record[5], ",", ""), 10, 64)
	if err != nil {
		return model.Bar{}, fmt.Errorf("bad volume %q: %w", record[5], err)
	}

	return model.Bar{
		Date: date, Open: vals[0], High: vals[1], Low: vals[2], Close: vals[3],
		Volume: volume, Final: true,
	}, nil
}
