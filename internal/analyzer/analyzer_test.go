package analyzer

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"VolumeSniper/internal/fundamentals"
	"VolumeSniper/internal/model"
	"VolumeSniper/internal/session"
	"VolumeSniper/internal/store"
)

// scanDay is a Tuesday; trading days in the fixture include Tuesday.
var scanDay = time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

func testSession(t *testing.T) *session.Session {
	t.Helper()
	s, err := session.New("UTC", "10:00", 270, []time.Weekday{
		time.Sunday, time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	})
	require.NoError(t, err)
	return s
}

func testStore(t *testing.T) *store.SQLite {
	t.Helper()
	s, err := store.OpenSQLite(filepath.Join(t.TempDir(), "sniper.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testBook(t *testing.T, capital map[string]float64) *fundamentals.Book {
	t.Helper()
	if len(capital) == 0 {
		return fundamentals.Empty()
	}
	content := "paid_up_capital:\n"
	for ticker, v := range capital {
		content += fmt.Sprintf("  %s: %g\n", ticker, v)
	}
	path := filepath.Join(t.TempDir(), "fundamentals.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	book, err := fundamentals.Load(path)
	require.NoError(t, err)
	return book
}

// seedHistory writes `days` final bars ending the day before scanDay, all at
// the given close and volume.
func seedHistory(t *testing.T, s *store.SQLite, ticker string, days int, close float64, volume int64) {
	t.Helper()
	for i := days; i >= 1; i-- {
		bar := model.Bar{
			Date: scanDay.AddDate(0, 0, -i), Open: close, High: close + 1, Low: close - 1,
			Close: close, Volume: volume, Final: true,
		}
		require.NoError(t, s.UpsertBar(ticker, bar))
	}
}

func seedToday(t *testing.T, s *store.SQLite, ticker string, close float64, volume int64, final bool) {
	t.Helper()
	require.NoError(t, s.UpsertBar(ticker, model.Bar{
		Date: scanDay, Open: close, High: close + 1, Low: close - 1,
		Close: close, Volume: volume, Final: final,
	}))
}

func TestScanUniverse_ScoresAndRanks(t *testing.T) {
	s := testStore(t)
	book := testBook(t, map[string]float64{"GP": 30})
	asOf := scanDay.Add(10*time.Hour + 30*time.Minute)

	// GP: 230 days of history at 100, today a volume spike at an unchanged
	// price: high RVOL + quiet accumulation + low float + above SMA.
	seedHistory(t, s, "GP", 230, 100, 150000)
	seedToday(t, s, "GP", 100.5, 500000, true)

	// DULL: same history, ordinary volume.
	seedHistory(t, s, "DULL", 230, 100, 150000)
	seedToday(t, s, "DULL", 100.5, 150000, true)

	a := New(s, s, book, testSession(t))
	result, err := a.ScanUniverse(asOf)
	require.NoError(t, err)

	require.Len(t, result.Scores, 2)
	assert.Equal(t, "GP", result.Scores[0].Ticker, "high scorer ranks first")
	assert.Equal(t, 100, result.Scores[0].Score)
	assert.Equal(t, model.ActionBuy, result.Scores[0].Action)
	assert.Equal(t, []string{"High RVOL", "Quiet Accumulation", "Low Float", "Above 200 SMA"},
		result.Scores[0].Reasons)

	assert.Equal(t, "DULL", result.Scores[1].Ticker)
	assert.Equal(t, 10, result.Scores[1].Score, "above SMA only")
}

func TestScanUniverse_IntradayProjection(t *testing.T) {
	s := testStore(t)
	asOf := scanDay.Add(10*time.Hour + 30*time.Minute) // 30 minutes in

	seedHistory(t, s, "GP", 230, 100, 150000)
	// Partial bar: 50,000 shares in 30 minutes projects to 450,000 → RVOL 3.0.
	seedToday(t, s, "GP", 100.5, 50000, false)

	a := New(s, s, fundamentals.Empty(), testSession(t))
	result, err := a.ScanUniverse(asOf)
	require.NoError(t, err)

	require.Len(t, result.Scores, 1)
	assert.InDelta(t, 3.0, result.Scores[0].RVOL, 1e-9)
	assert.Contains(t, result.Scores[0].Reasons, "High RVOL")
}

func TestScanUniverse_StaleBarExcluded(t *testing.T) {
	s := testStore(t)
	seedHistory(t, s, "GP", 230, 100, 150000) // ends yesterday, nothing today

	a := New(s, s, fundamentals.Empty(), testSession(t))
	result, err := a.ScanUniverse(scanDay.Add(11 * time.Hour))
	require.NoError(t, err)

	assert.Empty(t, result.Scores)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, model.SkipStaleBar, result.Skipped[0].Reason)
}

func TestScanUniverse_FilteredNotScored(t *testing.T) {
	s := testStore(t)

	// Ghost town: three final zero-volume days, then a dead snapshot today.
	seedHistory(t, s, "DEAD", 30, 100, 150000)
	for i := 3; i >= 1; i-- {
		require.NoError(t, s.UpsertBar("DEAD", model.Bar{
			Date: scanDay.AddDate(0, 0, -i), Open: 100, High: 100, Low: 100,
			Close: 100, Volume: 0, Final: true,
		}))
	}
	seedToday(t, s, "DEAD", 100, 0, false)

	a := New(s, s, fundamentals.Empty(), testSession(t))
	result, err := a.ScanUniverse(scanDay.Add(11 * time.Hour))
	require.NoError(t, err)

	assert.Empty(t, result.Scores, "filtered ticker must not appear in scores at all")
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, model.SkipFiltered, result.Skipped[0].Reason)
	assert.Contains(t, result.Skipped[0].Detail, "ghost town")
}

func TestScanUniverse_ShortHistoryDoesNotFakeSignals(t *testing.T) {
	s := testStore(t)

	// 10 days of history: RVOL and SMA are undefined, so a big volume day
	// earns nothing instead of a spurious anomaly score.
	seedHistory(t, s, "NEW", 10, 100, 150000)
	seedToday(t, s, "NEW", 100, 900000, true)

	a := New(s, s, fundamentals.Empty(), testSession(t))
	result, err := a.ScanUniverse(scanDay.Add(11 * time.Hour))
	require.NoError(t, err)

	require.Len(t, result.Scores, 1)
	assert.Equal(t, 0, result.Scores[0].Score)
	assert.Empty(t, result.Scores[0].Reasons)
}

func TestEvaluatePositions_RatchetPersisted(t *testing.T) {
	s := testStore(t)
	asOf := scanDay.Add(11 * time.Hour)

	seedHistory(t, s, "GP", 30, 100, 150000)
	seedToday(t, s, "GP", 120, 150000, true)

	require.NoError(t, s.AddPosition(model.Position{
		Ticker: "GP", BuyPrice: 100, Quantity: 100, PurchaseDate: scanDay.AddDate(0, 0, -5),
	}))

	a := New(s, s, fundamentals.Empty(), testSession(t))
	results, err := a.EvaluatePositions(asOf)
	require.NoError(t, err)
	require.Len(t, results, 1)

	pos, err := s.Position("GP")
	require.NoError(t, err)
	assert.Equal(t, 120.0, pos.HighestSeen, "new high persisted through the store")

	// Re-running with the same data is idempotent.
	_, err = a.EvaluatePositions(asOf)
	require.NoError(t, err)
	pos, _ = s.Position("GP")
	assert.Equal(t, 120.0, pos.HighestSeen)
}

func TestEvaluatePositions_StopLoss(t *testing.T) {
	s := testStore(t)
	asOf := scanDay.Add(11 * time.Hour)

	seedHistory(t, s, "GP", 30, 100, 150000)
	seedToday(t, s, "GP", 92, 150000, true)

	require.NoError(t, s.AddPosition(model.Position{
		Ticker: "GP", BuyPrice: 100, Quantity: 100, PurchaseDate: scanDay.AddDate(0, 0, -2),
	}))

	a := New(s, s, fundamentals.Empty(), testSession(t))
	results, err := a.EvaluatePositions(asOf)
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Equal(t, model.ExitStopLoss, results[0].Action)
	assert.Equal(t, model.UrgencyCritical, results[0].Urgency)
	assert.InDelta(t, 93.0, results[0].StopLossPrice, 1e-9)
}

func TestEvaluatePositions_MissingDataSkipped(t *testing.T) {
	s := testStore(t)
	require.NoError(t, s.AddPosition(model.Position{
		Ticker: "NODATA", BuyPrice: 100, Quantity: 100, PurchaseDate: scanDay.AddDate(0, 0, -2),
	}))

	a := New(s, s, fundamentals.Empty(), testSession(t))
	results, err := a.EvaluatePositions(scanDay.Add(11 * time.Hour))
	require.NoError(t, err)
	assert.Empty(t, results, "position without market data is skipped, not fatal")
}
