package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"VolumeSniper/internal/model"
)

func openTestStore(t *testing.T) *SQLite {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "sniper.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func day(d int) time.Time {
	return time.Date(2025, 6, d, 0, 0, 0, 0, time.UTC)
}

func bar(d int, close float64, volume int64, final bool) model.Bar {
	return model.Bar{Date: day(d), Open: close - 1, High: close + 1, Low: close - 2, Close: close, Volume: volume, Final: final}
}

func TestUpsertBar_SnapshotLifecycle(t *testing.T) {
	s := openTestStore(t)

	// First intraday snapshot.
	require.NoError(t, s.UpsertBar("GP", bar(10, 100, 20000, false)))
	// Later snapshot overwrites in place.
	require.NoError(t, s.UpsertBar("GP", bar(10, 102, 45000, false)))

	bars, err := s.Bars("GP")
	require.NoError(t, err)
	require.Len(t, bars, 1)
	assert.Equal(t, 102.0, bars[0].Close)
	assert.False(t, bars[0].Final)

	// Closing write finalizes the bar.
	require.NoError(t, s.UpsertBar("GP", bar(10, 101, 90000, true)))
	bars, _ = s.Bars("GP")
	require.Len(t, bars, 1)
	assert.True(t, bars[0].Final)
	assert.Equal(t, int64(90000), bars[0].Volume)

	// A stray late snapshot must not thaw the frozen bar.
	require.NoError(t, s.UpsertBar("GP", bar(10, 50, 1, false)))
	bars, _ = s.Bars("GP")
	assert.True(t, bars[0].Final)
	assert.Equal(t, 101.0, bars[0].Close)
}

func TestBars_OrderedAscending(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.UpsertBar("GP", bar(12, 103, 1000, true)))
	require.NoError(t, s.UpsertBar("GP", bar(10, 101, 1000, true)))
	require.NoError(t, s.UpsertBar("GP", bar(11, 102, 1000, true)))

	bars, err := s.Bars("GP")
	require.NoError(t, err)
	require.Len(t, bars, 3)
	assert.True(t, bars[0].Date.Before(bars[1].Date))
	assert.True(t, bars[1].Date.Before(bars[2].Date))
}

func TestTickers(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.UpsertBar("BEXIMCO", bar(10, 50, 1000, true)))
	require.NoError(t, s.UpsertBar("GP", bar(10, 100, 1000, true)))
	require.NoError(t, s.UpsertBar("GP", bar(11, 101, 1000, true)))

	tickers, err := s.Tickers()
	require.NoError(t, err)
	assert.Equal(t, []string{"BEXIMCO", "GP"}, tickers)
}

func TestAddPosition(t *testing.T) {
	s := openTestStore(t)
	pos := model.Position{Ticker: "GP", BuyPrice: 250, Quantity: 100, PurchaseDate: day(1)}
	require.NoError(t, s.AddPosition(pos))

	got, err := s.Position("GP")
	require.NoError(t, err)
	assert.Equal(t, 250.0, got.HighestSeen, "highest_seen starts at the buy price")

	// Duplicate ticker rejected.
	assert.ErrorIs(t, s.AddPosition(pos), ErrPositionExists)
}

func TestAddPosition_RejectsInvalid(t *testing.T) {
	s := openTestStore(t)
	assert.ErrorIs(t, s.AddPosition(model.Position{Ticker: "GP", BuyPrice: 0, Quantity: 10, PurchaseDate: day(1)}), model.ErrInvalidPosition)
	assert.ErrorIs(t, s.AddPosition(model.Position{Ticker: "GP", BuyPrice: 10, Quantity: -5, PurchaseDate: day(1)}), model.ErrInvalidPosition)
	assert.ErrorIs(t, s.AddPosition(model.Position{BuyPrice: 10, Quantity: 5, PurchaseDate: day(1)}), model.ErrInvalidPosition)
}

func TestRaiseHighestSeen_Monotone(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.AddPosition(model.Position{Ticker: "GP", BuyPrice: 100, Quantity: 10, PurchaseDate: day(1)}))

	require.NoError(t, s.RaiseHighestSeen("GP", 120))
	pos, _ := s.Position("GP")
	assert.Equal(t, 120.0, pos.HighestSeen)

	// Lower value is a no-op, not a decrease.
	require.NoError(t, s.RaiseHighestSeen("GP", 110))
	pos, _ = s.Position("GP")
	assert.Equal(t, 120.0, pos.HighestSeen)

	// Re-applying the peak is idempotent.
	require.NoError(t, s.RaiseHighestSeen("GP", 120))
	pos, _ = s.Position("GP")
	assert.Equal(t, 120.0, pos.HighestSeen)

	assert.ErrorIs(t, s.RaiseHighestSeen("NOPE", 10), ErrPositionNotFound)
}

func TestRemovePosition(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.AddPosition(model.Position{Ticker: "GP", BuyPrice: 100, Quantity: 10, PurchaseDate: day(1)}))

	require.NoError(t, s.RemovePosition("GP"))
	_, err := s.Position("GP")
	assert.ErrorIs(t, err, ErrPositionNotFound)
	assert.ErrorIs(t, s.RemovePosition("GP"), ErrPositionNotFound)
}

func TestReplaceSignals_RoundTrip(t *testing.T) {
	s := openTestStore(t)
	scores := []model.Score{
		{Ticker: "GP", Date: day(10), Score: 100, Action: model.ActionBuy,
			Reasons: []string{"High RVOL", "Above 200 SMA"}, Close: 250, Volume: 900000, RVOL: 3.2},
		{Ticker: "BEXIMCO", Date: day(10), Score: 30, Action: model.ActionIgnore,
			Reasons: []string{"Below 200 SMA"}, Close: 12, Volume: 100000},
	}
	require.NoError(t, s.ReplaceSignals(scores))

	got, err := s.Signals()
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "GP", got[0].Ticker, "sorted by score descending")
	assert.Equal(t, []string{"High RVOL", "Above 200 SMA"}, got[0].Reasons)

	// A fresh scan replaces, never appends.
	require.NoError(t, s.ReplaceSignals(scores[:1]))
	got, _ = s.Signals()
	assert.Len(t, got, 1)
}

func TestStats(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.UpsertBar("GP", bar(10, 100, 1000, true)))
	require.NoError(t, s.UpsertBar("GP", bar(11, 101, 1000, true)))
	require.NoError(t, s.AddPosition(model.Position{Ticker: "GP", BuyPrice: 100, Quantity: 10, PurchaseDate: day(1)}))

	st, err := s.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, st.Tickers)
	assert.Equal(t, 2, st.Bars)
	assert.Equal(t, 1, st.Positions)
	assert.Equal(t, "2025-06-10", st.FirstDate)
	assert.Equal(t, "2025-06-11", st.LastDate)
}
