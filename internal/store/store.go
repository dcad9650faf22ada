package store

import (
	"errors"

	"VolumeSniper/internal/model"
)

var (
	// ErrPositionExists rejects adding a ticker that is already held.
	ErrPositionExists = errors.New("position already exists")
	// ErrPositionNotFound reports a lookup for a ticker not in the portfolio.
	ErrPositionNotFound = errors.New("position not found")
)

// BarStore supplies ordered daily bar series per ticker and accepts upserts
// for the current day's bar.
type BarStore interface {
	// UpsertBar writes one bar keyed by (ticker, date). A non-final snapshot
	// may be overwritten in place; a finalized bar is frozen against further
	// snapshot writes.
	UpsertBar(ticker string, bar model.Bar) error
	// Bars returns the full series for a ticker, ascending by date.
	Bars(ticker string) ([]model.Bar, error)
	// Tickers lists every instrument with stored bars.
	Tickers() ([]string, error)
}

// PositionStore persists open positions. Creation and removal are explicit
// human actions; the engine only ever raises highest_seen.
type PositionStore interface {
	AddPosition(pos model.Position) error
	Positions() ([]model.Position, error)
	Position(ticker string) (model.Position, error)
	// RaiseHighestSeen applies the monotone ratchet: the stored value becomes
	// max(current, price), so concurrent or repeated runs can never lower it.
	RaiseHighestSeen(ticker string, price float64) error
	RemovePosition(ticker string) error
}

// SignalStore persists the most recent scan's output for the API and reports.
type SignalStore interface {
	ReplaceSignals(scores []model.Score) error
	Signals() ([]model.Score, error)
}
