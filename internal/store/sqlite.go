package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"VolumeSniper/internal/model"
)

const dateLayout = "2006-01-02"

// SQLite backs every store interface with a single database file.
type SQLite struct {
	db *sql.DB
	mu sync.Mutex
}

// OpenSQLite opens (or creates) the database and runs migrations.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so dashboard reads don't block scan writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", path).Msg("sqlite store opened")
	return s, nil
}

func (s *SQLite) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS stock_data (
			date     TEXT NOT NULL,
			ticker   TEXT NOT NULL,
			open     REAL,
			high     REAL,
			low      REAL,
			close    REAL,
			volume   INTEGER,
			is_final INTEGER NOT NULL DEFAULT 1,
			PRIMARY KEY (date, ticker)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_ticker_date ON stock_data(ticker, date)`,

		`CREATE TABLE IF NOT EXISTS portfolio (
			ticker        TEXT PRIMARY KEY,
			buy_price     REAL NOT NULL,
			quantity      INTEGER NOT NULL,
			highest_seen  REAL NOT NULL,
			purchase_date TEXT NOT NULL,
			notes         TEXT
		)`,

		`CREATE TABLE IF NOT EXISTS signals_today (
			ticker        TEXT PRIMARY KEY,
			date          TEXT,
			score         INTEGER,
			action        TEXT,
			reasons       TEXT,
			close         REAL,
			volume        INTEGER,
			rvol          REAL,
			avg_volume_20 INTEGER,
			price_change  REAL,
			sma_200       REAL,
			created_at    INTEGER
		)`,

		`CREATE TABLE IF NOT EXISTS import_meta (
			ticker       TEXT PRIMARY KEY,
			last_updated TEXT,
			data_source  TEXT,
			record_count INTEGER
		)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

// UpsertBar writes a bar keyed by (ticker, date). Once a bar is final, only
// another final write may touch it; late snapshot writes are silently dropped.
func (s *SQLite) UpsertBar(ticker string, bar model.Bar) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	final := 0
	if bar.Final {
		final = 1
	}
	_, err := s.db.Exec(`INSERT INTO stock_data (date, ticker, open, high, low, close, volume, is_final)
		VALUES (?,?,?,?,?,?,?,?)
		ON CONFLICT(date, ticker) DO UPDATE SET
			open=excluded.open, high=excluded.high, low=excluded.low,
			close=excluded.close, volume=excluded.volume, is_final=excluded.is_final
		WHERE stock_data.is_final = 0 OR excluded.is_final = 1`,
		bar.Date.Format(dateLayout), ticker,
		bar.Open, bar.High, bar.Low, bar.Close, bar.Volume, final,
	)
	return err
}

// Bars returns a ticker's full series, ascending by date.
func (s *SQLite) Bars(ticker string) ([]model.Bar, error) {
	rows, err := s.db.Query(`SELECT date, open, high, low, close, volume, is_final
		FROM stock_data WHERE ticker = ? ORDER BY date ASC`, ticker)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bars []model.Bar
	for rows.Next() {
		var (
			dateStr string
			b       model.Bar
			final   int
		)
		if err := rows.Scan(&dateStr, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume, &final); err != nil {
			return nil, err
		}
		b.Date, err = time.Parse(dateLayout, dateStr)
		if err != nil {
			return nil, fmt.Errorf("bad date %q for %s: %w", dateStr, ticker, err)
		}
		b.Final = final == 1
		bars = append(bars, b)
	}
	return bars, rows.Err()
}

func (s *SQLite) Tickers() ([]string, error) {
	rows, err := s.db.Query(`SELECT DISTINCT ticker FROM stock_data ORDER BY ticker`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickers []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		tickers = append(tickers, t)
	}
	return tickers, rows.Err()
}

func (s *SQLite) AddPosition(pos model.Position) error {
	if err := pos.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var exists int
	if err := s.db.QueryRow(`SELECT COUNT(1) FROM portfolio WHERE ticker = ?`, pos.Ticker).Scan(&exists); err != nil {
		return err
	}
	if exists > 0 {
		return fmt.Errorf("%s: %w", pos.Ticker, ErrPositionExists)
	}

	// highest_seen starts at the buy price.
	_, err := s.db.Exec(`INSERT INTO portfolio (ticker, buy_price, quantity, highest_seen, purchase_date, notes)
		VALUES (?,?,?,?,?,?)`,
		pos.Ticker, pos.BuyPrice, pos.Quantity, pos.BuyPrice,
		pos.PurchaseDate.Format(dateLayout), pos.Notes,
	)
	return err
}

func (s *SQLite) Positions() ([]model.Position, error) {
	rows, err := s.db.Query(`SELECT ticker, buy_price, quantity, highest_seen, purchase_date, notes
		FROM portfolio ORDER BY ticker`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var positions []model.Position
	for rows.Next() {
		pos, err := scanPosition(rows.Scan)
		if err != nil {
			return nil, err
		}
		positions = append(positions, pos)
	}
	return positions, rows.Err()
}

func (s *SQLite) Position(ticker string) (model.Position, error) {
	row := s.db.QueryRow(`SELECT ticker, buy_price, quantity, highest_seen, purchase_date, notes
		FROM portfolio WHERE ticker = ?`, ticker)
	pos, err := scanPosition(row.Scan)
	if err == sql.ErrNoRows {
		return model.Position{}, fmt.Errorf("%s: %w", ticker, ErrPositionNotFound)
	}
	return pos, err
}

func scanPosition(scan func(...any) error) (model.Position, error) {
	var (
		pos     model.Position
		dateStr string
		notes   sql.NullString
	)
	if err := scan(&pos.Ticker, &pos.BuyPrice, &pos.Quantity, &pos.HighestSeen, &dateStr, &notes); err != nil {
		return model.Position{}, err
	}
	d, err := time.Parse(dateLayout, dateStr)
	if err != nil {
		return model.Position{}, fmt.Errorf("bad purchase date %q: %w", dateStr, err)
	}
	pos.PurchaseDate = d
	pos.Notes = notes.String
	return pos, nil
}

// RaiseHighestSeen applies the monotone ratchet inside the database, so even
// overlapping runs can only move the peak upward.
func (s *SQLite) RaiseHighestSeen(ticker string, price float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`UPDATE portfolio SET highest_seen = MAX(highest_seen, ?) WHERE ticker = ?`,
		price, ticker)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", ticker, ErrPositionNotFound)
	}
	return nil
}

func (s *SQLite) RemovePosition(ticker string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`DELETE FROM portfolio WHERE ticker = ?`, ticker)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", ticker, ErrPositionNotFound)
	}
	return nil
}

// ReplaceSignals swaps the persisted signal set for the latest scan's output.
func (s *SQLite) ReplaceSignals(scores []model.Score) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM signals_today`); err != nil {
		return err
	}
	now := time.Now().Unix()
	for _, sc := range scores {
		reasons, err := json.Marshal(sc.Reasons)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(`INSERT INTO signals_today
			(ticker, date, score, action, reasons, close, volume, rvol, avg_volume_20, price_change, sma_200, created_at)
			VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
			sc.Ticker, sc.Date.Format(dateLayout), sc.Score, string(sc.Action), string(reasons),
			sc.Close, sc.Volume, sc.RVOL, sc.AvgVolume20, sc.PriceChange, sc.SMA200, now,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLite) Signals() ([]model.Score, error) {
	rows, err := s.db.Query(`SELECT ticker, date, score, action, reasons, close, volume, rvol, avg_volume_20, price_change, sma_200
		FROM signals_today ORDER BY score DESC, ticker`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scores []model.Score
	for rows.Next() {
		var (
			sc         model.Score
			dateStr    string
			action     string
			reasonsRaw string
		)
		if err := rows.Scan(&sc.Ticker, &dateStr, &sc.Score, &action, &reasonsRaw,
			&sc.Close, &sc.Volume, &sc.RVOL, &sc.AvgVolume20, &sc.PriceChange, &sc.SMA200); err != nil {
			return nil, err
		}
		sc.Date, err = time.Parse(dateLayout, dateStr)
		if err != nil {
			return nil, err
		}
		sc.Action = model.Action(action)
		if err := json.Unmarshal([]byte(reasonsRaw), &sc.Reasons); err != nil {
			return nil, err
		}
		scores = append(scores, sc)
	}
	return scores, rows.Err()
}

// RecordImport tracks the provenance of bulk-loaded data per ticker.
func (s *SQLite) RecordImport(ticker, source string, records int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`INSERT INTO import_meta (ticker, last_updated, data_source, record_count)
		VALUES (?,?,?,?)
		ON CONFLICT(ticker) DO UPDATE SET
			last_updated=excluded.last_updated, data_source=excluded.data_source, record_count=excluded.record_count`,
		ticker, time.Now().Format(time.RFC3339), source, records,
	)
	return err
}

// Stats summarizes stored data for the stats command.
type Stats struct {
	Tickers   int
	Bars      int
	Positions int
	FirstDate string
	LastDate  string
}

func (s *SQLite) Stats() (Stats, error) {
	var st Stats
	if err := s.db.QueryRow(`SELECT COUNT(DISTINCT ticker), COUNT(*) FROM stock_data`).Scan(&st.Tickers, &st.Bars); err != nil {
		return st, err
	}
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM portfolio`).Scan(&st.Positions); err != nil {
		return st, err
	}
	var first, last sql.NullString
	if err := s.db.QueryRow(`SELECT MIN(date), MAX(date) FROM stock_data`).Scan(&first, &last); err != nil {
		return st, err
	}
	st.FirstDate, st.LastDate = first.String, last.String
	return st, nil
}

func (s *SQLite) Close() error {
	log.Info().Msg("closing sqlite store")
	return s.db.Close()
}
