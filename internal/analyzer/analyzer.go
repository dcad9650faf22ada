// Package analyzer orchestrates the two batch evaluations: the universe scan
// that scores every instrument, and the portfolio pass that runs the exit
// guardian over each open position. Both isolate per-item failures; one bad
// ticker never aborts a run.
package analyzer

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"VolumeSniper/internal/calculator"
	"VolumeSniper/internal/filter"
	"VolumeSniper/internal/fundamentals"
	"VolumeSniper/internal/guardian"
	"VolumeSniper/internal/model"
	"VolumeSniper/internal/session"
	"VolumeSniper/internal/store"
	"VolumeSniper/internal/strategy"
)

// Analyzer wires the pure engine components to the stores.
type Analyzer struct {
	Bars         store.BarStore
	Positions    store.PositionStore
	Fundamentals *fundamentals.Book
	Session      *session.Session
	FilterCfg    filter.Config
	ScoreCfg     strategy.Config
	GuardCfg     guardian.Config
}

// New builds an Analyzer with default engine thresholds.
func New(bars store.BarStore, positions store.PositionStore, book *fundamentals.Book, sess *session.Session) *Analyzer {
	return &Analyzer{
		Bars:         bars,
		Positions:    positions,
		Fundamentals: book,
		Session:      sess,
		FilterCfg:    filter.DefaultConfig(),
		ScoreCfg:     strategy.DefaultConfig(),
		GuardCfg:     guardian.DefaultConfig(),
	}
}

// ScanUniverse scores every instrument in the bar store as of the given
// instant. Instruments are excluded, with a reason, when they have no data,
// when today's bar is missing (stale), or when a survival filter rejects them.
// Scores come back sorted descending. An error is returned only when the bar
// store itself is unavailable.
func (a *Analyzer) ScanUniverse(asOf time.Time) (*model.ScanResult, error) {
	tickers, err := a.Bars.Tickers()
	if err != nil {
		return nil, fmt.Errorf("list tickers: %w", err)
	}

	result := &model.ScanResult{AsOf: asOf}
	for _, ticker := range tickers {
		score, skip := a.analyzeTicker(ticker, asOf)
		if skip != nil {
			result.Skipped = append(result.Skipped, *skip)
			continue
		}
		result.Scores = append(result.Scores, *score)
	}

	sort.SliceStable(result.Scores, func(i, j int) bool {
		if result.Scores[i].Score != result.Scores[j].Score {
			return result.Scores[i].Score > result.Scores[j].Score
		}
		return result.Scores[i].Ticker < result.Scores[j].Ticker
	})

	log.Info().
		Int("scored", len(result.Scores)).
		Int("skipped", len(result.Skipped)).
		Time("as_of", asOf).
		Msg("universe scan complete")
	return result, nil
}

func (a *Analyzer) analyzeTicker(ticker string, asOf time.Time) (*model.Score, *model.Skip) {
	bars, err := a.Bars.Bars(ticker)
	if err != nil {
		log.Error().Err(err).Str("ticker", ticker).Msg("load bars")
		return nil, &model.Skip{Ticker: ticker, Reason: model.SkipError, Detail: err.Error()}
	}
	if len(bars) == 0 {
		return nil, &model.Skip{Ticker: ticker, Reason: model.SkipNoData, Detail: "no bars"}
	}

	// Today's bar missing entirely: the instrument sat out the session or the
	// feed is behind. Either way it has no business in today's ranking.
	latest := bars[len(bars)-1]
	if !latest.SameDay(asOf) {
		return nil, &model.Skip{
			Ticker: ticker, Reason: model.SkipStaleBar,
			Detail: fmt.Sprintf("latest bar %s", latest.Date.Format("2006-01-02")),
		}
	}

	set, err := calculator.ComputeSet(bars, a.Session.MinutesElapsed(asOf), a.Session.Minutes())
	if err != nil {
		return nil, &model.Skip{Ticker: ticker, Reason: model.SkipError, Detail: err.Error()}
	}

	capital := a.Fundamentals.PaidUpCapital(ticker)
	if verdict := filter.Check(a.FilterCfg, bars, capital, set.PriceChange); !verdict.Passed {
		return nil, &model.Skip{Ticker: ticker, Reason: model.SkipFiltered, Detail: verdict.Reason}
	}

	score := strategy.Evaluate(a.ScoreCfg, ticker, set, capital)
	return &score, nil
}

// EvaluatePositions runs the guardian over every open position and persists
// any ratchet advance through the store's monotone update. Positions without
// market data are skipped with a warning; a store failure on the position list
// aborts the run as a hard failure for the scheduler to retry.
func (a *Analyzer) EvaluatePositions(asOf time.Time) ([]model.GuardianResult, error) {
	positions, err := a.Positions.Positions()
	if err != nil {
		return nil, fmt.Errorf("load portfolio: %w", err)
	}

	results := make([]model.GuardianResult, 0, len(positions))
	for _, pos := range positions {
		bars, err := a.Bars.Bars(pos.Ticker)
		if err != nil {
			log.Error().Err(err).Str("ticker", pos.Ticker).Msg("load bars for position")
			continue
		}
		if len(bars) == 0 {
			log.Warn().Str("ticker", pos.Ticker).Msg("no market data for position")
			continue
		}

		set, err := calculator.ComputeSet(bars, a.Session.MinutesElapsed(asOf), a.Session.Minutes())
		if err != nil {
			log.Error().Err(err).Str("ticker", pos.Ticker).Msg("compute indicators for position")
			continue
		}

		res, newHighest := guardian.Evaluate(a.GuardCfg, pos, set, asOf)
		if newHighest > pos.HighestSeen {
			if err := a.Positions.RaiseHighestSeen(pos.Ticker, newHighest); err != nil &&
				!errors.Is(err, store.ErrPositionNotFound) {
				log.Error().Err(err).Str("ticker", pos.Ticker).Msg("persist ratchet")
			} else {
				log.Info().Str("ticker", pos.Ticker).
					Float64("from", pos.HighestSeen).Float64("to", newHighest).
					Msg("ratchet moved")
			}
		}
		results = append(results, res)
	}
	return results, nil
}
