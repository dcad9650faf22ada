// Package scheduler drives the intraday rhythm: snapshot scans during the
// session and a closing scan after the final candle lands. Ingestion of fresh
// bars is delegated to a Snapshotter so the engine stays feed-agnostic.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"VolumeSniper/internal/analyzer"
	"VolumeSniper/internal/metrics"
	"VolumeSniper/internal/model"
	"VolumeSniper/internal/notifier"
	"VolumeSniper/internal/report"
	"VolumeSniper/internal/session"
	"VolumeSniper/internal/store"
)

// Snapshotter pulls the day's bars into the store before a run. Snapshot runs
// pass final=false, the closing run final=true. The no-op default covers
// deployments where a separate process feeds the database.
type Snapshotter interface {
	Refresh(ctx context.Context, final bool) error
}

// NoopSnapshotter assumes bars arrive out of band.
type NoopSnapshotter struct{}

func (NoopSnapshotter) Refresh(context.Context, bool) error { return nil }

// Scheduler manages the cron-driven scan and portfolio runs.
type Scheduler struct {
	Cron        *cron.Cron
	Analyzer    *analyzer.Analyzer
	Signals     store.SignalStore
	Session     *session.Session
	Snapshotter Snapshotter
	Notifier    notifier.Notifier
	ReportDir   string
	Ctx         context.Context
}

// New creates a scheduler in the session's timezone so cron specs read as
// local exchange time.
func New(ctx context.Context, a *analyzer.Analyzer, signals store.SignalStore, sess *session.Session, snap Snapshotter, n notifier.Notifier, reportDir string) *Scheduler {
	if snap == nil {
		snap = NoopSnapshotter{}
	}
	if n == nil {
		n = notifier.Noop{}
	}
	return &Scheduler{
		Cron:        cron.New(cron.WithSeconds(), cron.WithLocation(sess.Location())),
		Analyzer:    a,
		Signals:     signals,
		Session:     sess,
		Snapshotter: snap,
		Notifier:    n,
		ReportDir:   reportDir,
		Ctx:         ctx,
	}
}

// RegisterAll wires the snapshot and closing runs.
func (s *Scheduler) RegisterAll(snapshotCrons []string, closingCron string) error {
	for _, spec := range snapshotCrons {
		spec := spec
		if _, err := s.Cron.AddFunc(spec, func() { s.run("snapshot", false) }); err != nil {
			return fmt.Errorf("register snapshot run %q: %w", spec, err)
		}
	}
	if _, err := s.Cron.AddFunc(closingCron, func() { s.run("closing", true) }); err != nil {
		return fmt.Errorf("register closing run %q: %w", closingCron, err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info().Msg("scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Info().Msg("scheduler stopped")
}

// RunNow executes a full run immediately, for the CLI scan command.
func (s *Scheduler) RunNow(final bool) {
	s.run("manual", final)
}

func (s *Scheduler) run(trigger string, final bool) {
	now := time.Now().In(s.Session.Location())
	if !s.Session.IsTradingDay(now) {
		log.Debug().Str("trigger", trigger).Msg("not a trading day, skipping run")
		return
	}

	log.Info().Str("trigger", trigger).Bool("final", final).Msg("starting run")
	metrics.ScansTotal.WithLabelValues(trigger).Inc()
	started := time.Now()

	if err := s.Snapshotter.Refresh(s.Ctx, final); err != nil {
		log.Error().Err(err).Msg("snapshot refresh failed")
		metrics.ScanErrors.Inc()
		return
	}

	result, err := s.Analyzer.ScanUniverse(now)
	if err != nil {
		log.Error().Err(err).Msg("universe scan failed")
		metrics.ScanErrors.Inc()
		return
	}
	s.observeScan(result, started)

	if err := s.Signals.ReplaceSignals(result.Scores); err != nil {
		log.Error().Err(err).Msg("persist signals")
	}
	if s.ReportDir != "" {
		if path, err := report.WriteCSV(s.ReportDir, result); err != nil {
			log.Error().Err(err).Msg("write csv report")
		} else {
			log.Info().Str("path", path).Msg("report written")
		}
	}
	s.trySend(notifier.FormatScanSummary(result, 10))

	sells, err := s.Analyzer.EvaluatePositions(now)
	if err != nil {
		log.Error().Err(err).Msg("portfolio evaluation failed")
		metrics.ScanErrors.Inc()
		return
	}
	for _, r := range sells {
		metrics.SellSignals.WithLabelValues(string(r.Action)).Inc()
		if r.Urgency == model.UrgencyCritical || r.Urgency == model.UrgencyHigh {
			s.trySend(notifier.FormatSellAlert(r))
		}
	}
}

func (s *Scheduler) observeScan(result *model.ScanResult, started time.Time) {
	metrics.ScanDuration.Observe(time.Since(started).Seconds())
	for _, sc := range result.Scores {
		metrics.SignalsGenerated.WithLabelValues(string(sc.Action)).Inc()
	}
	for _, sk := range result.Skipped {
		metrics.TickersSkipped.WithLabelValues(string(sk.Reason)).Inc()
	}
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Error().Err(err).Msg("send notification")
		metrics.NotifyErrors.Inc()
	}
}
