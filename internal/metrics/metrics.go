// Package metrics exposes Prometheus instrumentation for the scan and
// portfolio pipelines.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ScansTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sniper_scans_total",
		Help: "Universe scans executed, labelled by trigger (snapshot, closing, manual).",
	}, []string{"trigger"})

	ScanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sniper_scan_duration_seconds",
		Help:    "Wall time of a full universe scan.",
		Buckets: prometheus.DefBuckets,
	})

	SignalsGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sniper_signals_total",
		Help: "Signals produced by the scoring engine, labelled by action.",
	}, []string{"action"})

	TickersSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sniper_tickers_skipped_total",
		Help: "Tickers excluded from a scan, labelled by skip reason.",
	}, []string{"reason"})

	SellSignals = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sniper_sell_signals_total",
		Help: "Exit recommendations from the position guardian, labelled by action.",
	}, []string{"action"})

	ScanErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sniper_scan_errors_total",
		Help: "Scheduled runs that failed outright.",
	})

	NotifyErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sniper_notify_errors_total",
		Help: "Notification deliveries that exhausted their retries.",
	})
)

// Handler returns the /metrics endpoint handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
