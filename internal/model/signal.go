package model

import "time"

// Action is the discrete buy-side recommendation.
type Action string

const (
	ActionBuy    Action = "BUY"
	ActionWait   Action = "WAIT"
	ActionIgnore Action = "IGNORE"
)

// Score is the composite buy score for one instrument. The score is the raw
// additive value and may be negative; display layers may clamp to [0,100].
type Score struct {
	Ticker      string    `json:"ticker"`
	Date        time.Time `json:"date"`
	Score       int       `json:"score"`
	Action      Action    `json:"action"`
	Reasons     []string  `json:"reasons"`
	Close       float64   `json:"close"`
	Volume      int64     `json:"volume"`
	RVOL        float64   `json:"rvol"`
	AvgVolume20 int64     `json:"avg_volume_20"`
	PriceChange float64   `json:"price_change"`
	SMA200      float64   `json:"sma_200"`
}

// SkipReason classifies why an instrument produced no Score in a scan.
type SkipReason string

const (
	SkipNoData   SkipReason = "NO_DATA"
	SkipStaleBar SkipReason = "STALE_BAR"
	SkipFiltered SkipReason = "FILTERED"
	SkipError    SkipReason = "ERROR"
)

// Skip records a per-instrument exclusion from a scan run.
type Skip struct {
	Ticker string
	Reason SkipReason
	Detail string
}

// ScanResult aggregates one universe scan: scored instruments sorted by score
// descending, plus every exclusion with its reason.
type ScanResult struct {
	AsOf    time.Time
	Scores  []Score
	Skipped []Skip
}
