package model

import (
	"errors"
	"time"
)

// Position is one open holding. HighestSeen is initialized to BuyPrice at
// creation and only ever ratchets upward. Positions are created and removed by
// explicit human action; the engine never deletes one.
type Position struct {
	Ticker       string    `json:"ticker"`
	BuyPrice     float64   `json:"buy_price"`
	Quantity     int64     `json:"quantity"`
	HighestSeen  float64   `json:"highest_seen"`
	PurchaseDate time.Time `json:"purchase_date"`
	Notes        string    `json:"notes,omitempty"`
}

// ErrInvalidPosition rejects non-positive buy price or quantity at creation.
var ErrInvalidPosition = errors.New("position requires positive buy price and quantity")

// Validate enforces the creation invariants.
func (p Position) Validate() error {
	if p.Ticker == "" || p.BuyPrice <= 0 || p.Quantity <= 0 {
		return ErrInvalidPosition
	}
	return nil
}

// DaysHeld returns whole calendar days between purchase and the evaluation date.
func (p Position) DaysHeld(asOf time.Time) int {
	from := time.Date(p.PurchaseDate.Year(), p.PurchaseDate.Month(), p.PurchaseDate.Day(), 0, 0, 0, 0, time.UTC)
	to := time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / 24)
}

// ExitAction is the sell-side recommendation for a held position.
type ExitAction string

const (
	ExitHold       ExitAction = "HOLD"
	ExitStopLoss   ExitAction = "STOP_LOSS"
	ExitTakeProfit ExitAction = "TAKE_PROFIT"
	ExitClimax     ExitAction = "CLIMAX"
	ExitZombie     ExitAction = "ZOMBIE_EXIT"
)

// Urgency ranks how quickly a human should act on an exit recommendation.
type Urgency string

const (
	UrgencyLow      Urgency = "LOW"
	UrgencyMedium   Urgency = "MEDIUM"
	UrgencyHigh     Urgency = "HIGH"
	UrgencyCritical Urgency = "CRITICAL"
)

// GuardianResult is one position's exit evaluation. Advisory only: selling is
// an external, human-executed action.
type GuardianResult struct {
	Ticker        string     `json:"ticker"`
	Action        ExitAction `json:"action"`
	Urgency       Urgency    `json:"urgency"`
	Reason        string     `json:"reason,omitempty"`
	BuyPrice      float64    `json:"buy_price"`
	CurrentPrice  float64    `json:"current_price"`
	HighestSeen   float64    `json:"highest_seen"`
	StopLossPrice float64    `json:"stop_loss_price"`
	TrailPrice    float64    `json:"trail_price"`
	ProfitPct     float64    `json:"profit_pct"`
	DaysHeld      int        `json:"days_held"`
	RVOL          float64    `json:"rvol"`
}
