package models

import (
	"time"

	"github.com/trade-board/internal/types"
)

// RawTrade is the canonical shape of a single fill delivered by a platform
// trade API. Venue-specific payloads are converted into this shape by the
// platform clients before any aggregation happens; nothing downstream knows
// about venue field names.
type RawTrade struct {
	SymbolID     string           `json:"symbolId"`
	PositionSize float64          `json:"positionSize"`
	EntryPrice   float64          `json:"entryPrice"`
	ExitPrice    float64          `json:"exitPrice"`
	EntryTime    time.Time        `json:"createdAt"`
	ExitTime     time.Time        `json:"exitedAt"`
	PnL          float64          `json:"pnL"`
	Fees         float64          `json:"fees"`
	Platform     types.PlatformID `json:"platform,omitempty"`
}

// Valid reports whether the record carries enough data to aggregate.
// Upstream APIs guarantee nothing, so zero position sizes and zero
// timestamps are rejected at the door.
func (t *RawTrade) Valid() bool {
	if t.PositionSize == 0 {
		return false
	}
	if t.EntryTime.IsZero() || t.ExitTime.IsZero() {
		return false
	}
	return true
}

// LogicalTrade is one or more raw fills merged into a single reported
// position event for a user and symbol. Built exclusively by the aggregator.
type LogicalTrade struct {
	Symbol     string    `json:"symbol"`
	Position   float64   `json:"position"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	EntryPrice float64   `json:"entry_price"`
	ExitPrice  float64   `json:"exit_price"`
	PnL        float64   `json:"pnl"`
	Count      int       `json:"count"`
}

// TradeRow is one row of the per-(user, trade) table handed to the
// presentation layer.
type TradeRow struct {
	User string `json:"user"`
	LogicalTrade
}
