package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/trade-board/internal/models"
	"github.com/trade-board/internal/types"
	"golang.org/x/time/rate"
)

// TradeifyClient fetches per-account trade history from the Tradeify user
// API. Tradeify runs the same ProjectX backend as Topstep, but its payload is
// decoded separately so venue drift stays contained here.
type TradeifyClient struct {
	platformClient
}

// tradeifyTrade is the raw trade record as the Tradeify API delivers it.
type tradeifyTrade struct {
	SymbolID     string    `json:"symbolId"`
	PositionSize float64   `json:"positionSize"`
	EntryPrice   float64   `json:"entryPrice"`
	ExitPrice    float64   `json:"exitPrice"`
	CreatedAt    time.Time `json:"createdAt"`
	ExitedAt     time.Time `json:"exitedAt"`
	PnL          float64   `json:"pnL"`
	Fees         float64   `json:"fees"`
}

// NewTradeifyClient creates a new Tradeify API client.
func NewTradeifyClient(baseURL string, timeout time.Duration, limiter *rate.Limiter) *TradeifyClient {
	return &TradeifyClient{platformClient: newPlatformClient(baseURL, timeout, limiter)}
}

// Platform identifies this client's venue.
func (c *TradeifyClient) Platform() types.PlatformID {
	return types.PlatformTradeify
}

// FetchTradeRange fetches and normalizes the account's trades in the window.
func (c *TradeifyClient) FetchTradeRange(ctx context.Context, accountID int64, start, end time.Time) ([]models.RawTrade, error) {
	body, err := c.postTradeRange(ctx, accountID, start, end)
	if err != nil {
		return nil, err
	}

	var payload []tradeifyTrade
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse trade range response: %w", err)
	}

	trades := make([]models.RawTrade, 0, len(payload))
	for _, t := range payload {
		trades = append(trades, models.RawTrade{
			SymbolID:     t.SymbolID,
			PositionSize: t.PositionSize,
			EntryPrice:   t.EntryPrice,
			ExitPrice:    t.ExitPrice,
			EntryTime:    t.CreatedAt,
			ExitTime:     t.ExitedAt,
			PnL:          t.PnL,
			Fees:         t.Fees,
			Platform:     types.PlatformTradeify,
		})
	}

	return trades, nil
}
