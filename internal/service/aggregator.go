package service

import (
	"context"

	"github.com/trade-board/internal/logging"
	"github.com/trade-board/internal/models"
	"github.com/trade-board/internal/symbols"
)

// Aggregator consolidates raw per-account fills into logical trades. It is
// invoked once per (user, share); per-user results are concatenated in share
// order with delivery order preserved inside each share.
type Aggregator struct {
	symbolMap symbols.Map
}

// NewAggregator creates an aggregator over the given symbol map.
func NewAggregator(symbolMap symbols.Map) *Aggregator {
	return &Aggregator{symbolMap: symbolMap}
}

// TradeBuilder accumulates one user's logical trades across account shares.
// The builder is threaded through the aggregation explicitly; there is no
// ambient per-user state anywhere else.
//
// The merge decision only ever consults the single open trade. Once a fill
// starts a new symbol/time segment the open trade is sealed and can never be
// mutated again, even if a later same-symbol fill would have overlapped it.
// That O(1) lookback is a deliberate trade-off carried over from the
// dashboard, not an optimization to "fix".
type TradeBuilder struct {
	user   string
	sealed []models.LogicalTrade
	open   *models.LogicalTrade
}

// NewTradeBuilder creates an empty builder for a user.
func NewTradeBuilder(user string) *TradeBuilder {
	return &TradeBuilder{user: user}
}

// User returns the user this builder belongs to.
func (b *TradeBuilder) User() string {
	return b.user
}

// Trades returns the user's logical trades in append order, including the
// still-open one. The returned slice is a copy; the builder stays usable.
func (b *TradeBuilder) Trades() []models.LogicalTrade {
	out := make([]models.LogicalTrade, 0, len(b.sealed)+1)
	out = append(out, b.sealed...)
	if b.open != nil {
		out = append(out, *b.open)
	}
	return out
}

// Ingest applies one share's raw trades to the builder in delivery order,
// filtered to the effective window.
//
// Window filtering is authoritative and silent: a fill entering before the
// window start or exiting after the window end contributes nothing.
// Malformed records (zero position size, zero timestamps) are logged and
// skipped; the upstream APIs guarantee nothing about their payloads.
func (a *Aggregator) Ingest(ctx context.Context, b *TradeBuilder, rawTrades []models.RawTrade, window models.Window) {
	logger := logging.FromContext(ctx)

	for _, raw := range rawTrades {
		if !raw.Valid() {
			logger.WithFields(map[string]interface{}{
				"user":   b.user,
				"symbol": raw.SymbolID,
			}).Warn("Skipping malformed raw trade")
			continue
		}

		if raw.EntryTime.Before(window.Start) {
			continue
		}
		if raw.ExitTime.After(window.End) {
			continue
		}

		symbol, multiplier := a.symbolMap.Normalize(ctx, raw.SymbolID)

		// The dashboard reports the counter-position: sign inverted,
		// scaled by the contract multiplier.
		position := -raw.PositionSize * multiplier
		pnl := raw.PnL - raw.Fees

		if b.open != nil && b.open.Symbol == symbol && !raw.EntryTime.After(b.open.EndDate) {
			a.merge(b.open, &raw, position, pnl)
			continue
		}

		if b.open != nil {
			b.sealed = append(b.sealed, *b.open)
		}
		b.open = &models.LogicalTrade{
			Symbol:     symbol,
			Position:   position,
			StartDate:  raw.EntryTime,
			EndDate:    raw.ExitTime,
			EntryPrice: raw.EntryPrice,
			ExitPrice:  raw.ExitPrice,
			PnL:        pnl,
			Count:      1,
		}
	}
}

// merge folds a fill into the open logical trade. Prices are weighted by the
// pre-merge fill count over count+1; P&L and position are summed, never
// averaged; the date range widens to cover both fills.
func (a *Aggregator) merge(open *models.LogicalTrade, raw *models.RawTrade, position, pnl float64) {
	count := float64(open.Count)

	open.Position += position
	if raw.EntryTime.Before(open.StartDate) {
		open.StartDate = raw.EntryTime
	}
	if raw.ExitTime.After(open.EndDate) {
		open.EndDate = raw.ExitTime
	}
	open.EntryPrice = (open.EntryPrice*count + raw.EntryPrice) / (count + 1)
	open.ExitPrice = (open.ExitPrice*count + raw.ExitPrice) / (count + 1)
	open.PnL += pnl
	open.Count++
}

// Aggregate consolidates a single raw trade sequence into logical trades.
// Convenience wrapper over a fresh builder, matching the per-share contract.
func (a *Aggregator) Aggregate(ctx context.Context, rawTrades []models.RawTrade, window models.Window) []models.LogicalTrade {
	b := NewTradeBuilder("")
	a.Ingest(ctx, b, rawTrades, window)
	return b.Trades()
}
