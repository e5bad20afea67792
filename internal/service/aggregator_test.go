package service

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/trade-board/internal/models"
	"github.com/trade-board/internal/symbols"
)

var testWindow = models.Window{
	Start: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
	End:   time.Date(2026, 8, 31, 23, 59, 59, 0, time.UTC),
}

func ts(day, hour, min int) time.Time {
	return time.Date(2026, 8, day, hour, min, 0, 0, time.UTC)
}

func rawTrade(symbol string, size float64, entry, exit time.Time, pnl, fees float64) models.RawTrade {
	return models.RawTrade{
		SymbolID:     symbol,
		PositionSize: size,
		EntryPrice:   100,
		ExitPrice:    101,
		EntryTime:    entry,
		ExitTime:     exit,
		PnL:          pnl,
		Fees:         fees,
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestAggregator_SingleTrade(t *testing.T) {
	agg := NewAggregator(symbols.Default())

	raw := []models.RawTrade{
		rawTrade("F.US.EP", -2, ts(5, 9, 0), ts(5, 9, 30), 100, 4),
	}

	trades := agg.Aggregate(context.Background(), raw, testWindow)
	if len(trades) != 1 {
		t.Fatalf("expected 1 logical trade, got %d", len(trades))
	}

	trade := trades[0]
	if trade.Symbol != "es" {
		t.Errorf("expected symbol es, got %s", trade.Symbol)
	}
	if trade.Position != 2 {
		t.Errorf("expected position 2 (sign inverted), got %v", trade.Position)
	}
	if trade.PnL != 96 {
		t.Errorf("expected pnl 96 (100 - 4 fees), got %v", trade.PnL)
	}
	if trade.Count != 1 {
		t.Errorf("expected count 1, got %d", trade.Count)
	}
}

func TestAggregator_MicroContractMultiplier(t *testing.T) {
	agg := NewAggregator(symbols.Default())

	// A micro ES short of 20 contracts reports as a long of 2 full-size
	raw := []models.RawTrade{
		rawTrade("F.US.MES", -20, ts(5, 9, 0), ts(5, 9, 30), 50, 2),
	}

	trades := agg.Aggregate(context.Background(), raw, testWindow)
	if len(trades) != 1 {
		t.Fatalf("expected 1 logical trade, got %d", len(trades))
	}
	if trades[0].Symbol != "es" {
		t.Errorf("expected symbol es, got %s", trades[0].Symbol)
	}
	if !almostEqual(trades[0].Position, 2) {
		t.Errorf("expected position 2, got %v", trades[0].Position)
	}
}

func TestAggregator_MergeOverlappingFills(t *testing.T) {
	agg := NewAggregator(symbols.Default())

	first := rawTrade("F.US.EP", -1, ts(5, 9, 0), ts(5, 10, 0), 100, 0)
	second := rawTrade("F.US.EP", -1, ts(5, 9, 30), ts(5, 9, 45), 50, 0)
	second.EntryPrice = 110
	second.ExitPrice = 111

	trades := agg.Aggregate(context.Background(), []models.RawTrade{first, second}, testWindow)
	if len(trades) != 1 {
		t.Fatalf("expected fills to merge into 1 logical trade, got %d", len(trades))
	}

	trade := trades[0]
	if trade.Count != 2 {
		t.Errorf("expected count 2, got %d", trade.Count)
	}
	if !almostEqual(trade.Position, 2) {
		t.Errorf("expected summed position 2, got %v", trade.Position)
	}
	if !almostEqual(trade.PnL, 150) {
		t.Errorf("expected summed pnl 150, got %v", trade.PnL)
	}
	// Weighted by the pre-merge count: (100*1 + 110) / 2
	if !almostEqual(trade.EntryPrice, 105) {
		t.Errorf("expected weighted entry price 105, got %v", trade.EntryPrice)
	}
	if !almostEqual(trade.ExitPrice, 106) {
		t.Errorf("expected weighted exit price 106, got %v", trade.ExitPrice)
	}
	// Range widens to cover both fills
	if !trade.StartDate.Equal(ts(5, 9, 0)) {
		t.Errorf("expected start %v, got %v", ts(5, 9, 0), trade.StartDate)
	}
	if !trade.EndDate.Equal(ts(5, 10, 0)) {
		t.Errorf("expected end %v, got %v", ts(5, 10, 0), trade.EndDate)
	}
}

func TestAggregator_NoMergeAfterGap(t *testing.T) {
	agg := NewAggregator(symbols.Default())

	raw := []models.RawTrade{
		rawTrade("F.US.EP", -1, ts(5, 9, 0), ts(5, 9, 30), 100, 0),
		// Same symbol but entry after the open trade closed
		rawTrade("F.US.EP", -1, ts(5, 10, 0), ts(5, 10, 30), 50, 0),
	}

	trades := agg.Aggregate(context.Background(), raw, testWindow)
	if len(trades) != 2 {
		t.Fatalf("expected 2 logical trades, got %d", len(trades))
	}
}

func TestAggregator_NoMergeAcrossSymbols(t *testing.T) {
	agg := NewAggregator(symbols.Default())

	raw := []models.RawTrade{
		rawTrade("F.US.EP", -1, ts(5, 9, 0), ts(5, 10, 0), 100, 0),
		rawTrade("F.US.ENQ", -1, ts(5, 9, 30), ts(5, 9, 45), 50, 0),
	}

	trades := agg.Aggregate(context.Background(), raw, testWindow)
	if len(trades) != 2 {
		t.Fatalf("expected symbol change to seal the open trade, got %d trades", len(trades))
	}
	if trades[0].Symbol != "es" || trades[1].Symbol != "nq" {
		t.Errorf("unexpected symbols: %s, %s", trades[0].Symbol, trades[1].Symbol)
	}
}

func TestAggregator_SealedTradeNeverReopens(t *testing.T) {
	agg := NewAggregator(symbols.Default())

	raw := []models.RawTrade{
		rawTrade("F.US.EP", -1, ts(5, 9, 0), ts(5, 10, 0), 100, 0),
		rawTrade("F.US.ENQ", -1, ts(5, 9, 10), ts(5, 9, 20), 10, 0),
		// Would overlap the first ES trade, but that trade is sealed
		rawTrade("F.US.EP", -1, ts(5, 9, 30), ts(5, 9, 45), 50, 0),
	}

	trades := agg.Aggregate(context.Background(), raw, testWindow)
	if len(trades) != 3 {
		t.Fatalf("expected 3 logical trades (no reopening), got %d", len(trades))
	}
}

func TestAggregator_WindowFilter(t *testing.T) {
	agg := NewAggregator(symbols.Default())

	raw := []models.RawTrade{
		// Entry before the window start
		rawTrade("F.US.EP", -1, time.Date(2026, 7, 31, 23, 0, 0, 0, time.UTC), ts(1, 1, 0), 100, 0),
		// Exit after the window end
		rawTrade("F.US.EP", -1, ts(31, 23, 0), time.Date(2026, 9, 1, 1, 0, 0, 0, time.UTC), 100, 0),
		// Fully inside
		rawTrade("F.US.EP", -1, ts(5, 9, 0), ts(5, 9, 30), 100, 0),
	}

	trades := agg.Aggregate(context.Background(), raw, testWindow)
	if len(trades) != 1 {
		t.Fatalf("expected only the in-window fill, got %d trades", len(trades))
	}
}

func TestAggregator_SkipsMalformedTrades(t *testing.T) {
	agg := NewAggregator(symbols.Default())

	zeroSize := rawTrade("F.US.EP", 0, ts(5, 9, 0), ts(5, 9, 30), 100, 0)
	zeroTime := rawTrade("F.US.EP", -1, time.Time{}, ts(5, 9, 30), 100, 0)
	valid := rawTrade("F.US.EP", -1, ts(5, 9, 0), ts(5, 9, 30), 100, 0)

	trades := agg.Aggregate(context.Background(), []models.RawTrade{zeroSize, zeroTime, valid}, testWindow)
	if len(trades) != 1 {
		t.Fatalf("expected malformed fills to be skipped, got %d trades", len(trades))
	}
}

func TestAggregator_UnmappedSymbolPassesThrough(t *testing.T) {
	agg := NewAggregator(symbols.Default())

	raw := []models.RawTrade{
		rawTrade("F.US.ZZZ", -3, ts(5, 9, 0), ts(5, 9, 30), 10, 0),
	}

	trades := agg.Aggregate(context.Background(), raw, testWindow)
	if len(trades) != 1 {
		t.Fatalf("expected 1 logical trade, got %d", len(trades))
	}
	if trades[0].Symbol != "F.US.ZZZ" {
		t.Errorf("expected raw symbol passthrough, got %s", trades[0].Symbol)
	}
	if !almostEqual(trades[0].Position, 3) {
		t.Errorf("expected multiplier 1 for unmapped symbol, got position %v", trades[0].Position)
	}
}

func TestTradeBuilder_MergesAcrossShares(t *testing.T) {
	agg := NewAggregator(symbols.Default())
	builder := NewTradeBuilder("alice")

	// First share ends with an open ES trade
	agg.Ingest(context.Background(), builder, []models.RawTrade{
		rawTrade("F.US.EP", -1, ts(5, 9, 0), ts(5, 10, 0), 100, 0),
	}, testWindow)

	// Second share starts with an overlapping ES fill
	agg.Ingest(context.Background(), builder, []models.RawTrade{
		rawTrade("F.US.EP", -1, ts(5, 9, 30), ts(5, 9, 45), 50, 0),
	}, testWindow)

	trades := builder.Trades()
	if len(trades) != 1 {
		t.Fatalf("expected cross-share merge into 1 logical trade, got %d", len(trades))
	}
	if trades[0].Count != 2 {
		t.Errorf("expected count 2, got %d", trades[0].Count)
	}
}

func TestTradeBuilder_TradesReturnsCopy(t *testing.T) {
	agg := NewAggregator(symbols.Default())
	builder := NewTradeBuilder("alice")

	agg.Ingest(context.Background(), builder, []models.RawTrade{
		rawTrade("F.US.EP", -1, ts(5, 9, 0), ts(5, 10, 0), 100, 0),
	}, testWindow)

	first := builder.Trades()
	first[0].PnL = -999

	second := builder.Trades()
	if second[0].PnL != 100 {
		t.Errorf("mutating the returned slice leaked into the builder: pnl %v", second[0].PnL)
	}
}
