package service

import (
	"context"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/trade-board/internal/models"
	"github.com/trade-board/internal/symbols"
)

// fillSpec is the generator shape for a raw fill. Integer fields keep the
// generated floats well-behaved.
type fillSpec struct {
	EntryOffsetMin int // minutes relative to the window start, may be negative
	DurationMin    int
	Size           int
	PnLCents       int
	FeesCents      int
	SymbolIdx      int
}

var pbtSymbols = []string{"F.US.EP", "F.US.MES", "F.US.ENQ", "F.US.GCE", "F.US.CLE"}

func genFillSpec() gopter.Gen {
	return gen.Struct(reflect.TypeOf(fillSpec{}), map[string]gopter.Gen{
		"EntryOffsetMin": gen.IntRange(-2*1440, 32*1440),
		"DurationMin":    gen.IntRange(1, 12*60),
		"Size":           gen.IntRange(-5, 5),
		"PnLCents":       gen.IntRange(-500_00, 500_00),
		"FeesCents":      gen.IntRange(0, 20_00),
		"SymbolIdx":      gen.IntRange(0, len(pbtSymbols)-1),
	})
}

func (f fillSpec) toRawTrade(window models.Window) models.RawTrade {
	entry := window.Start.Add(time.Duration(f.EntryOffsetMin) * time.Minute)
	return models.RawTrade{
		SymbolID:     pbtSymbols[f.SymbolIdx],
		PositionSize: float64(f.Size),
		EntryPrice:   100,
		ExitPrice:    101,
		EntryTime:    entry,
		ExitTime:     entry.Add(time.Duration(f.DurationMin) * time.Minute),
		PnL:          float64(f.PnLCents) / 100,
		Fees:         float64(f.FeesCents) / 100,
	}
}

func pbtWindow() models.Window {
	return models.Window{
		Start: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC),
	}
}

// countedFills returns the fills the aggregator should accept: valid and
// fully inside the window.
func countedFills(specs []fillSpec, window models.Window) []models.RawTrade {
	var fills []models.RawTrade
	for _, spec := range specs {
		raw := spec.toRawTrade(window)
		if !raw.Valid() {
			continue
		}
		if raw.EntryTime.Before(window.Start) || raw.ExitTime.After(window.End) {
			continue
		}
		fills = append(fills, raw)
	}
	return fills
}

func TestAggregatorProperties(t *testing.T) {
	window := pbtWindow()
	agg := NewAggregator(symbols.Default())

	properties := gopter.NewProperties(nil)

	properties.Property("fill counts are conserved", prop.ForAll(
		func(specs []fillSpec) bool {
			raw := make([]models.RawTrade, len(specs))
			for i, spec := range specs {
				raw[i] = spec.toRawTrade(window)
			}

			trades := agg.Aggregate(context.Background(), raw, window)

			total := 0
			for _, trade := range trades {
				total += trade.Count
			}
			return total == len(countedFills(specs, window))
		},
		gen.SliceOf(genFillSpec()),
	))

	properties.Property("pnl is conserved through merging", prop.ForAll(
		func(specs []fillSpec) bool {
			raw := make([]models.RawTrade, len(specs))
			for i, spec := range specs {
				raw[i] = spec.toRawTrade(window)
			}

			trades := agg.Aggregate(context.Background(), raw, window)

			var got float64
			for _, trade := range trades {
				got += trade.PnL
			}
			var want float64
			for _, fill := range countedFills(specs, window) {
				want += fill.PnL - fill.Fees
			}
			return math.Abs(got-want) < 1e-6
		},
		gen.SliceOf(genFillSpec()),
	))

	properties.Property("logical trades stay inside the window", prop.ForAll(
		func(specs []fillSpec) bool {
			raw := make([]models.RawTrade, len(specs))
			for i, spec := range specs {
				raw[i] = spec.toRawTrade(window)
			}

			trades := agg.Aggregate(context.Background(), raw, window)

			for _, trade := range trades {
				if trade.StartDate.Before(window.Start) || trade.EndDate.After(window.End) {
					return false
				}
				if trade.StartDate.After(trade.EndDate) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(genFillSpec()),
	))

	properties.Property("aggregation is deterministic", prop.ForAll(
		func(specs []fillSpec) bool {
			raw := make([]models.RawTrade, len(specs))
			for i, spec := range specs {
				raw[i] = spec.toRawTrade(window)
			}

			first := agg.Aggregate(context.Background(), raw, window)
			second := agg.Aggregate(context.Background(), raw, window)
			return reflect.DeepEqual(first, second)
		},
		gen.SliceOf(genFillSpec()),
	))

	properties.TestingRun(t)
}

func TestStatsProperties(t *testing.T) {
	window := pbtWindow()
	agg := NewAggregator(symbols.Default())

	properties := gopter.NewProperties(nil)

	properties.Property("won and lost partition the trades", prop.ForAll(
		func(specs []fillSpec) bool {
			raw := make([]models.RawTrade, len(specs))
			for i, spec := range specs {
				raw[i] = spec.toRawTrade(window)
			}

			trades := agg.Aggregate(context.Background(), raw, window)
			stats := ComputeStats(trades)

			return stats.Won+stats.Lost == stats.Trades &&
				stats.Trades == len(trades)
		},
		gen.SliceOf(genFillSpec()),
	))

	properties.Property("balance equals total pnl", prop.ForAll(
		func(specs []fillSpec) bool {
			raw := make([]models.RawTrade, len(specs))
			for i, spec := range specs {
				raw[i] = spec.toRawTrade(window)
			}

			trades := agg.Aggregate(context.Background(), raw, window)
			stats := ComputeStats(trades)

			var pnl float64
			for _, trade := range trades {
				pnl += trade.PnL
			}
			return math.Abs(stats.Balance-pnl) < 1e-6
		},
		gen.SliceOf(genFillSpec()),
	))

	properties.Property("ratios never produce NaN or infinity", prop.ForAll(
		func(specs []fillSpec) bool {
			raw := make([]models.RawTrade, len(specs))
			for i, spec := range specs {
				raw[i] = spec.toRawTrade(window)
			}

			trades := agg.Aggregate(context.Background(), raw, window)
			stats := ComputeStats(trades)

			for _, v := range []float64{
				stats.AvgProfit, stats.AvgLoss, stats.WinRate,
				stats.RewardRisk, stats.Edge, stats.Balance, stats.PnLPerTrade,
			} {
				if math.IsNaN(v) || math.IsInf(v, 0) {
					return false
				}
			}
			return stats.WinRate >= 0 && stats.WinRate <= 1
		},
		gen.SliceOf(genFillSpec()),
	))

	properties.TestingRun(t)
}
