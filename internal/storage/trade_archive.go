package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/trade-board/internal/models"
	"github.com/trade-board/internal/retry"
)

// TradeArchive appends every raw trade fetched from the platforms into
// ClickHouse. The archive is write-only from the pipeline's point of view;
// the leaderboard itself is always recomputed from fresh fetches.
type TradeArchive struct {
	db    *ClickHouseDB
	retry *retry.Config
}

// NewTradeArchive creates a trade archive over a ClickHouse connection.
func NewTradeArchive(db *ClickHouseDB) *TradeArchive {
	return &TradeArchive{
		db:    db,
		retry: retry.DefaultConfig(),
	}
}

// Append writes a batch of raw trades for one share. Inserts are retried
// because the archive sits off the hot path and a dropped batch is not
// recoverable later.
func (a *TradeArchive) Append(ctx context.Context, board, user string, accountID int64, trades []models.RawTrade) error {
	if len(trades) == 0 {
		return nil
	}

	fetchedAt := time.Now().UTC()

	return retry.WithBackoff(ctx, a.retry, func(ctx context.Context, _ int) error {
		batch, err := a.db.Conn().PrepareBatch(ctx, `
			INSERT INTO raw_trades (
				board, user, account_id, platform, symbol_id,
				position, entry_price, exit_price, entry_time, exit_time,
				pnl, fees, fetched_at
			)`)
		if err != nil {
			return fmt.Errorf("failed to prepare batch: %w", err)
		}

		for _, t := range trades {
			err := batch.Append(
				board, user, accountID, string(t.Platform), t.SymbolID,
				t.PositionSize, t.EntryPrice, t.ExitPrice, t.EntryTime.UTC(), t.ExitTime.UTC(),
				t.PnL, t.Fees, fetchedAt,
			)
			if err != nil {
				return fmt.Errorf("failed to append row: %w", err)
			}
		}

		if err := batch.Send(); err != nil {
			return fmt.Errorf("failed to send batch: %w", err)
		}

		return nil
	})
}
