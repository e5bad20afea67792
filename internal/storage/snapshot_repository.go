package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/trade-board/internal/models"
)

// SnapshotRepository persists leaderboard computations so past standings can
// be inspected after the boards move on.
type SnapshotRepository struct {
	pool *pgxpool.Pool
}

// NewSnapshotRepository creates a snapshot repository.
func NewSnapshotRepository(db *PostgresDB) *SnapshotRepository {
	return &SnapshotRepository{pool: db.Pool()}
}

// Save stores a snapshot and its rows in one transaction. The generated
// snapshot ID is written back into the model.
func (r *SnapshotRepository) Save(ctx context.Context, snapshot *models.StatsSnapshot) error {
	if snapshot.ID == "" {
		snapshot.ID = uuid.New().String()
	}
	if snapshot.CreatedAt.IsZero() {
		snapshot.CreatedAt = time.Now().UTC()
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	_, err = tx.Exec(ctx, `
		INSERT INTO snapshots (id, board, taken_at, created_at)
		VALUES ($1, $2, $3, $4)`,
		snapshot.ID, snapshot.Board, snapshot.TakenAt, snapshot.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}

	for rank, row := range snapshot.Rows {
		_, err = tx.Exec(ctx, `
			INSERT INTO snapshot_rows (
				snapshot_id, rank, username, account_types,
				trades, won, lost, avg_profit, avg_loss,
				win_rate, reward_risk, edge, balance, pnl_per_trade, maturity_days
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
			snapshot.ID, rank, row.User, row.AccountTypes,
			row.Trades, row.Won, row.Lost, row.AvgProfit, row.AvgLoss,
			row.WinRate, row.RewardRisk, row.Edge, row.Balance, row.PnLPerTrade, row.MaturityDays,
		)
		if err != nil {
			return fmt.Errorf("failed to insert snapshot row: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}

	return nil
}

// ListByBoard returns the snapshots for a board within [from, to], newest
// first, without their rows. Zero bounds mean unbounded.
func (r *SnapshotRepository) ListByBoard(ctx context.Context, board string, from, to time.Time, limit int) ([]models.StatsSnapshot, error) {
	if limit <= 0 {
		limit = 20
	}
	if to.IsZero() {
		to = time.Now().UTC().Add(time.Hour)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, board, taken_at, created_at
		FROM snapshots
		WHERE board = $1 AND taken_at >= $2 AND taken_at <= $3
		ORDER BY taken_at DESC
		LIMIT $4`,
		board, from, to, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []models.StatsSnapshot
	for rows.Next() {
		var s models.StatsSnapshot
		if err := rows.Scan(&s.ID, &s.Board, &s.TakenAt, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		snapshots = append(snapshots, s)
	}

	return snapshots, rows.Err()
}

// Get returns one snapshot with its rows in stored rank order.
func (r *SnapshotRepository) Get(ctx context.Context, id string) (*models.StatsSnapshot, error) {
	var s models.StatsSnapshot
	err := r.pool.QueryRow(ctx, `
		SELECT id, board, taken_at, created_at
		FROM snapshots
		WHERE id = $1`,
		id,
	).Scan(&s.ID, &s.Board, &s.TakenAt, &s.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query snapshot: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT username, account_types,
			trades, won, lost, avg_profit, avg_loss,
			win_rate, reward_risk, edge, balance, pnl_per_trade, maturity_days
		FROM snapshot_rows
		WHERE snapshot_id = $1
		ORDER BY rank`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot rows: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var row models.StatsRow
		err := rows.Scan(
			&row.User, &row.AccountTypes,
			&row.Trades, &row.Won, &row.Lost, &row.AvgProfit, &row.AvgLoss,
			&row.WinRate, &row.RewardRisk, &row.Edge, &row.Balance, &row.PnLPerTrade, &row.MaturityDays,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}
		s.Rows = append(s.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &s, nil
}
