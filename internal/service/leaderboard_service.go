// Package service implements the trade aggregation pipeline: raw fills in,
// logical trades and leaderboard statistics out.
package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/trade-board/internal/adapter"
	"github.com/trade-board/internal/logging"
	"github.com/trade-board/internal/models"
)

// TradeArchiver appends fetched raw trades to long-term storage.
type TradeArchiver interface {
	Append(ctx context.Context, board, user string, accountID int64, trades []models.RawTrade) error
}

// SnapshotSaver persists a computed leaderboard.
type SnapshotSaver interface {
	Save(ctx context.Context, snapshot *models.StatsSnapshot) error
}

// LeaderboardResult is one full computation for a board: the ranked stats
// table and the flattened trade table.
type LeaderboardResult struct {
	Board   string            `json:"board"`
	TakenAt time.Time         `json:"taken_at"`
	Stats   []models.StatsRow `json:"stats"`
	Trades  []models.TradeRow `json:"trades"`
}

// LeaderboardService orchestrates a board refresh: it fetches every share's
// raw trades, aggregates them per user, computes statistics and caches the
// result for the read endpoints.
//
// Users are processed concurrently under a bounded semaphore; the shares of
// one user stay sequential in roster order, so the aggregation output is
// identical to a fully sequential run.
type LeaderboardService struct {
	provider   *adapter.Provider
	aggregator *Aggregator
	archive    TradeArchiver
	snapshots  SnapshotSaver
	workers    int

	mu      sync.RWMutex
	results map[string]*LeaderboardResult
}

// NewLeaderboardService creates a leaderboard service. archive and snapshots
// may be nil; both are best-effort sidecars of the computation.
func NewLeaderboardService(provider *adapter.Provider, aggregator *Aggregator, archive TradeArchiver, snapshots SnapshotSaver, workers int) *LeaderboardService {
	if workers <= 0 {
		workers = 4
	}
	return &LeaderboardService{
		provider:   provider,
		aggregator: aggregator,
		archive:    archive,
		snapshots:  snapshots,
		workers:    workers,
		results:    make(map[string]*LeaderboardResult),
	}
}

// Latest returns the last computed result for a board, or nil when the board
// has not been refreshed yet.
func (s *LeaderboardService) Latest(board string) *LeaderboardResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.results[board]
}

// Refresh recomputes the board from fresh platform fetches and replaces the
// cached result. A share whose fetch fails is skipped with a log line; the
// user's remaining shares still count. There is no retry on platform fetches.
func (s *LeaderboardService) Refresh(ctx context.Context, board *models.Board) (*LeaderboardResult, error) {
	logger := logging.FromContext(ctx).WithField("board", board.Name)
	start := time.Now()

	users := board.Users()
	builders := make([]*TradeBuilder, len(users))
	accountTypes := make([]string, len(users))

	sem := make(chan struct{}, s.workers)
	var wg sync.WaitGroup

	for i, user := range users {
		wg.Add(1)
		go func(i int, user string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			builder := NewTradeBuilder(user)
			shares := board.Shares[user]
			for j := range shares {
				s.ingestShare(ctx, board, builder, &shares[j])
			}
			builders[i] = builder
			accountTypes[i] = accountTypeLetters(shares)
		}(i, user)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &LeaderboardResult{
		Board:   board.Name,
		TakenAt: time.Now().UTC(),
	}

	for i, builder := range builders {
		trades := builder.Trades()
		stats := ComputeStats(trades)

		result.Stats = append(result.Stats, models.StatsRow{
			User:         builder.User(),
			AccountTypes: accountTypes[i],
			UserStats:    stats,
		})
		for _, trade := range trades {
			result.Trades = append(result.Trades, models.TradeRow{
				User:         builder.User(),
				LogicalTrade: trade,
			})
		}
	}

	// Best edge first; ties stay in roster order.
	sort.SliceStable(result.Stats, func(i, j int) bool {
		return result.Stats[i].Edge > result.Stats[j].Edge
	})
	// Newest trades first.
	sort.SliceStable(result.Trades, func(i, j int) bool {
		return result.Trades[i].StartDate.After(result.Trades[j].StartDate)
	})

	s.mu.Lock()
	s.results[board.Name] = result
	s.mu.Unlock()

	if s.snapshots != nil {
		snapshot := &models.StatsSnapshot{
			Board:   board.Name,
			TakenAt: result.TakenAt,
			Rows:    result.Stats,
		}
		if err := s.snapshots.Save(ctx, snapshot); err != nil {
			logger.WithError(err).Error("Failed to persist leaderboard snapshot")
		}
	}

	logger.WithFields(map[string]interface{}{
		"users":    len(users),
		"trades":   len(result.Trades),
		"duration": time.Since(start).String(),
	}).Info("Board refresh complete")

	return result, nil
}

// ingestShare fetches one share's raw trades and folds them into the user's
// builder. Fetch failures skip the share; archive failures only log.
func (s *LeaderboardService) ingestShare(ctx context.Context, board *models.Board, builder *TradeBuilder, share *models.Share) {
	logger := logging.FromContext(ctx).WithFields(map[string]interface{}{
		"board":     board.Name,
		"user":      builder.User(),
		"accountId": share.AccountID,
		"platform":  string(share.PlatformID()),
	})

	fetcher, err := s.provider.Fetcher(share.PlatformID())
	if err != nil {
		logger.WithError(err).Error("Skipping share, no platform client")
		return
	}

	window := board.EffectiveWindow(share)
	raw, err := fetcher.FetchTradeRange(ctx, share.AccountID, window.Start, window.End)
	if err != nil {
		logger.WithError(err).Warn("Skipping share, trade fetch failed")
		return
	}

	if s.archive != nil && len(raw) > 0 {
		if err := s.archive.Append(ctx, board.Name, builder.User(), share.AccountID, raw); err != nil {
			logger.WithError(err).Error("Failed to archive raw trades")
		}
	}

	s.aggregator.Ingest(ctx, builder, raw, window)
}

// accountTypeLetters renders the Type column: the first letter of each
// share's account type, uppercased, in share order.
func accountTypeLetters(shares []models.Share) string {
	var sb strings.Builder
	for _, share := range shares {
		for _, r := range share.AccountType {
			sb.WriteRune(unicode.ToUpper(r))
			break
		}
	}
	return sb.String()
}
