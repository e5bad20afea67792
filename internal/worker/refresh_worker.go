// Package worker provides the background board refresh loop.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/trade-board/internal/logging"
	"github.com/trade-board/internal/models"
	"github.com/trade-board/internal/service"
)

// BoardSource loads the boards to refresh.
type BoardSource interface {
	Get(name string) (*models.Board, error)
}

// Refresher recomputes a board.
type Refresher interface {
	Refresh(ctx context.Context, board *models.Board) (*service.LeaderboardResult, error)
}

// RefreshWorker periodically recomputes a set of boards so the read endpoints
// always serve a reasonably fresh leaderboard without blocking on platform
// fetches.
type RefreshWorker struct {
	boards      BoardSource
	leaderboard Refresher
	boardNames  []string
	interval    time.Duration
	timeout     time.Duration

	running bool
	mu      sync.Mutex
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// RefreshWorkerConfig holds configuration for a refresh worker
type RefreshWorkerConfig struct {
	Boards      BoardSource
	Leaderboard Refresher
	BoardNames  []string      // boards to keep fresh
	Interval    time.Duration // refresh cadence (default: 5 minutes)
	Timeout     time.Duration // budget for one full cycle (default: 2 minutes)
}

// NewRefreshWorker creates a new refresh worker
func NewRefreshWorker(cfg *RefreshWorkerConfig) (*RefreshWorker, error) {
	if cfg.Boards == nil {
		return nil, fmt.Errorf("board source cannot be nil")
	}
	if cfg.Leaderboard == nil {
		return nil, fmt.Errorf("leaderboard service cannot be nil")
	}
	if len(cfg.BoardNames) == 0 {
		return nil, fmt.Errorf("at least one board name is required")
	}

	interval := cfg.Interval
	if interval == 0 {
		interval = 5 * time.Minute
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 2 * time.Minute
	}

	return &RefreshWorker{
		boards:      cfg.Boards,
		leaderboard: cfg.Leaderboard,
		boardNames:  cfg.BoardNames,
		interval:    interval,
		timeout:     timeout,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// Start begins the refresh loop. The first cycle runs immediately so the
// server does not come up with an empty leaderboard.
func (w *RefreshWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("refresh worker is already running")
	}
	w.running = true
	w.mu.Unlock()

	logging.WithFields(map[string]interface{}{
		"boards":   w.boardNames,
		"interval": w.interval.String(),
	}).Info("Starting refresh worker")

	go w.loop(ctx)

	return nil
}

// Stop gracefully stops the refresh worker.
func (w *RefreshWorker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return fmt.Errorf("refresh worker is not running")
	}
	w.mu.Unlock()

	close(w.stopCh)

	select {
	case <-w.doneCh:
		logging.Info("Refresh worker stopped gracefully")
	case <-ctx.Done():
		logging.Warn("Refresh worker stop timed out")
		return ctx.Err()
	}

	w.mu.Lock()
	w.running = false
	w.mu.Unlock()

	return nil
}

// loop is the main refresh loop that runs in a goroutine
func (w *RefreshWorker) loop(ctx context.Context) {
	defer close(w.doneCh)

	w.refreshAll(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.refreshAll(ctx)
		case <-w.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

// refreshAll runs one refresh cycle over every configured board. A board
// that fails to load or refresh is logged and skipped; the cycle continues.
func (w *RefreshWorker) refreshAll(ctx context.Context) {
	cycleCtx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	for _, name := range w.boardNames {
		logger := logging.WithField("board", name)

		board, err := w.boards.Get(name)
		if err != nil {
			logger.WithError(err).Error("Refresh cycle: failed to load board")
			continue
		}

		if _, err := w.leaderboard.Refresh(cycleCtx, board); err != nil {
			logger.WithError(err).Error("Refresh cycle: board refresh failed")
		}

		if cycleCtx.Err() != nil {
			logger.Warn("Refresh cycle ran out of time")
			return
		}
	}
}
