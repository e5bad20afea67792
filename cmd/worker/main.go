// Package main provides a standalone board refresh worker, for deployments
// that separate the read API from the refresh load.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/trade-board/internal/adapter"
	"github.com/trade-board/internal/config"
	"github.com/trade-board/internal/logging"
	"github.com/trade-board/internal/service"
	"github.com/trade-board/internal/storage"
	"github.com/trade-board/internal/symbols"
	"github.com/trade-board/internal/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logging.InitGlobalLogger(
		logging.ParseLogLevel(cfg.Logging.Level),
		logging.ParseLogFormat(cfg.Logging.Format),
	)
	logger := logging.GetGlobalLogger()

	postgres, err := storage.NewPostgresDB(&cfg.Database.Postgres)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to Postgres")
	}
	defer postgres.Close()

	clickhouse, err := storage.NewClickHouseDB(&cfg.Database.ClickHouse)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to ClickHouse")
	}
	defer clickhouse.Close()

	ctx := context.Background()
	if err := clickhouse.EnsureSchema(ctx); err != nil {
		logger.WithError(err).Fatal("Failed to ensure ClickHouse schema")
	}

	symbolMap := symbols.Default()
	if cfg.Symbols.MapFile != "" {
		symbolMap, err = symbols.LoadFile(cfg.Symbols.MapFile)
		if err != nil {
			logger.WithError(err).Fatal("Failed to load symbol map")
		}
	}

	provider := adapter.NewProvider(&cfg.Platforms)
	boardService := service.NewBoardService(storage.NewBoardStore(cfg.Boards.Dir), cfg.Boards.Default)
	aggregator := service.NewAggregator(symbolMap)
	leaderboardService := service.NewLeaderboardService(
		provider,
		aggregator,
		storage.NewTradeArchive(clickhouse),
		storage.NewSnapshotRepository(postgres),
		0,
	)

	refreshWorker, err := worker.NewRefreshWorker(&worker.RefreshWorkerConfig{
		Boards:      boardService,
		Leaderboard: leaderboardService,
		BoardNames:  []string{cfg.Boards.Default},
		Interval:    cfg.Boards.RefreshInterval,
		Timeout:     cfg.Boards.RefreshTimeout,
	})
	if err != nil {
		logger.WithError(err).Fatal("Failed to create refresh worker")
	}
	if err := refreshWorker.Start(ctx); err != nil {
		logger.WithError(err).Fatal("Failed to start refresh worker")
	}

	logger.Info("Refresh worker running")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := refreshWorker.Stop(shutdownCtx); err != nil {
		logger.WithError(err).Error("Refresh worker forced to stop")
	}

	logger.Info("Worker exited")
}
