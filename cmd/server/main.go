// Package main provides the API server entry point for the trade board service.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/trade-board/internal/adapter"
	"github.com/trade-board/internal/api"
	"github.com/trade-board/internal/config"
	"github.com/trade-board/internal/logging"
	"github.com/trade-board/internal/service"
	"github.com/trade-board/internal/storage"
	"github.com/trade-board/internal/symbols"
	"github.com/trade-board/internal/worker"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize structured logging
	logLevel := logging.ParseLogLevel(cfg.Logging.Level)
	logFormat := logging.ParseLogFormat(cfg.Logging.Format)
	logging.InitGlobalLogger(logLevel, logFormat)

	logger := logging.GetGlobalLogger()
	logger.WithFields(map[string]interface{}{
		"level":  cfg.Logging.Level,
		"format": cfg.Logging.Format,
	}).Info("Structured logging initialized")

	// Initialize database connections
	logger.Info("Connecting to databases...")

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

	redis, err := storage.NewRedisCache(&cfg.Database.Redis)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to Redis")
	}
	defer redis.Close()

	logger.Info("Database connections established")

	ctx := context.Background()
	if err := clickhouse.EnsureSchema(ctx); err != nil {
		logger.WithError(err).Fatal("Failed to ensure ClickHouse schema")
	}

	// Symbol map: built-in unless a file overrides it
	symbolMap := symbols.Default()
	if cfg.Symbols.MapFile != "" {
		symbolMap, err = symbols.LoadFile(cfg.Symbols.MapFile)
		if err != nil {
			logger.WithError(err).Fatal("Failed to load symbol map")
		}
		logger.WithField("file", cfg.Symbols.MapFile).Info("Symbol map loaded from file")
	}

	// Initialize platform and quote clients
	provider := adapter.NewProvider(&cfg.Platforms)
	quoteClient := adapter.NewQuoteClient(&cfg.Quotes)

	// Initialize storage-backed components
	boardStore := storage.NewBoardStore(cfg.Boards.Dir)
	snapshotRepo := storage.NewSnapshotRepository(postgres)
	tradeArchive := storage.NewTradeArchive(clickhouse)
	quoteCache := storage.NewQuoteCache(redis, cfg.Quotes.CacheTTL)
	preferences := storage.NewPreferenceStore(redis, 0)

	// Initialize services
	logger.Info("Initializing services...")

	boardService := service.NewBoardService(boardStore, cfg.Boards.Default)
	aggregator := service.NewAggregator(symbolMap)
	leaderboardService := service.NewLeaderboardService(provider, aggregator, tradeArchive, snapshotRepo, 0)
	quoteService := service.NewQuoteService(quoteClient, quoteCache, symbolMap, &cfg.Quotes)

	logger.Info("Services initialized")

	// Background refresh keeps the default board warm
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

	// Create server configuration
	serverConfig := &api.ServerConfig{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    30 * time.Second,
		IdleTimeout:     60 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		RateLimitRPS:    cfg.RateLimit.RequestsPerSecond,
		RateLimitBurst:  cfg.RateLimit.Burst,
	}

	server := api.NewServer(serverConfig, boardService, leaderboardService, quoteService, snapshotRepo, preferences)

	// Start server in a goroutine
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Server failed to start")
		}
	}()

	logger.WithFields(map[string]interface{}{
		"host": cfg.Server.Host,
		"port": cfg.Server.Port,
	}).Info("Server started successfully")

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), serverConfig.ShutdownTimeout)
	defer cancel()

	if err := refreshWorker.Stop(shutdownCtx); err != nil {
		logger.WithError(err).Error("Refresh worker forced to stop")
	}

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Fatal("Server forced to shutdown")
	}

	logger.Info("Server exited")
}
