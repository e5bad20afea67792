// Package api provides the HTTP API server implementation.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/trade-board/internal/logging"
	"github.com/trade-board/internal/models"
	"github.com/trade-board/internal/service"
)

// Service interfaces for dependency injection and testing

// BoardServiceInterface defines the interface for board operations
type BoardServiceInterface interface {
	Get(name string) (*models.Board, error)
	DefaultName() string
}

// LeaderboardServiceInterface defines the interface for leaderboard operations
type LeaderboardServiceInterface interface {
	Latest(board string) *service.LeaderboardResult
	Refresh(ctx context.Context, board *models.Board) (*service.LeaderboardResult, error)
}

// QuoteServiceInterface defines the interface for quote operations
type QuoteServiceInterface interface {
	Symbols() []string
	GetQuotes(ctx context.Context, symbol, interval, rangeStr string) *models.QuoteSeries
}

// SnapshotReaderInterface defines the interface for snapshot reads
type SnapshotReaderInterface interface {
	ListByBoard(ctx context.Context, board string, from, to time.Time, limit int) ([]models.StatsSnapshot, error)
	Get(ctx context.Context, id string) (*models.StatsSnapshot, error)
}

// PreferenceStoreInterface defines the interface for per-client UI state
type PreferenceStoreInterface interface {
	GetSymbol(ctx context.Context, clientID string) (string, error)
	SetSymbol(ctx context.Context, clientID, symbol string) error
}

// Server represents the HTTP API server.
type Server struct {
	router      *mux.Router
	httpServer  *http.Server
	boards      BoardServiceInterface
	leaderboard LeaderboardServiceInterface
	quotes      QuoteServiceInterface
	snapshots   SnapshotReaderInterface
	preferences PreferenceStoreInterface
	config      *ServerConfig
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	RateLimitRPS    int
	RateLimitBurst  int
}

// NewServer creates a new API server instance. snapshots and preferences may
// be nil; the corresponding routes then answer 503.
func NewServer(
	config *ServerConfig,
	boards BoardServiceInterface,
	leaderboard LeaderboardServiceInterface,
	quotes QuoteServiceInterface,
	snapshots SnapshotReaderInterface,
	preferences PreferenceStoreInterface,
) *Server {
	s := &Server{
		router:      mux.NewRouter(),
		boards:      boards,
		leaderboard: leaderboard,
		quotes:      quotes,
		snapshots:   snapshots,
		preferences: preferences,
		config:      config,
	}

	s.setupRouter()

	return s
}

// setupRouter configures the router with middleware and routes
func (s *Server) setupRouter() {
	rateLimiter := NewRateLimiter(s.config.RateLimitRPS, s.config.RateLimitBurst)

	// Middleware order matters
	s.router.Use(LoggingMiddleware)
	s.router.Use(RecoveryMiddleware)
	s.router.Use(CORSMiddleware)
	s.router.Use(RateLimitMiddleware(rateLimiter))
	s.router.Use(CompressionMiddleware)

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%s", s.config.Host, s.config.Port),
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")

	api := s.router.PathPrefix("/api").Subrouter()

	// Board endpoints
	api.HandleFunc("/boards/{name}", s.handleGetBoard).Methods("GET")
	api.HandleFunc("/boards/{name}/leaderboard", s.handleGetLeaderboard).Methods("GET")
	api.HandleFunc("/boards/{name}/trades", s.handleGetTrades).Methods("GET")
	api.HandleFunc("/boards/{name}/refresh", s.handleRefreshBoard).Methods("POST")
	api.HandleFunc("/boards/{name}/snapshots", s.handleListSnapshots).Methods("GET")
	api.HandleFunc("/snapshots/{id}", s.handleGetSnapshot).Methods("GET")

	// Chart endpoints
	api.HandleFunc("/symbols", s.handleGetSymbols).Methods("GET")
	api.HandleFunc("/quotes/{symbol}", s.handleGetQuotes).Methods("GET")

	// Per-client UI state
	api.HandleFunc("/clients/{clientID}/symbol", s.handleGetClientSymbol).Methods("GET")
	api.HandleFunc("/clients/{clientID}/symbol", s.handlePutClientSymbol).Methods("PUT")
}

// handleHealth handles health check requests.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "trade-board",
	})
}

// Router exposes the configured router. Used by tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	logging.WithField("addr", s.httpServer.Addr).Info("Starting API server")
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down API server...")
	return s.httpServer.Shutdown(ctx)
}
