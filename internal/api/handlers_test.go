package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/trade-board/internal/models"
	"github.com/trade-board/internal/service"
	"github.com/trade-board/internal/types"
)

type stubBoards struct {
	boards map[string]*models.Board
}

func (s *stubBoards) Get(name string) (*models.Board, error) {
	if name == "" {
		name = "default"
	}
	if board, ok := s.boards[name]; ok {
		return board, nil
	}
	return nil, &types.ServiceError{Code: types.CodeBoardNotFound, Message: "board not found: " + name}
}

func (s *stubBoards) DefaultName() string { return "default" }

type stubLeaderboard struct {
	result    *service.LeaderboardResult
	refreshes int
}

func (s *stubLeaderboard) Latest(board string) *service.LeaderboardResult {
	return s.result
}

func (s *stubLeaderboard) Refresh(ctx context.Context, board *models.Board) (*service.LeaderboardResult, error) {
	s.refreshes++
	if s.result == nil {
		s.result = &service.LeaderboardResult{Board: board.Name, TakenAt: time.Now().UTC()}
	}
	return s.result, nil
}

type stubQuotes struct{}

func (s *stubQuotes) Symbols() []string { return []string{"cl", "es", "gc", "nq"} }

func (s *stubQuotes) GetQuotes(ctx context.Context, symbol, interval, rangeStr string) *models.QuoteSeries {
	return &models.QuoteSeries{
		Symbol:   symbol,
		Interval: "1m",
		Range:    "5d",
		Quotes:   []models.Quote{{Date: time.Unix(1754380800, 0), Price: 5000.5}},
	}
}

type stubPreferences struct {
	symbols map[string]string
}

func (s *stubPreferences) GetSymbol(ctx context.Context, clientID string) (string, error) {
	return s.symbols[clientID], nil
}

func (s *stubPreferences) SetSymbol(ctx context.Context, clientID, symbol string) error {
	if s.symbols == nil {
		s.symbols = make(map[string]string)
	}
	s.symbols[clientID] = symbol
	return nil
}

func testServer(t *testing.T) (*Server, *stubLeaderboard) {
	t.Helper()

	board := &models.Board{
		Name:      "default",
		StartDate: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC),
		Shares: map[string][]models.Share{
			"alice": {{AccountID: 1001, AccountType: "express"}},
		},
	}

	leaderboard := &stubLeaderboard{
		result: &service.LeaderboardResult{
			Board:   "default",
			TakenAt: time.Now().UTC(),
			Stats: []models.StatsRow{
				{User: "alice", AccountTypes: "E", UserStats: models.UserStats{Trades: 2, Won: 1, Lost: 1}},
			},
			Trades: []models.TradeRow{
				{User: "alice", LogicalTrade: models.LogicalTrade{Symbol: "es", Position: 1, Count: 1}},
			},
		},
	}

	server := NewServer(
		&ServerConfig{
			Host:           "127.0.0.1",
			Port:           "0",
			RateLimitRPS:   1000,
			RateLimitBurst: 1000,
		},
		&stubBoards{boards: map[string]*models.Board{"default": board}},
		leaderboard,
		&stubQuotes{},
		nil,
		&stubPreferences{},
	)

	return server, leaderboard
}

func doRequest(t *testing.T, server *Server, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	server, _ := testServer(t)

	rec := doRequest(t, server, "GET", "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestHandleGetBoard(t *testing.T) {
	server, _ := testServer(t)

	rec := doRequest(t, server, "GET", "/api/boards/default", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var board models.Board
	if err := json.Unmarshal(rec.Body.Bytes(), &board); err != nil {
		t.Fatalf("response is not a board: %v", err)
	}
	if board.Name != "default" {
		t.Errorf("board name = %s, want default", board.Name)
	}
}

func TestHandleGetBoard_NotFound(t *testing.T) {
	server, _ := testServer(t)

	rec := doRequest(t, server, "GET", "/api/boards/missing", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}

	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not an error payload: %v", err)
	}
	if resp.Error.Code != ErrCodeNotFound {
		t.Errorf("error code = %s, want %s", resp.Error.Code, ErrCodeNotFound)
	}
}

func TestHandleGetLeaderboard(t *testing.T) {
	server, _ := testServer(t)

	rec := doRequest(t, server, "GET", "/api/boards/default/leaderboard", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var payload struct {
		Board string            `json:"board"`
		Rows  []models.StatsRow `json:"rows"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("bad payload: %v", err)
	}
	if payload.Board != "default" || len(payload.Rows) != 1 {
		t.Errorf("unexpected payload: %+v", payload)
	}
	if payload.Rows[0].User != "alice" {
		t.Errorf("row user = %s, want alice", payload.Rows[0].User)
	}
}

func TestHandleGetTrades(t *testing.T) {
	server, _ := testServer(t)

	rec := doRequest(t, server, "GET", "/api/boards/default/trades", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var payload struct {
		Rows []models.TradeRow `json:"rows"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("bad payload: %v", err)
	}
	if len(payload.Rows) != 1 || payload.Rows[0].Symbol != "es" {
		t.Errorf("unexpected rows: %+v", payload.Rows)
	}
}

func TestHandleRefreshBoard(t *testing.T) {
	server, leaderboard := testServer(t)

	rec := doRequest(t, server, "POST", "/api/boards/default/refresh", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if leaderboard.refreshes != 1 {
		t.Errorf("refreshes = %d, want 1", leaderboard.refreshes)
	}
}

func TestHandleListSnapshots_NotConfigured(t *testing.T) {
	server, _ := testServer(t)

	rec := doRequest(t, server, "GET", "/api/boards/default/snapshots", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503 when snapshot storage is absent", rec.Code)
	}
}

func TestHandleGetSymbols(t *testing.T) {
	server, _ := testServer(t)

	rec := doRequest(t, server, "GET", "/api/symbols", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var payload struct {
		Symbols []string `json:"symbols"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("bad payload: %v", err)
	}
	if len(payload.Symbols) != 4 {
		t.Errorf("symbols = %v, want 4 entries", payload.Symbols)
	}
}

func TestHandleGetQuotes(t *testing.T) {
	server, _ := testServer(t)

	rec := doRequest(t, server, "GET", "/api/quotes/es", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var series models.QuoteSeries
	if err := json.Unmarshal(rec.Body.Bytes(), &series); err != nil {
		t.Fatalf("bad payload: %v", err)
	}
	if series.Symbol != "es" || len(series.Quotes) != 1 {
		t.Errorf("unexpected series: %+v", series)
	}
}

func TestClientSymbolRoundTrip(t *testing.T) {
	server, _ := testServer(t)

	rec := doRequest(t, server, "PUT", "/api/clients/client-1/symbol", []byte(`{"symbol":"nq"}`))
	if rec.Code != http.StatusOK {
		t.Fatalf("PUT status = %d, want 200", rec.Code)
	}

	rec = doRequest(t, server, "GET", "/api/clients/client-1/symbol", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET status = %d, want 200", rec.Code)
	}

	var payload map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("bad payload: %v", err)
	}
	if payload["symbol"] != "nq" {
		t.Errorf("symbol = %s, want nq", payload["symbol"])
	}
}

func TestClientSymbol_RejectsEmpty(t *testing.T) {
	server, _ := testServer(t)

	rec := doRequest(t, server, "PUT", "/api/clients/client-1/symbol", []byte(`{"symbol":""}`))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
