package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/trade-board/internal/logging"
	"github.com/trade-board/internal/service"
)

// handleGetBoard returns the board document.
func (s *Server) handleGetBoard(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	board, err := s.boards.Get(name)
	if err != nil {
		status, code, message := mapServiceError(err)
		respondError(w, status, code, message, nil)
		return
	}

	respondJSON(w, http.StatusOK, board)
}

// handleGetLeaderboard returns the per-user stats table for a board, sorted
// by edge descending. A board that has never been refreshed is computed on
// first read.
func (s *Server) handleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	result, err := s.resolveResult(r)
	if err != nil {
		status, code, message := mapServiceError(err)
		respondError(w, status, code, message, nil)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"board":    result.Board,
		"taken_at": result.TakenAt,
		"rows":     result.Stats,
	})
}

// handleGetTrades returns the per-(user, trade) table for a board, newest
// first.
func (s *Server) handleGetTrades(w http.ResponseWriter, r *http.Request) {
	result, err := s.resolveResult(r)
	if err != nil {
		status, code, message := mapServiceError(err)
		respondError(w, status, code, message, nil)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"board":    result.Board,
		"taken_at": result.TakenAt,
		"rows":     result.Trades,
	})
}

// handleRefreshBoard recomputes a board immediately.
func (s *Server) handleRefreshBoard(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	board, err := s.boards.Get(name)
	if err != nil {
		status, code, message := mapServiceError(err)
		respondError(w, status, code, message, nil)
		return
	}

	result, err := s.leaderboard.Refresh(r.Context(), board)
	if err != nil {
		logging.WithField("board", board.Name).WithError(err).Error("Manual refresh failed")
		respondError(w, http.StatusInternalServerError, ErrCodeInternalError, "Board refresh failed", nil)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"board":    result.Board,
		"taken_at": result.TakenAt,
		"users":    len(result.Stats),
		"trades":   len(result.Trades),
	})
}

// resolveResult loads the board named in the request and returns its latest
// computation, refreshing on a cold cache.
func (s *Server) resolveResult(r *http.Request) (*service.LeaderboardResult, error) {
	name := mux.Vars(r)["name"]

	board, err := s.boards.Get(name)
	if err != nil {
		return nil, err
	}

	if result := s.leaderboard.Latest(board.Name); result != nil {
		return result, nil
	}

	return s.leaderboard.Refresh(r.Context(), board)
}

// handleListSnapshots returns persisted snapshots for a board.
func (s *Server) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	if s.snapshots == nil {
		respondError(w, http.StatusServiceUnavailable, ErrCodeNotReady, "Snapshot storage is not configured", nil)
		return
	}

	name := mux.Vars(r)["name"]
	board, err := s.boards.Get(name)
	if err != nil {
		status, code, message := mapServiceError(err)
		respondError(w, status, code, message, nil)
		return
	}

	var from, to time.Time
	if v := r.URL.Query().Get("from"); v != "" {
		from, err = time.Parse(time.RFC3339, v)
		if err != nil {
			respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Invalid 'from' timestamp, expected RFC3339", nil)
			return
		}
	}
	if v := r.URL.Query().Get("to"); v != "" {
		to, err = time.Parse(time.RFC3339, v)
		if err != nil {
			respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Invalid 'to' timestamp, expected RFC3339", nil)
			return
		}
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err = strconv.Atoi(v)
		if err != nil || limit < 0 {
			respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Invalid 'limit'", nil)
			return
		}
	}

	snapshots, err := s.snapshots.ListByBoard(r.Context(), board.Name, from, to, limit)
	if err != nil {
		logging.WithField("board", board.Name).WithError(err).Error("Failed to list snapshots")
		respondError(w, http.StatusInternalServerError, ErrCodeInternalError, "Failed to list snapshots", nil)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"board":     board.Name,
		"snapshots": snapshots,
	})
}

// handleGetSnapshot returns one snapshot with its rows.
func (s *Server) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	if s.snapshots == nil {
		respondError(w, http.StatusServiceUnavailable, ErrCodeNotReady, "Snapshot storage is not configured", nil)
		return
	}

	id := mux.Vars(r)["id"]

	snapshot, err := s.snapshots.Get(r.Context(), id)
	if err != nil {
		logging.WithField("snapshot", id).WithError(err).Error("Failed to load snapshot")
		respondError(w, http.StatusInternalServerError, ErrCodeInternalError, "Failed to load snapshot", nil)
		return
	}
	if snapshot == nil {
		respondError(w, http.StatusNotFound, ErrCodeNotFound, "Snapshot not found", nil)
		return
	}

	respondJSON(w, http.StatusOK, snapshot)
}
