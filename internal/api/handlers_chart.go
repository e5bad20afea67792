package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/trade-board/internal/logging"
)

// handleGetSymbols returns the canonical symbols available for charting.
func (s *Server) handleGetSymbols(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"symbols": s.quotes.Symbols(),
	})
}

// handleGetQuotes returns the price series for a symbol. A failed upstream
// fetch yields an empty series, not an error; the chart renders empty.
func (s *Server) handleGetQuotes(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]
	if symbol == "" {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Symbol is required", nil)
		return
	}

	interval := r.URL.Query().Get("interval")
	rangeStr := r.URL.Query().Get("range")

	series := s.quotes.GetQuotes(r.Context(), symbol, interval, rangeStr)
	respondJSON(w, http.StatusOK, series)
}

type clientSymbolRequest struct {
	Symbol string `json:"symbol"`
}

// handleGetClientSymbol returns the client's last-selected chart symbol.
func (s *Server) handleGetClientSymbol(w http.ResponseWriter, r *http.Request) {
	if s.preferences == nil {
		respondError(w, http.StatusServiceUnavailable, ErrCodeNotReady, "Preference storage is not configured", nil)
		return
	}

	clientID := mux.Vars(r)["clientID"]

	symbol, err := s.preferences.GetSymbol(r.Context(), clientID)
	if err != nil {
		logging.WithField("client", clientID).WithError(err).Error("Failed to read client symbol")
		respondError(w, http.StatusInternalServerError, ErrCodeInternalError, "Failed to read client symbol", nil)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"client_id": clientID,
		"symbol":    symbol,
	})
}

// handlePutClientSymbol stores the client's selected chart symbol.
func (s *Server) handlePutClientSymbol(w http.ResponseWriter, r *http.Request) {
	if s.preferences == nil {
		respondError(w, http.StatusServiceUnavailable, ErrCodeNotReady, "Preference storage is not configured", nil)
		return
	}

	clientID := mux.Vars(r)["clientID"]

	var req clientSymbolRequest
	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}
	if req.Symbol == "" {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Symbol is required", nil)
		return
	}

	if err := s.preferences.SetSymbol(r.Context(), clientID, req.Symbol); err != nil {
		logging.WithField("client", clientID).WithError(err).Error("Failed to store client symbol")
		respondError(w, http.StatusInternalServerError, ErrCodeInternalError, "Failed to store client symbol", nil)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"client_id": clientID,
		"symbol":    req.Symbol,
	})
}
