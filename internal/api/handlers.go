package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/coinsniper/coinsniper/internal/database"
	"github.com/coinsniper/coinsniper/internal/engine"
)

const defaultListLimit = 100

// Handler holds dependencies for HTTP handlers
type Handler struct {
	db     *database.DB
	engine *engine.Engine
}

// NewHandler creates a new Handler
func NewHandler(db *database.DB, eng *engine.Engine) *Handler {
	return &Handler{
		db:     db,
		engine: eng,
	}
}

// GetPositions handles GET /positions
func (h *Handler) GetPositions(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"open":   h.engine.Positions(),
		"closed": h.engine.RecentClosed(),
	})
}

// GetTrades handles GET /trades
func (h *Handler) GetTrades(w http.ResponseWriter, r *http.Request) {
	limit := queryLimit(r)

	symbol := r.URL.Query().Get("symbol")
	if symbol != "" {
		trades, err := h.db.GetTradesBySymbol(symbol, limit)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		respondJSON(w, http.StatusOK, trades)
		return
	}

	trades, err := h.db.GetAllTrades(limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, trades)
}

// GetLots handles GET /lots/{symbol}
func (h *Handler) GetLots(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	symbol := vars["symbol"]

	lots, err := h.db.GetLotsBySymbol(symbol)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, lots)
}

// GetStats handles GET /stats
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.db.GetTradeStats()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// GetFailures handles GET /failures
func (h *Handler) GetFailures(w http.ResponseWriter, r *http.Request) {
	events, err := h.db.GetRecentFailureEvents(queryLimit(r))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, events)
}

// ClosePosition handles POST /positions/{symbol}/close
func (h *Handler) ClosePosition(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	symbol := vars["symbol"]

	h.engine.ClosePosition(r.Context(), symbol)
	w.WriteHeader(http.StatusAccepted)
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Ping(); err != nil {
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func queryLimit(r *http.Request) int {
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			return n
		}
	}
	return defaultListLimit
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
