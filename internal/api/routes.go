package api

import (
	"github.com/gorilla/mux"
)

// SetupRoutes configures all API routes
func SetupRoutes(handler *Handler) *mux.Router {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/positions", handler.GetPositions).Methods("GET")
	api.HandleFunc("/positions/{symbol}/close", handler.ClosePosition).Methods("POST")
	api.HandleFunc("/trades", handler.GetTrades).Methods("GET")
	api.HandleFunc("/lots/{symbol}", handler.GetLots).Methods("GET")
	api.HandleFunc("/stats", handler.GetStats).Methods("GET")
	api.HandleFunc("/failures", handler.GetFailures).Methods("GET")

	return r
}
