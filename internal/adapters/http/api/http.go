// Package api declares the ops HTTP surface and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/marpol/driftwatch/internal/domain/model"
)

// Dependencies required by the handlers. An interface bundle keeps this
// layer loosely coupled to the engine implementation.
type Dependencies interface {
	GetStats() map[string]interface{}
	RecentAlerts(limit int) []model.Alert
}

// Server wires the ops HTTP routes.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	alertsHandler *AlertsHandler
}

// NewServer creates an API server over the engine dependencies.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler: NewHealthHandler(),
		statsHandler:  NewStatsHandler(deps),
		alertsHandler: NewAlertsHandler(deps),
	}
}

// Register attaches all routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/alerts", MetricsMiddleware(s.alertsHandler.HandleAlerts, "alerts"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
