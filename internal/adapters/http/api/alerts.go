package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/marpol/driftwatch/internal/domain/model"
)

// defaultAlertLimit applies when ?limit is absent.
const defaultAlertLimit = 20

// AlertsHandler serves the recent-alert buffer.
type AlertsHandler struct {
	deps Dependencies
}

// NewAlertsHandler creates a new alerts handler.
func NewAlertsHandler(deps Dependencies) *AlertsHandler {
	return &AlertsHandler{deps: deps}
}

type alertsResponse struct {
	Alerts []model.Alert `json:"alerts"`
	Count  int           `json:"count"`
}

// HandleAlerts handles GET /alerts?limit=N, newest first.
func (h *AlertsHandler) HandleAlerts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	limit := defaultAlertLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "bad_request",
				fmt.Errorf("%w: limit must be a positive integer", ErrBadRequest))
			return
		}
		limit = n
	}

	alerts := h.deps.RecentAlerts(limit)
	if alerts == nil {
		alerts = []model.Alert{}
	}
	writeJSON(w, http.StatusOK, alertsResponse{Alerts: alerts, Count: len(alerts)})
}
