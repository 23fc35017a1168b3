package handlers

import (
	"ev-route-planner/internal/planner"
	"net/http"
	"time"
)

// HealthHandler reports process liveness. It never calls the routing backend.
type HealthHandler struct {
	Session *planner.Session
	Started time.Time
}

type healthResponse struct {
	Status         string `json:"status"`
	Session        string `json:"session"`
	UptimeSeconds  int64  `json:"uptime_seconds"`
	RouteComputing bool   `json:"route_computing"`
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, healthResponse{
		Status:         "ok",
		Session:        h.Session.ID,
		UptimeSeconds:  int64(time.Since(h.Started).Seconds()),
		RouteComputing: h.Session.Route.Computing(),
	})
}
