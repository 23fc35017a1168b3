package api

import (
	"ev-route-planner/internal/api/handlers"
	"ev-route-planner/internal/planner"
	"ev-route-planner/internal/platform/metrics"
	"net/http"
	"time"
)

// NewRouter wires HTTP handlers to the planner session and returns an http.Handler.
// reset is the process-wide reset hook; nil falls back to session.Reset.
func NewRouter(session *planner.Session, reset func()) http.Handler {
	mux := http.NewServeMux()

	h := &handlers.SessionHandler{Session: session, Reset: reset}
	health := &handlers.HealthHandler{Session: session, Started: time.Now()}

	mux.HandleFunc("GET /health", health.Health)
	mux.Handle("GET /metrics", metrics.Handler())

	mux.HandleFunc("GET /session", h.Snapshot)
	mux.HandleFunc("GET /session/map", h.MapView)
	mux.HandleFunc("GET /session/form", h.FormView)
	mux.HandleFunc("POST /session/points", h.Click)
	mux.HandleFunc("PUT /session/query", h.Query)
	mux.HandleFunc("POST /session/suggestions/{index}/select", h.Select)
	mux.HandleFunc("PUT /session/options", h.Options)
	mux.HandleFunc("PUT /session/range", h.Range)
	mux.HandleFunc("POST /session/route", h.Route)
	mux.HandleFunc("POST /session/charging", h.Charging)
	mux.HandleFunc("POST /session/reset", h.ResetSession)

	return requestIDMiddleware(loggingMiddleware(mux))
}
