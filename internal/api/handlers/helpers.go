package handlers

import (
	"encoding/json"
	"errors"
	"ev-route-planner/internal/planner"
	"ev-route-planner/internal/ports"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithFields(logrus.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).WithError(err).Warn("encode failed")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}

// decodeJSON reads exactly one JSON object. An empty body leaves v untouched
// when allowEmpty is set.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any, allowEmpty bool) bool {
	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return true
		}
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return false
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return false
	}
	return true
}

// writePlannerError maps planner and backend failures to HTTP responses.
// Backend messages pass through unmodified.
func writePlannerError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var be ports.BackendError
	switch {
	case planner.IsValidation(err):
		writeError(w, r, http.StatusUnprocessableEntity, planner.UserMessage(err, err.Error()))
	case errors.Is(err, planner.ErrRouteInFlight), errors.Is(err, planner.ErrStale):
		writeError(w, r, http.StatusConflict, planner.UserMessage(err, planner.ErrStale.Error()))
	case errors.As(err, &be):
		writeError(w, r, http.StatusBadGateway, planner.UserMessage(err, fallback))
	default:
		logrus.WithError(err).WithField("path", r.URL.Path).Warn("request failed")
		writeError(w, r, http.StatusBadGateway, fallback)
	}
}
