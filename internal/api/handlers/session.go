package handlers

import (
	"ev-route-planner/internal/api/dto"
	"ev-route-planner/internal/domain"
	"ev-route-planner/internal/planner"
	"net/http"
	"strconv"
)

// SessionHandler exposes one planner session to the map and form views.
type SessionHandler struct {
	Session *planner.Session
	// Reset runs the process-wide reset hook; it defaults to Session.Reset.
	Reset func()
}

func (h *SessionHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, h.Session.Snapshot())
}

func (h *SessionHandler) MapView(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, h.Session.MapView())
}

func (h *SessionHandler) FormView(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, h.Session.FormView())
}

// Click handles a map click.
func (h *SessionHandler) Click(w http.ResponseWriter, r *http.Request) {
	var req dto.PointRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	if req.Lat == nil || req.Lon == nil {
		writeError(w, r, http.StatusBadRequest, "lat and lon are required")
		return
	}

	slot, err := h.Session.ClickMap(domain.Coordinate{Lat: *req.Lat, Lon: *req.Lon})
	if err != nil {
		writePlannerError(w, r, err, "")
		return
	}
	writeJSON(w, r, http.StatusOK, dto.SlotResponse{Slot: slot.String(), Accepted: slot != planner.SlotNone})
}

func (h *SessionHandler) Query(w http.ResponseWriter, r *http.Request) {
	var req dto.QueryRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	h.Session.SetQuery(r.Context(), req.Text)
	writeJSON(w, r, http.StatusAccepted, h.Session.FormView())
}

func (h *SessionHandler) Select(w http.ResponseWriter, r *http.Request) {
	idx, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "suggestion index must be an integer")
		return
	}

	var req dto.SelectRequest
	if !decodeJSON(w, r, &req, true) {
		return
	}
	slot := planner.SlotNone
	if req.As != "" {
		if slot, err = planner.ParseSlot(req.As); err != nil {
			writeError(w, r, http.StatusBadRequest, `as must be "start" or "goal"`)
			return
		}
	}

	got, err := h.Session.SelectSuggestion(idx, slot)
	if err != nil {
		writePlannerError(w, r, err, "")
		return
	}
	writeJSON(w, r, http.StatusOK, dto.SlotResponse{Slot: got.String(), Accepted: got != planner.SlotNone})
}

func (h *SessionHandler) Options(w http.ResponseWriter, r *http.Request) {
	var req dto.OptionsRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	// Parse both before applying either.
	var (
		mode domain.TransportMode
		obj  domain.Objective
		err  error
	)
	if req.Mode != nil {
		if mode, err = domain.ParseTransportMode(*req.Mode); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
	}
	if req.Objective != nil {
		if obj, err = domain.ParseObjective(*req.Objective); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
	}
	if req.Mode != nil {
		h.Session.SetMode(mode)
	}
	if req.Objective != nil {
		h.Session.SetObjective(obj)
	}
	writeJSON(w, r, http.StatusOK, h.Session.FormView())
}

func (h *SessionHandler) Range(w http.ResponseWriter, r *http.Request) {
	var req dto.RangeRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	field, err := planner.ParseRangeField(req.Field)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, `field must be "current" or "max"`)
		return
	}
	if err := h.Session.SetRange(field, req.Value); err != nil {
		writePlannerError(w, r, err, "")
		return
	}
	writeJSON(w, r, http.StatusOK, h.Session.FormView())
}

// Route runs the route computation and answers with the committed trip.
func (h *SessionHandler) Route(w http.ResponseWriter, r *http.Request) {
	view, err := h.Session.Go(r.Context())
	if err != nil {
		writePlannerError(w, r, err, "route service unavailable")
		return
	}
	writeJSON(w, r, http.StatusOK, view)
}

func (h *SessionHandler) Charging(w http.ResponseWriter, r *http.Request) {
	var req dto.ChargingRequest
	if !decodeJSON(w, r, &req, true) {
		return
	}

	var err error
	switch {
	case req.Visible == nil:
		err = h.Session.Charging.Toggle(r.Context())
	case *req.Visible:
		err = h.Session.Charging.Show(r.Context())
	default:
		h.Session.Charging.Hide()
	}
	if err != nil {
		writePlannerError(w, r, err, "charging stations unavailable")
		return
	}
	writeJSON(w, r, http.StatusOK, h.Session.MapView())
}

func (h *SessionHandler) ResetSession(w http.ResponseWriter, r *http.Request) {
	if h.Reset != nil {
		h.Reset()
	} else {
		h.Session.Reset()
	}
	writeJSON(w, r, http.StatusOK, h.Session.Snapshot())
}
