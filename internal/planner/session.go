package planner

import (
	"context"
	"ev-route-planner/internal/domain"
	"ev-route-planner/internal/platform/metrics"
	"ev-route-planner/internal/ports"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type Deps struct {
	Geocoder ports.Geocoder
	Router   ports.RouteProvider
	Stations ports.ChargingStationProvider
	Debounce time.Duration
	// Center is used until Locate succeeds.
	Center domain.Coordinate
}

// UIState flags shared by the map and form views.
type UIState struct {
	RouteComputing  bool `json:"route_computing"`
	ChargingVisible bool `json:"charging_visible"`
}

// MapView is what the map renders.
type MapView struct {
	Center           MapCenter           `json:"center"`
	Start            domain.Waypoint     `json:"start"`
	Goal             domain.Waypoint     `json:"goal"`
	Polyline         []domain.Coordinate `json:"polyline"`
	ChargingStops    []domain.Coordinate `json:"charging_stops"`
	ChargingStations []domain.Coordinate `json:"charging_stations"`
	ChargingVisible  bool                `json:"charging_visible"`
}

// FormView is what the trip form renders.
type FormView struct {
	Start          domain.Waypoint     `json:"start"`
	Goal           domain.Waypoint     `json:"goal"`
	Query          string              `json:"query"`
	Suggestions    []domain.Suggestion `json:"suggestions"`
	FormValues
	Duration       string  `json:"duration"`
	DistanceKm     float64 `json:"distance_km"`
	ChargingStops  int     `json:"charging_stops"`
	RouteComputing bool    `json:"route_computing"`
}

type Snapshot struct {
	ID      string   `json:"id"`
	Map     MapView  `json:"map"`
	Form    FormView `json:"form"`
	UI      UIState  `json:"ui"`
	Notices []Notice `json:"notices"`
}

// Session wires the planner components for one user.
type Session struct {
	ID string

	Waypoints *WaypointStore
	Selector  *PointSelector
	Suggest   *Suggester
	Form      *RangeForm
	Route     *Orchestrator
	Charging  *ChargingOverlay
	Notices   *NoticeLog

	mu     sync.RWMutex
	center MapCenter
	home   domain.Coordinate
}

func NewSession(deps Deps) *Session {
	notices := NewNoticeLog()
	store := NewWaypointStore()
	selector := NewPointSelector(store)
	form := NewRangeForm(notices)

	return &Session{
		ID:        uuid.NewString(),
		Waypoints: store,
		Selector:  selector,
		Suggest:   NewSuggester(deps.Geocoder, selector, notices, deps.Debounce),
		Form:      form,
		Route:     NewOrchestrator(deps.Router, store, form, notices),
		Charging:  NewChargingOverlay(deps.Stations, notices),
		Notices:   notices,
		center:    MapCenter{Coordinate: deps.Center, Source: CenterDefault},
		home:      deps.Center,
	}
}

// Startup centres the map on the device position when it can be found.
func (s *Session) Startup(ctx context.Context, locator ports.Locator, timeout time.Duration) MapCenter {
	c := Locate(ctx, locator, timeout, s.home)
	s.mu.Lock()
	s.center = c
	s.mu.Unlock()
	return c
}

// ClickMap feeds a map click into point selection.
func (s *Session) ClickMap(c domain.Coordinate) (Slot, error) {
	if err := c.Validate(); err != nil {
		metrics.ValidationRejections.WithLabelValues("point").Inc()
		s.Notices.Notify(LevelWarn, ErrInvalidPoint.Error())
		return SlotNone, fmt.Errorf("click map: %w: %w", ErrInvalidPoint, err)
	}
	slot, ok := s.Selector.Accept(domain.Waypoint{Coordinates: &c})
	if !ok {
		logrus.WithField("point", c.String()).Debug("both endpoints set, click ignored")
	}
	return slot, nil
}

func (s *Session) SetQuery(ctx context.Context, text string) {
	s.Suggest.SetQuery(ctx, text)
}

func (s *Session) SelectSuggestion(i int, slot Slot) (Slot, error) {
	return s.Suggest.Select(i, slot)
}

func (s *Session) SetMode(m domain.TransportMode) { s.Form.SetMode(m) }

func (s *Session) SetObjective(o domain.Objective) { s.Form.SetObjective(o) }

func (s *Session) SetRange(field RangeField, text string) error {
	return s.Form.Set(field, text)
}

func (s *Session) Go(ctx context.Context) (TripView, error) {
	return s.Route.Go(ctx)
}

// Reset returns every component to its initial empty state and
// supersedes all outstanding requests, including a Go that has already
// read its inputs.
func (s *Session) Reset() {
	s.Suggest.Reset()
	s.Charging.Hide()
	s.Form.Clear()
	s.Waypoints.Clear()
	// Last, so a Go that read the old inputs sees the new epoch.
	s.Route.Reset()
	s.Notices.Clear()
	logrus.WithField("session", s.ID).Info("session reset")
}

func (s *Session) UI() UIState {
	return UIState{
		RouteComputing:  s.Route.Computing(),
		ChargingVisible: s.Charging.Visible(),
	}
}

func (s *Session) MapView() MapView {
	start, goal := s.Waypoints.Both()
	s.mu.RLock()
	center := s.center
	s.mu.RUnlock()

	view := MapView{
		Center:          center,
		Start:           start,
		Goal:            goal,
		ChargingVisible: s.Charging.Visible(),
	}
	if res, ok := s.Route.Result(); ok {
		if res.HasPolyline() {
			view.Polyline = res.Path
		}
		view.ChargingStops = res.ChargingStops
	}
	if view.ChargingVisible {
		view.ChargingStations = s.Charging.Stations()
	}
	return view
}

func (s *Session) FormView() FormView {
	start, goal := s.Waypoints.Both()
	trip := s.Route.View()
	return FormView{
		Start:          start,
		Goal:           goal,
		Query:          s.Suggest.Query(),
		Suggestions:    s.Suggest.Suggestions(),
		FormValues:     s.Form.Values(),
		Duration:       trip.Duration,
		DistanceKm:     trip.DistanceKm,
		ChargingStops:  len(trip.ChargingStops),
		RouteComputing: s.Route.Computing(),
	}
}

func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		ID:      s.ID,
		Map:     s.MapView(),
		Form:    s.FormView(),
		UI:      s.UI(),
		Notices: s.Notices.Notices(),
	}
}

// Close waits for pending searches after superseding them.
func (s *Session) Close() {
	s.Suggest.Reset()
	s.Suggest.Wait()
	s.Route.Reset()
	s.Charging.Hide()
}
