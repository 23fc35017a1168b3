package planner

import (
	"context"
	"errors"
	"ev-route-planner/internal/domain"
	"ev-route-planner/internal/platform/metrics"
	"ev-route-planner/internal/platform/obs"
	"ev-route-planner/internal/ports"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

const routeFallback = "route service unavailable"

// TripView is the renderable form of a committed route.
type TripView struct {
	Path          []domain.Coordinate `json:"path"`
	Duration      string              `json:"duration"`
	DistanceKm    float64             `json:"distance_km"`
	ChargingStops []domain.Coordinate `json:"charging_stops"`
}

func NewTripView(r domain.RouteResult) TripView {
	r = r.Clone()
	return TripView{
		Path:          r.Path,
		Duration:      domain.FormatDuration(r.DurationSeconds),
		DistanceKm:    domain.MetersToKm(r.DistanceMeters),
		ChargingStops: r.ChargingStops,
	}
}

// Orchestrator is the only caller of the route computation port. At most
// one computation is in flight; a reset supersedes it.
type Orchestrator struct {
	router    ports.RouteProvider
	waypoints *WaypointStore
	form      *RangeForm
	notify    Notifier

	mu        sync.Mutex
	computing bool
	seq       uint64
	epoch     uint64 // bumped by Reset only
	cancel    context.CancelFunc
	result    *domain.RouteResult

	// inputsRead, when set, runs between reading inputs and claiming the
	// computation.
	inputsRead func()
}

func NewOrchestrator(router ports.RouteProvider, waypoints *WaypointStore, form *RangeForm, notify Notifier) *Orchestrator {
	return &Orchestrator{
		router:    router,
		waypoints: waypoints,
		form:      form,
		notify:    notify,
	}
}

// Go validates the inputs, computes a route and commits it. Validation
// failures and a computation already in flight never reach the network.
func (o *Orchestrator) Go(ctx context.Context) (view TripView, err error) {
	o.mu.Lock()
	epoch := o.epoch
	o.mu.Unlock()

	req, err := o.buildRequest()
	if o.inputsRead != nil {
		o.inputsRead()
	}
	if err != nil {
		metrics.ValidationRejections.WithLabelValues("route").Inc()
		o.notify.Notify(LevelWarn, UserMessage(err, err.Error()))
		return TripView{}, fmt.Errorf("go: %w", err)
	}

	o.mu.Lock()
	if epoch != o.epoch {
		// Inputs were read before a reset finished.
		o.mu.Unlock()
		metrics.StaleResponses.WithLabelValues(metrics.OpRoute).Inc()
		return TripView{}, fmt.Errorf("go: %w", ErrStale)
	}
	if o.computing {
		o.mu.Unlock()
		return TripView{}, fmt.Errorf("go: %w", ErrRouteInFlight)
	}
	o.computing = true
	o.seq++
	seq := o.seq
	ctx, cancel := context.WithCancel(ctx)
	o.cancel = cancel
	o.mu.Unlock()
	defer cancel()

	defer obs.Time(ctx, "orchestrator.Go")(&err)

	metrics.RequestsIssued.WithLabelValues(metrics.OpRoute).Inc()
	res, callErr := o.router.ComputeRoute(ctx, req)

	o.mu.Lock()
	if seq != o.seq {
		o.mu.Unlock()
		metrics.StaleResponses.WithLabelValues(metrics.OpRoute).Inc()
		logrus.WithField("seq", seq).Debug("discarding stale route")
		return TripView{}, fmt.Errorf("go: %w", ErrStale)
	}
	o.computing = false
	o.cancel = nil
	if callErr != nil {
		o.mu.Unlock()
		metrics.RequestFailures.WithLabelValues(metrics.OpRoute).Inc()
		o.notify.Notify(LevelError, UserMessage(callErr, routeFallback))
		return TripView{}, fmt.Errorf("go: %w", callErr)
	}
	committed := res.Clone()
	o.result = &committed
	o.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"mode":      req.Mode,
		"objective": req.Objective,
		"points":    len(res.Path),
		"stops":     len(res.ChargingStops),
	}).Info("route committed")

	return NewTripView(res), nil
}

func (o *Orchestrator) buildRequest() (domain.RouteRequest, error) {
	start, goal := o.waypoints.Both()
	values := o.form.Values()

	var errs []error
	if !start.IsSet() {
		errs = append(errs, ErrStartUnset)
	}
	if !goal.IsSet() {
		errs = append(errs, ErrGoalUnset)
	}
	if values.CurrentRange == "" || values.MaxRange == "" {
		errs = append(errs, ErrRangeMissing)
	}
	if len(errs) > 0 {
		return domain.RouteRequest{}, errors.Join(errs...)
	}

	spec, err := values.RangeSpec()
	if err != nil {
		return domain.RouteRequest{}, err
	}

	return domain.RouteRequest{
		Start:     *start.Coordinates,
		Goal:      *goal.Coordinates,
		Mode:      values.Mode,
		Objective: values.Objective,
		Range:     spec,
	}, nil
}

func (o *Orchestrator) Computing() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.computing
}

// Result returns the committed route, if any.
func (o *Orchestrator) Result() (domain.RouteResult, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.result == nil {
		return domain.RouteResult{}, false
	}
	return o.result.Clone(), true
}

// View returns the trip view of the committed route, or the empty view.
func (o *Orchestrator) View() TripView {
	res, ok := o.Result()
	if !ok {
		return TripView{}
	}
	return NewTripView(res)
}

// Reset drops the committed route, clears the in-flight flag and cancels
// the outstanding computation so its completion is discarded.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.seq++
	o.epoch++
	o.computing = false
	o.result = nil
	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}
}
