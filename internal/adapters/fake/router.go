package fake

import (
	"context"
	"ev-route-planner/internal/domain"
	"sync"
)

// Router is a controllable route and charging station backend.
type Router struct {
	mu       sync.Mutex
	result   domain.RouteResult
	err      error
	stations []domain.Coordinate
	listErr  error
	requests []domain.RouteRequest
	lists    int

	routeGate gate
	listGate  gate
}

func NewRouter(result domain.RouteResult) *Router {
	return &Router{result: result}
}

func (r *Router) SetResult(res domain.RouteResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.result, r.err = res, nil
}

func (r *Router) SetError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

func (r *Router) SetStations(s []domain.Coordinate) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stations, r.listErr = s, nil
}

func (r *Router) SetStationsError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listErr = err
}

// HoldRoute blocks route computations until the returned func is called.
func (r *Router) HoldRoute() func() { return r.routeGate.hold() }

// HoldStations blocks station listings until the returned func is called.
func (r *Router) HoldStations() func() { return r.listGate.hold() }

func (r *Router) Requests() []domain.RouteRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.RouteRequest(nil), r.requests...)
}

func (r *Router) RouteCalls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.requests)
}

func (r *Router) StationCalls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lists
}

func (r *Router) ComputeRoute(ctx context.Context, req domain.RouteRequest) (domain.RouteResult, error) {
	r.mu.Lock()
	r.requests = append(r.requests, req)
	r.mu.Unlock()

	if err := r.routeGate.wait(ctx); err != nil {
		return domain.RouteResult{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return domain.RouteResult{}, r.err
	}
	return r.result.Clone(), nil
}

func (r *Router) ListChargingStations(ctx context.Context) ([]domain.Coordinate, error) {
	r.mu.Lock()
	r.lists++
	r.mu.Unlock()

	if err := r.listGate.wait(ctx); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	return append([]domain.Coordinate(nil), r.stations...), nil
}
