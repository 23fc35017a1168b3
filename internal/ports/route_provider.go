package ports

import (
	"context"
	"ev-route-planner/internal/domain"
)

// Port: the remote routing service that computes range-constrained routes
// and decides where charging stops are inserted.
type RouteProvider interface {
	ComputeRoute(ctx context.Context, req domain.RouteRequest) (domain.RouteResult, error)
}

// Port: the complete, unfiltered set of known charging stations.
type ChargingStationProvider interface {
	ListChargingStations(ctx context.Context) ([]domain.Coordinate, error)
}
