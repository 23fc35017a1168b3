package domain

import (
	"errors"
	"fmt"
)

// MaxRangeCeiling is the exclusive upper bound for range values in kilometres.
// The routing service stores distances in metres as unsigned 32-bit integers,
// so larger kilometre values overflow downstream.
const MaxRangeCeiling = 4_294_968

var ErrRangeOrder = errors.New("current range must not exceed max range")

// Vehicle range in kilometres.
type RangeSpec struct {
	Current uint32 `json:"current"`
	Max     uint32 `json:"max"`
}

func (r RangeSpec) Validate() error {
	if r.Current >= MaxRangeCeiling || r.Max >= MaxRangeCeiling {
		return fmt.Errorf("range values must be below %d km", MaxRangeCeiling)
	}
	if r.Current > r.Max {
		return ErrRangeOrder
	}
	return nil
}

// Fully resolved input for a single route computation.
type RouteRequest struct {
	Start     Coordinate
	Goal      Coordinate
	Mode      TransportMode
	Objective Objective
	Range     RangeSpec
}

func (r RouteRequest) Validate() error {
	if err := r.Start.Validate(); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	if err := r.Goal.Validate(); err != nil {
		return fmt.Errorf("goal: %w", err)
	}
	if !r.Mode.IsValid() {
		return fmt.Errorf("invalid transport mode %q", r.Mode)
	}
	if !r.Objective.IsValid() {
		return fmt.Errorf("invalid routing objective %q", r.Objective)
	}
	return r.Range.Validate()
}

// Output of the routing service for one request.
// ChargingStops is the ordered subsequence of Path where the vehicle recharges.
type RouteResult struct {
	Path            []Coordinate
	DurationSeconds float64
	DistanceMeters  float64
	ChargingStops   []Coordinate
}

// Clone returns a deep copy of r.
func (r RouteResult) Clone() RouteResult {
	out := RouteResult{
		DurationSeconds: r.DurationSeconds,
		DistanceMeters:  r.DistanceMeters,
	}
	if r.Path != nil {
		out.Path = append([]Coordinate(nil), r.Path...)
	}
	if r.ChargingStops != nil {
		out.ChargingStops = append([]Coordinate(nil), r.ChargingStops...)
	}
	return out
}

// Polyline is only drawable with at least two points.
func (r RouteResult) HasPolyline() bool { return len(r.Path) >= 2 }
