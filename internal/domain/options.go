package domain

import (
	"fmt"
	"strings"
)

// TransportMode selects the road network the routing service searches.
type TransportMode string

const (
	ModeCar  TransportMode = "car"
	ModeBike TransportMode = "bike"
	ModeWalk TransportMode = "walk"
)

// DefaultMode is the transport mode of a fresh session.
const DefaultMode = ModeCar

// Objective is the quantity the routing service minimizes.
type Objective string

const (
	ObjectiveTime     Objective = "time"
	ObjectiveDistance Objective = "distance"
)

// DefaultObjective is the routing objective of a fresh session.
const DefaultObjective = ObjectiveTime

func (m TransportMode) IsValid() bool {
	switch m {
	case ModeCar, ModeBike, ModeWalk:
		return true
	default:
		return false
	}
}

func (o Objective) IsValid() bool {
	switch o {
	case ObjectiveTime, ObjectiveDistance:
		return true
	default:
		return false
	}
}

func ParseTransportMode(s string) (TransportMode, error) {
	m := TransportMode(strings.ToLower(strings.TrimSpace(s)))
	if !m.IsValid() {
		return "", fmt.Errorf("invalid transport mode %q, must be one of: %s, %s, %s", s, ModeCar, ModeBike, ModeWalk)
	}
	return m, nil
}

func ParseObjective(s string) (Objective, error) {
	o := Objective(strings.ToLower(strings.TrimSpace(s)))
	if !o.IsValid() {
		return "", fmt.Errorf("invalid routing objective %q, must be one of: %s, %s", s, ObjectiveTime, ObjectiveDistance)
	}
	return o, nil
}
