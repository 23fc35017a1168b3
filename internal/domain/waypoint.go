package domain

// A named, optionally unset geographic point (start or goal) of the current trip.
// A Waypoint without coordinates is unset.
type Waypoint struct {
	Name        string      `json:"name,omitempty"`
	Coordinates *Coordinate `json:"coordinates,omitempty"`
}

func NewWaypoint(name string, c Coordinate) Waypoint {
	return Waypoint{Name: name, Coordinates: &c}
}

func (w Waypoint) IsSet() bool { return w.Coordinates != nil }

// Clone returns a copy that shares no memory with w.
func (w Waypoint) Clone() Waypoint {
	if w.Coordinates == nil {
		return Waypoint{Name: w.Name}
	}
	c := *w.Coordinates
	return Waypoint{Name: w.Name, Coordinates: &c}
}
