package domain

// MaxSuggestions caps the number of geocoding results kept per query.
const MaxSuggestions = 7

// Single geocoding result offered to the user.
type Suggestion struct {
	Name        string     `json:"name"`
	Coordinates Coordinate `json:"coordinates"`
}

func (s Suggestion) Waypoint() Waypoint {
	return NewWaypoint(s.Name, s.Coordinates)
}
