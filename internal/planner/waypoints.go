package planner

import (
	"ev-route-planner/internal/domain"
	"slices"
	"sync"
)

// Slot names one of the two trip endpoints.
type Slot int

const (
	SlotNone Slot = iota
	SlotStart
	SlotGoal
)

func (s Slot) String() string {
	switch s {
	case SlotStart:
		return "start"
	case SlotGoal:
		return "goal"
	default:
		return "none"
	}
}

// ParseSlot accepts "start" and "goal" ("destination" is an alias for goal).
func ParseSlot(s string) (Slot, error) {
	switch s {
	case "start":
		return SlotStart, nil
	case "goal", "destination":
		return SlotGoal, nil
	default:
		return SlotNone, ErrInvalidSlot
	}
}

// Event is delivered to subscribers after every store mutation.
type Event struct {
	Start domain.Waypoint
	Goal  domain.Waypoint
}

// WaypointStore holds the trip's start and goal. It performs no validation;
// callers check coordinates before storing them.
type WaypointStore struct {
	mu    sync.RWMutex
	start domain.Waypoint
	goal  domain.Waypoint
	subs  []func(Event)
}

func NewWaypointStore() *WaypointStore {
	return &WaypointStore{}
}

// Subscribe registers fn to be called after each mutation. Callbacks run
// on the mutating goroutine without the store lock held.
func (s *WaypointStore) Subscribe(fn func(Event)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

func (s *WaypointStore) SetStart(w domain.Waypoint) {
	s.mu.Lock()
	s.start = w.Clone()
	s.mu.Unlock()
	s.publish()
}

func (s *WaypointStore) SetGoal(w domain.Waypoint) {
	s.mu.Lock()
	s.goal = w.Clone()
	s.mu.Unlock()
	s.publish()
}

func (s *WaypointStore) Clear() {
	s.mu.Lock()
	s.start = domain.Waypoint{}
	s.goal = domain.Waypoint{}
	s.mu.Unlock()
	s.publish()
}

func (s *WaypointStore) Start() domain.Waypoint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.start.Clone()
}

func (s *WaypointStore) Goal() domain.Waypoint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.goal.Clone()
}

// Both returns start and goal read under a single lock.
func (s *WaypointStore) Both() (start, goal domain.Waypoint) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.start.Clone(), s.goal.Clone()
}

// fillFirstEmpty stores w in the first unset slot, start before goal.
func (s *WaypointStore) fillFirstEmpty(w domain.Waypoint) Slot {
	s.mu.Lock()
	var slot Slot
	switch {
	case !s.start.IsSet():
		s.start = w.Clone()
		slot = SlotStart
	case !s.goal.IsSet():
		s.goal = w.Clone()
		slot = SlotGoal
	}
	s.mu.Unlock()

	if slot != SlotNone {
		s.publish()
	}
	return slot
}

func (s *WaypointStore) publish() {
	s.mu.RLock()
	ev := Event{Start: s.start.Clone(), Goal: s.goal.Clone()}
	subs := slices.Clone(s.subs)
	s.mu.RUnlock()

	for _, fn := range subs {
		fn(ev)
	}
}
