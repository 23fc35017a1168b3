package planner

import (
	"ev-route-planner/internal/domain"
)

// PointSelector routes a chosen location into the waypoint store.
type PointSelector struct {
	store *WaypointStore
}

func NewPointSelector(store *WaypointStore) *PointSelector {
	return &PointSelector{store: store}
}

// Accept fills the first empty slot (start, then goal). When both are set
// the point is ignored and Accept reports SlotNone, false.
func (p *PointSelector) Accept(w domain.Waypoint) (Slot, bool) {
	slot := p.store.fillFirstEmpty(w)
	return slot, slot != SlotNone
}

// Assign stores w in the named slot, replacing whatever was there.
func (p *PointSelector) Assign(slot Slot, w domain.Waypoint) error {
	switch slot {
	case SlotStart:
		p.store.SetStart(w)
	case SlotGoal:
		p.store.SetGoal(w)
	default:
		return ErrInvalidSlot
	}
	return nil
}
