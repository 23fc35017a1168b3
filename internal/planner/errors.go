package planner

import (
	"errors"
	"ev-route-planner/internal/domain"
	"ev-route-planner/internal/ports"
)

var (
	ErrStartUnset    = errors.New("please choose a start point")
	ErrGoalUnset     = errors.New("please choose a destination")
	ErrRangeMissing  = errors.New("please enter current and max range")
	ErrRangeOrder    = domain.ErrRangeOrder
	ErrInvalidRange  = errors.New("range must be a whole number of kilometres below 4294968")
	ErrInvalidPoint  = errors.New("selected point is outside the map")
	ErrInvalidSlot   = errors.New("unknown waypoint slot")
	ErrNoSuggestion  = errors.New("no such suggestion")
	ErrRouteInFlight = errors.New("a route is already being computed")
	ErrStale         = errors.New("result superseded by a newer request or a reset")
)

// Errors rejected locally, before any network call.
var validationErrors = []error{
	ErrStartUnset,
	ErrGoalUnset,
	ErrRangeMissing,
	ErrRangeOrder,
	ErrInvalidRange,
	ErrInvalidPoint,
	ErrInvalidSlot,
	ErrNoSuggestion,
}

func IsValidation(err error) bool {
	for _, v := range validationErrors {
		if errors.Is(err, v) {
			return true
		}
	}
	return false
}

// UserMessage picks the text shown to users for err: the remote service's
// message verbatim, the validation message, or fallback for transport failures.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}

	var be ports.BackendError
	if errors.As(err, &be) && be.BackendMessage() != "" {
		return be.BackendMessage()
	}

	for _, v := range append(validationErrors, ErrRouteInFlight) {
		if errors.Is(err, v) {
			return v.Error()
		}
	}

	return fallback
}
