package ports

import (
	"context"
	"ev-route-planner/internal/domain"
)

// Contract for free-text address search.
type Geocoder interface {
	// Return at most domain.MaxSuggestions results, coordinates already in (lat, lon) order.
	Search(ctx context.Context, query string) ([]domain.Suggestion, error)
}
