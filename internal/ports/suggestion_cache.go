package ports

import (
	"context"
	"ev-route-planner/internal/domain"
)

// Cache of geocoding results keyed by normalized query text.
// Keys are expected to be normalized by the caller.
type SuggestionCache interface {
	// ok is false on a miss; err is reserved for backend failures.
	Get(ctx context.Context, query string) (_ []domain.Suggestion, ok bool, err error)
	Put(ctx context.Context, query string, suggestions []domain.Suggestion) error
}
