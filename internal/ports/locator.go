package ports

import (
	"context"
	"ev-route-planner/internal/domain"
	"time"
)

// Best-effort position of the device running the planner.
type Position struct {
	Coordinate domain.Coordinate
	// When the position was determined; used for cache tolerance checks.
	At time.Time
}

type Locator interface {
	Locate(ctx context.Context) (Position, error)
}
