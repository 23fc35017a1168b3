package fake

import (
	"context"
	"ev-route-planner/internal/domain"
	"ev-route-planner/internal/ports"
	"time"
)

// Locator reports Position after Delay, or Err. A Delay longer than the
// caller's deadline behaves like a device that never answers.
type Locator struct {
	Position domain.Coordinate
	Delay    time.Duration
	Err      error
}

func (l Locator) Locate(ctx context.Context) (ports.Position, error) {
	if l.Delay > 0 {
		t := time.NewTimer(l.Delay)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
			return ports.Position{}, ctx.Err()
		}
	}
	if l.Err != nil {
		return ports.Position{}, l.Err
	}
	return ports.Position{Coordinate: l.Position, At: time.Now()}, nil
}
