package planner

import (
	"context"
	"ev-route-planner/internal/domain"
	"ev-route-planner/internal/platform/metrics"
	"ev-route-planner/internal/ports"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

const chargingFallback = "charging stations unavailable"

// ChargingOverlay shows or hides the full set of charging stations,
// independently of any route.
type ChargingOverlay struct {
	provider ports.ChargingStationProvider
	notify   Notifier

	mu sync.Mutex
	// visible flips as soon as a show starts; shown only once stations
	// have loaded. A failed show falls back to shown.
	visible  bool
	shown    bool
	stations []domain.Coordinate
	seq      uint64
	cancel   context.CancelFunc
}

func NewChargingOverlay(provider ports.ChargingStationProvider, notify Notifier) *ChargingOverlay {
	return &ChargingOverlay{provider: provider, notify: notify}
}

// Show marks the overlay visible and loads the station set. A failed load
// restores the previous state. A Hide or Reset during the load wins.
func (c *ChargingOverlay) Show(ctx context.Context) error {
	c.mu.Lock()
	c.seq++
	seq := c.seq
	c.visible = true
	if c.cancel != nil {
		c.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.mu.Unlock()
	defer cancel()

	metrics.RequestsIssued.WithLabelValues(metrics.OpCharging).Inc()
	stations, err := c.provider.ListChargingStations(ctx)

	c.mu.Lock()
	if seq != c.seq {
		c.mu.Unlock()
		metrics.StaleResponses.WithLabelValues(metrics.OpCharging).Inc()
		return fmt.Errorf("show charging stations: %w", ErrStale)
	}
	c.cancel = nil
	if err != nil {
		c.visible = c.shown
		c.mu.Unlock()
		metrics.RequestFailures.WithLabelValues(metrics.OpCharging).Inc()
		logrus.WithError(err).Warn("charging station list failed")
		c.notify.Notify(LevelError, UserMessage(err, chargingFallback))
		return fmt.Errorf("show charging stations: %w", err)
	}
	c.shown = true
	c.stations = append([]domain.Coordinate(nil), stations...)
	c.mu.Unlock()

	logrus.WithField("stations", len(stations)).Debug("charging stations shown")
	return nil
}

// Hide clears the visible set without any network call.
func (c *ChargingOverlay) Hide() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	c.visible = false
	c.shown = false
	c.stations = nil
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

// Toggle hides a visible overlay and shows a hidden one.
func (c *ChargingOverlay) Toggle(ctx context.Context) error {
	if c.Visible() {
		c.Hide()
		return nil
	}
	return c.Show(ctx)
}

func (c *ChargingOverlay) Visible() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.visible
}

func (c *ChargingOverlay) Stations() []domain.Coordinate {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.Coordinate(nil), c.stations...)
}
