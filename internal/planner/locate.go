package planner

import (
	"context"
	"ev-route-planner/internal/domain"
	"ev-route-planner/internal/platform/metrics"
	"ev-route-planner/internal/ports"
	"time"

	"github.com/sirupsen/logrus"
)

const DefaultLocateTimeout = 5 * time.Second

type CenterSource string

const (
	CenterDevice  CenterSource = "device"
	CenterDefault CenterSource = "default"
)

// MapCenter is where the map view opens.
type MapCenter struct {
	Coordinate domain.Coordinate `json:"coordinate"`
	Source     CenterSource      `json:"source"`
}

// Locate makes a single bounded attempt to find the device position.
// Any failure is logged and the fallback centre is used instead.
func Locate(ctx context.Context, locator ports.Locator, timeout time.Duration, fallback domain.Coordinate) MapCenter {
	def := MapCenter{Coordinate: fallback, Source: CenterDefault}
	if locator == nil {
		return def
	}
	if timeout <= 0 {
		timeout = DefaultLocateTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	metrics.RequestsIssued.WithLabelValues(metrics.OpLocate).Inc()
	pos, err := locator.Locate(ctx)
	if err == nil {
		err = pos.Coordinate.Validate()
	}
	if err != nil {
		metrics.RequestFailures.WithLabelValues(metrics.OpLocate).Inc()
		logrus.WithError(err).Info("geolocation unavailable, using default map centre")
		return def
	}

	return MapCenter{Coordinate: pos.Coordinate, Source: CenterDevice}
}
