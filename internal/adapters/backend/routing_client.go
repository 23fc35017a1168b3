package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"ev-route-planner/internal/adapters/httpclient"
	"ev-route-planner/internal/domain"
	"ev-route-planner/internal/platform/obs"
	"fmt"
	"net/http"
	"strings"
	"time"
)

type latLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type shortestPathRequest struct {
	Start        latLon `json:"start"`
	Goal         latLon `json:"goal"`
	Transport    string `json:"transport"`
	Routing      string `json:"routing"`
	CurrentRange uint32 `json:"current_range"`
	MaxRange     uint32 `json:"max_range"`
}

type shortestPathResponse struct {
	Path                  []latLon `json:"path"`
	Time                  float64  `json:"time"`
	Distance              float64  `json:"distance"`
	VisitedChargingCoords []latLon `json:"visited_charging_coords"`
}

type chargingStationsResponse struct {
	ChargingCoords []latLon `json:"charging_coords"`
}

// RoutingClient talks to the EV routing service.
// It implements ports.RouteProvider and ports.ChargingStationProvider.
type RoutingClient struct {
	baseURL string
	// Route computations are never retried: a repeated request could
	// overlap with the first one on the server.
	compute *httpclient.Client
	list    *httpclient.Client
}

func NewRoutingClient(baseURL string, timeout time.Duration) (*RoutingClient, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("routing service url is empty")
	}

	return &RoutingClient{
		baseURL: baseURL,
		compute: httpclient.New(timeout, httpclient.WithMaxAttempts(1)),
		list:    httpclient.New(timeout, httpclient.WithMaxAttempts(3)),
	}, nil
}

func (c *RoutingClient) ComputeRoute(
	ctx context.Context,
	req domain.RouteRequest,
) (_ domain.RouteResult, err error) {
	defer obs.Time(ctx, "router.ComputeRoute")(&err)

	if err := req.Validate(); err != nil {
		return domain.RouteResult{}, fmt.Errorf("compute route: %w", err)
	}

	body := shortestPathRequest{
		Start:        latLon{Lat: req.Start.Lat, Lon: req.Start.Lon},
		Goal:         latLon{Lat: req.Goal.Lat, Lon: req.Goal.Lon},
		Transport:    string(req.Mode),
		Routing:      string(req.Objective),
		CurrentRange: req.Range.Current,
		MaxRange:     req.Range.Max,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return domain.RouteResult{}, fmt.Errorf("marshal route request: %w", err)
	}

	endpoint := c.baseURL + "/shortest-path"
	resp, err := c.compute.DoWithRetry(ctx, func() (*http.Request, error) {
		return c.compute.NewRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	})
	if err != nil {
		return domain.RouteResult{}, fmt.Errorf("route request: %w", err)
	}
	defer resp.Body.Close()

	var decoded shortestPathResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.RouteResult{}, fmt.Errorf("decode route response: %w", err)
	}

	if decoded.Time < 0 || decoded.Distance < 0 {
		return domain.RouteResult{}, fmt.Errorf("route response has negative metrics: time=%v distance=%v", decoded.Time, decoded.Distance)
	}

	path, err := toCoordinates(decoded.Path)
	if err != nil {
		return domain.RouteResult{}, fmt.Errorf("decode route path: %w", err)
	}
	stops, err := toCoordinates(decoded.VisitedChargingCoords)
	if err != nil {
		return domain.RouteResult{}, fmt.Errorf("decode charging stops: %w", err)
	}

	return domain.RouteResult{
		Path:            path,
		DurationSeconds: decoded.Time,
		DistanceMeters:  decoded.Distance,
		ChargingStops:   stops,
	}, nil
}

func (c *RoutingClient) ListChargingStations(ctx context.Context) (_ []domain.Coordinate, err error) {
	defer obs.Time(ctx, "router.ListChargingStations")(&err)

	endpoint := c.baseURL + "/charging-stations"
	resp, err := c.list.DoWithRetry(ctx, func() (*http.Request, error) {
		return c.list.NewRequest(ctx, http.MethodGet, endpoint, nil)
	})
	if err != nil {
		return nil, fmt.Errorf("charging stations request: %w", err)
	}
	defer resp.Body.Close()

	var decoded chargingStationsResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode charging stations response: %w", err)
	}

	coords, err := toCoordinates(decoded.ChargingCoords)
	if err != nil {
		return nil, fmt.Errorf("decode charging stations: %w", err)
	}
	return coords, nil
}

func toCoordinates(in []latLon) ([]domain.Coordinate, error) {
	out := make([]domain.Coordinate, 0, len(in))
	for i, p := range in {
		c := domain.Coordinate{Lat: p.Lat, Lon: p.Lon}
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("point %d: %w", i, err)
		}
		out = append(out, c)
	}
	return out, nil
}
