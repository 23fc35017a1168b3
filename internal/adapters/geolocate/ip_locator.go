package geolocate

import (
	"context"
	"encoding/json"
	"errors"
	"ev-route-planner/internal/adapters/httpclient"
	"ev-route-planner/internal/domain"
	"ev-route-planner/internal/platform/obs"
	"ev-route-planner/internal/ports"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
)

type ipAPIResponse struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// IPLocator approximates the device position with an ip-api style lookup.
type IPLocator struct {
	client *httpclient.Client
	url    string
	now    func() time.Time
}

func NewIPLocator(url string, timeout time.Duration) (*IPLocator, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, errors.New("geolocation url is empty")
	}
	return &IPLocator{
		client: httpclient.New(timeout, httpclient.WithMaxAttempts(1)),
		url:    url,
		now:    time.Now,
	}, nil
}

func (l *IPLocator) Locate(ctx context.Context) (_ ports.Position, err error) {
	defer obs.Time(ctx, "geolocate.Locate")(&err)

	resp, err := l.client.DoWithRetry(ctx, func() (*http.Request, error) {
		return l.client.NewRequest(ctx, http.MethodGet, l.url, nil)
	})
	if err != nil {
		return ports.Position{}, fmt.Errorf("geolocation request: %w", err)
	}
	defer resp.Body.Close()

	var decoded ipAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return ports.Position{}, fmt.Errorf("decode geolocation response: %w", err)
	}
	if decoded.Status != "" && decoded.Status != "success" {
		return ports.Position{}, fmt.Errorf("geolocation denied: %s", decoded.Message)
	}

	c := domain.Coordinate{Lat: decoded.Lat, Lon: decoded.Lon}
	if err := c.Validate(); err != nil {
		return ports.Position{}, fmt.Errorf("geolocation position: %w", err)
	}

	return ports.Position{Coordinate: c, At: l.now()}, nil
}

// StaticLocator always reports the same position.
type StaticLocator struct {
	Coordinate domain.Coordinate
}

func (s StaticLocator) Locate(ctx context.Context) (ports.Position, error) {
	return ports.Position{Coordinate: s.Coordinate, At: time.Now()}, nil
}

// CachedLocator reuses the last position while it is younger than maxAge.
type CachedLocator struct {
	next   ports.Locator
	maxAge time.Duration
	now    func() time.Time

	mu   sync.Mutex
	last *ports.Position
}

func NewCachedLocator(next ports.Locator, maxAge time.Duration) *CachedLocator {
	return &CachedLocator{next: next, maxAge: maxAge, now: time.Now}
}

func (c *CachedLocator) Locate(ctx context.Context) (ports.Position, error) {
	c.mu.Lock()
	if c.last != nil && c.now().Sub(c.last.At) <= c.maxAge {
		p := *c.last
		c.mu.Unlock()
		return p, nil
	}
	c.mu.Unlock()

	p, err := c.next.Locate(ctx)
	if err != nil {
		return ports.Position{}, err
	}

	c.mu.Lock()
	c.last = &p
	c.mu.Unlock()
	return p, nil
}
