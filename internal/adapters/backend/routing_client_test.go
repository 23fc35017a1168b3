package backend

import (
	"context"
	"encoding/json"
	"errors"
	"ev-route-planner/internal/adapters/httpclient"
	"ev-route-planner/internal/domain"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRequest() domain.RouteRequest {
	return domain.RouteRequest{
		Start:     domain.Coordinate{Lat: 48.78, Lon: 9.18},
		Goal:      domain.Coordinate{Lat: 48.14, Lon: 11.58},
		Mode:      domain.ModeCar,
		Objective: domain.ObjectiveTime,
		Range:     domain.RangeSpec{Current: 50, Max: 300},
	}
}

func TestComputeRouteWireFormat(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/shortest-path", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Write([]byte(`{
			"path":[{"lat":48.78,"lon":9.18},{"lat":48.5,"lon":10.0},{"lat":48.14,"lon":11.58}],
			"time":3665,
			"distance":12345,
			"visited_charging_coords":[{"lat":48.5,"lon":10.0}]
		}`))
	}))
	defer srv.Close()

	c, err := NewRoutingClient(srv.URL+"/", time.Second)
	require.NoError(t, err)

	res, err := c.ComputeRoute(context.Background(), testRequest())
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"lat": 48.78, "lon": 9.18}, got["start"])
	assert.Equal(t, map[string]any{"lat": 48.14, "lon": 11.58}, got["goal"])
	assert.Equal(t, "car", got["transport"])
	assert.Equal(t, "time", got["routing"])
	assert.Equal(t, float64(50), got["current_range"])
	assert.Equal(t, float64(300), got["max_range"])

	assert.Len(t, res.Path, 3)
	assert.Equal(t, 3665.0, res.DurationSeconds)
	assert.Equal(t, 12345.0, res.DistanceMeters)
	assert.Equal(t, []domain.Coordinate{{Lat: 48.5, Lon: 10.0}}, res.ChargingStops)
}

func TestComputeRouteSurfacesBackendMessage(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "No path found, start is goal", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c, err := NewRoutingClient(srv.URL, time.Second)
	require.NoError(t, err)

	_, err = c.ComputeRoute(context.Background(), testRequest())
	var se *httpclient.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "No path found, start is goal", se.Error())
	assert.Equal(t, 1, calls)
}

func TestComputeRouteRejectsInvalidRequest(t *testing.T) {
	c, err := NewRoutingClient("http://unused.test", time.Second)
	require.NoError(t, err)

	req := testRequest()
	req.Range = domain.RangeSpec{Current: 10, Max: 5}
	_, err = c.ComputeRoute(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrRangeOrder)
}

func TestListChargingStations(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/charging-stations", r.URL.Path)
		w.Write([]byte(`{"charging_coords":[{"lat":1.5,"lon":2.5},{"lat":3,"lon":4}]}`))
	}))
	defer srv.Close()

	c, err := NewRoutingClient(srv.URL, time.Second)
	require.NoError(t, err)

	coords, err := c.ListChargingStations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.Coordinate{{Lat: 1.5, Lon: 2.5}, {Lat: 3, Lon: 4}}, coords)
}
