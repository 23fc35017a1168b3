package api

import (
	"context"
	"encoding/json"
	"ev-route-planner/internal/adapters/fake"
	"ev-route-planner/internal/adapters/httpclient"
	"ev-route-planner/internal/domain"
	"ev-route-planner/internal/planner"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	handler  http.Handler
	session  *planner.Session
	router   *fake.Router
	geocoder *fake.Geocoder
}

func newTestServer(t *testing.T) testServer {
	t.Helper()
	r := fake.NewRouter(domain.RouteResult{
		Path:            []domain.Coordinate{{Lat: 48.77, Lon: 9.18}, {Lat: 48.74, Lon: 9.31}},
		DurationSeconds: 3665,
		DistanceMeters:  12345,
	})
	r.SetStations([]domain.Coordinate{{Lat: 48.7, Lon: 9.2}})
	g := fake.NewGeocoder()
	s := planner.NewSession(planner.Deps{
		Geocoder: g,
		Router:   r,
		Stations: r,
		Center:   domain.Coordinate{Lat: 48.7758, Lon: 9.1829},
	})
	t.Cleanup(s.Close)
	return testServer{handler: NewRouter(s, nil), session: s, router: r, geocoder: g}
}

func (ts testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func (ts testServer) ready(t *testing.T) {
	t.Helper()
	require.Equal(t, http.StatusOK, ts.do(t, "POST", "/session/points", `{"lat":48.77,"lon":9.18}`).Code)
	require.Equal(t, http.StatusOK, ts.do(t, "POST", "/session/points", `{"lat":48.74,"lon":9.31}`).Code)
	require.Equal(t, http.StatusOK, ts.do(t, "PUT", "/session/range", `{"field":"max","value":"50"}`).Code)
	require.Equal(t, http.StatusOK, ts.do(t, "PUT", "/session/range", `{"field":"current","value":"50"}`).Code)
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, "GET", "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
	body := decode[map[string]any](t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, ts.session.ID, body["session"])
	assert.Equal(t, false, body["route_computing"])

	rec = ts.do(t, "POST", "/health", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRequestIDIsEchoed(t *testing.T) {
	ts := newTestServer(t)
	req := httptest.NewRequest("GET", "/health", nil)
	req.Header.Set("X-Request-Id", "abc-123")
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-Id"))
}

func TestClickFillsSlotsThenIgnores(t *testing.T) {
	ts := newTestServer(t)

	want := []struct {
		slot     string
		accepted bool
	}{{"start", true}, {"goal", true}, {"none", false}}

	for i, w := range want {
		rec := ts.do(t, "POST", "/session/points", `{"lat":48.7,"lon":9.1}`)
		require.Equal(t, http.StatusOK, rec.Code)
		got := decode[map[string]any](t, rec)
		assert.Equal(t, w.slot, got["slot"], "click %d", i)
		assert.Equal(t, w.accepted, got["accepted"], "click %d", i)
	}
}

func TestClickRejectsBadInput(t *testing.T) {
	ts := newTestServer(t)

	assert.Equal(t, http.StatusBadRequest, ts.do(t, "POST", "/session/points", `{"lat":1}`).Code)
	assert.Equal(t, http.StatusBadRequest, ts.do(t, "POST", "/session/points", `not json`).Code)
	assert.Equal(t, http.StatusBadRequest, ts.do(t, "POST", "/session/points", `{"lat":1,"lon":2}{}`).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, ts.do(t, "POST", "/session/points", `{"lat":95,"lon":2}`).Code)
}

func TestRangeValidation(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, "PUT", "/session/range", `{"field":"current","value":"12x"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, planner.ErrInvalidRange.Error(), decode[map[string]string](t, rec)["error"])

	require.Equal(t, http.StatusOK, ts.do(t, "PUT", "/session/range", `{"field":"max","value":"100"}`).Code)
	rec = ts.do(t, "PUT", "/session/range", `{"field":"current","value":"101"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = ts.do(t, "PUT", "/session/range", `{"field":"speed","value":"1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	form := decode[map[string]any](t, ts.do(t, "GET", "/session/form", ""))
	assert.Equal(t, "", form["current_range"])
	assert.Equal(t, "100", form["max_range"])
}

func TestOptions(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, "PUT", "/session/options", `{"mode":"bike","objective":"distance"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	form := decode[map[string]any](t, rec)
	assert.Equal(t, "bike", form["mode"])
	assert.Equal(t, "distance", form["objective"])

	rec = ts.do(t, "PUT", "/session/options", `{"mode":"plane","objective":"time"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, domain.ObjectiveDistance, ts.session.Form.Values().Objective)
}

func TestRouteIncomplete(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, "POST", "/session/route", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, planner.ErrStartUnset.Error(), decode[map[string]string](t, rec)["error"])
	assert.Equal(t, 0, ts.router.RouteCalls())
}

func TestRouteSuccess(t *testing.T) {
	ts := newTestServer(t)
	ts.ready(t)

	rec := ts.do(t, "POST", "/session/route", "")
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode[planner.TripView](t, rec)
	assert.Equal(t, "1h 1min", view.Duration)
	assert.Equal(t, 12.3, view.DistanceKm)
	assert.Empty(t, view.ChargingStops)

	m := decode[planner.MapView](t, ts.do(t, "GET", "/session/map", ""))
	assert.Len(t, m.Polyline, 2)
}

func TestRouteBackendErrorIsVerbatim(t *testing.T) {
	ts := newTestServer(t)
	ts.ready(t)
	ts.router.SetError(&httpclient.StatusError{Code: 500, Message: "No path found, start is goal"})

	rec := ts.do(t, "POST", "/session/route", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "No path found, start is goal", decode[map[string]string](t, rec)["error"])
}

func TestRouteInFlightConflict(t *testing.T) {
	ts := newTestServer(t)
	ts.ready(t)
	release := ts.router.HoldRoute()

	done := make(chan int, 1)
	go func() { done <- ts.do(t, "POST", "/session/route", "").Code }()
	require.Eventually(t, func() bool { return ts.router.RouteCalls() == 1 }, time.Second, time.Millisecond)

	rec := ts.do(t, "POST", "/session/route", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	release()
	assert.Equal(t, http.StatusOK, <-done)
	assert.Equal(t, 1, ts.router.RouteCalls())
}

func TestSuggestAndSelect(t *testing.T) {
	ts := newTestServer(t)
	ts.geocoder.SetResult("Esslingen", []domain.Suggestion{
		{Name: "Esslingen am Neckar", Coordinates: domain.Coordinate{Lat: 48.74, Lon: 9.31}},
	})

	require.Equal(t, http.StatusAccepted, ts.do(t, "PUT", "/session/query", `{"text":"Esslingen"}`).Code)
	ts.session.Suggest.Wait()

	rec := ts.do(t, "POST", "/session/suggestions/0/select", `{"as":"goal"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "goal", decode[map[string]any](t, rec)["slot"])
	assert.Equal(t, "Esslingen am Neckar", ts.session.Waypoints.Goal().Name)

	assert.Equal(t, http.StatusUnprocessableEntity, ts.do(t, "POST", "/session/suggestions/0/select", "").Code)
	assert.Equal(t, http.StatusBadRequest, ts.do(t, "POST", "/session/suggestions/x/select", "").Code)
}

func TestChargingToggleAndReset(t *testing.T) {
	ts := newTestServer(t)
	initial := ts.session.Snapshot()

	rec := ts.do(t, "POST", "/session/charging", "")
	require.Equal(t, http.StatusOK, rec.Code)
	m := decode[planner.MapView](t, rec)
	assert.True(t, m.ChargingVisible)
	assert.Len(t, m.ChargingStations, 1)

	rec = ts.do(t, "POST", "/session/charging", `{"visible":false}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[planner.MapView](t, rec).ChargingVisible)
	assert.Equal(t, 1, ts.router.StationCalls())

	ts.ready(t)
	_, err := ts.session.Go(context.Background())
	require.NoError(t, err)

	rec = ts.do(t, "POST", "/session/reset", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, initial, ts.session.Snapshot())
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, "GET", "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
