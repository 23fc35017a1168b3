package planner

import (
	"context"
	"errors"
	"ev-route-planner/internal/adapters/fake"
	"ev-route-planner/internal/adapters/httpclient"
	"ev-route-planner/internal/domain"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRoute() domain.RouteResult {
	return domain.RouteResult{
		Path: []domain.Coordinate{
			{Lat: 48.7758, Lon: 9.1829},
			{Lat: 48.78, Lon: 9.19},
			{Lat: 48.80, Lon: 9.20},
		},
		DurationSeconds: 3665,
		DistanceMeters:  12345,
	}
}

type orchestratorFixture struct {
	router  *fake.Router
	store   *WaypointStore
	form    *RangeForm
	notices *NoticeLog
	orch    *Orchestrator
}

func newOrchestratorFixture(t *testing.T, ready bool) orchestratorFixture {
	t.Helper()
	f := orchestratorFixture{
		router:  fake.NewRouter(sampleRoute()),
		store:   NewWaypointStore(),
		notices: NewNoticeLog(),
	}
	f.form = NewRangeForm(f.notices)
	f.orch = NewOrchestrator(f.router, f.store, f.form, f.notices)

	if ready {
		f.store.SetStart(wp("Stuttgart", 48.7758, 9.1829))
		f.store.SetGoal(wp("Esslingen", 48.7406, 9.3108))
		require.NoError(t, f.form.SetMax("50"))
		require.NoError(t, f.form.SetCurrent("50"))
	}
	return f
}

func TestGoRejectsIncompleteInput(t *testing.T) {
	f := newOrchestratorFixture(t, false)

	_, err := f.orch.Go(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStartUnset)
	assert.ErrorIs(t, err, ErrGoalUnset)
	assert.ErrorIs(t, err, ErrRangeMissing)
	assert.True(t, IsValidation(err))
	assert.Equal(t, 0, f.router.RouteCalls())
	assert.False(t, f.orch.Computing())

	f.store.SetStart(wp("a", 1, 1))
	f.store.SetGoal(wp("b", 2, 2))
	require.NoError(t, f.form.SetCurrent("10"))

	_, err = f.orch.Go(context.Background())
	assert.ErrorIs(t, err, ErrRangeMissing)
	assert.NotErrorIs(t, err, ErrStartUnset)
	assert.Equal(t, 0, f.router.RouteCalls())
}

func TestGoCommitsRoute(t *testing.T) {
	f := newOrchestratorFixture(t, true)

	view, err := f.orch.Go(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "1h 1min", view.Duration)
	assert.Equal(t, 12.3, view.DistanceKm)
	assert.Len(t, view.Path, 3)
	assert.Empty(t, view.ChargingStops)
	assert.False(t, f.orch.Computing())

	reqs := f.router.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, domain.ModeCar, reqs[0].Mode)
	assert.Equal(t, domain.ObjectiveTime, reqs[0].Objective)
	assert.Equal(t, domain.RangeSpec{Current: 50, Max: 50}, reqs[0].Range)
	assert.Equal(t, 48.7406, reqs[0].Goal.Lat)

	assert.Equal(t, view, f.orch.View())
}

func TestGoWhileComputingMakesOneCall(t *testing.T) {
	f := newOrchestratorFixture(t, true)
	release := f.router.HoldRoute()

	done := make(chan error, 1)
	go func() {
		_, err := f.orch.Go(context.Background())
		done <- err
	}()
	require.Eventually(t, func() bool { return f.router.RouteCalls() == 1 }, time.Second, time.Millisecond)
	assert.True(t, f.orch.Computing())

	_, err := f.orch.Go(context.Background())
	assert.ErrorIs(t, err, ErrRouteInFlight)

	release()
	require.NoError(t, <-done)
	assert.Equal(t, 1, f.router.RouteCalls())
	assert.False(t, f.orch.Computing())
}

func TestGoSurfacesBackendMessageVerbatim(t *testing.T) {
	f := newOrchestratorFixture(t, true)
	_, err := f.orch.Go(context.Background())
	require.NoError(t, err)

	f.router.SetError(&httpclient.StatusError{Code: 500, Message: "No path found, start is goal"})
	_, err = f.orch.Go(context.Background())
	require.Error(t, err)

	assert.Equal(t, "No path found, start is goal", UserMessage(err, routeFallback))
	n, ok := f.notices.Last()
	require.True(t, ok)
	assert.Equal(t, "No path found, start is goal", n.Message)
	assert.Equal(t, LevelError, n.Level)

	// The previous route survives a failure.
	res, ok := f.orch.Result()
	require.True(t, ok)
	assert.Equal(t, 3665.0, res.DurationSeconds)
	assert.False(t, f.orch.Computing())
}

func TestGoTransportFailureUsesFallbackMessage(t *testing.T) {
	f := newOrchestratorFixture(t, true)
	f.router.SetError(errors.New("dial tcp 127.0.0.1:8000: connection refused"))

	_, err := f.orch.Go(context.Background())
	require.Error(t, err)

	n, _ := f.notices.Last()
	assert.Equal(t, "route service unavailable", n.Message)
	_, ok := f.orch.Result()
	assert.False(t, ok)
}

func TestResetDiscardsInFlightRoute(t *testing.T) {
	f := newOrchestratorFixture(t, true)
	release := f.router.HoldRoute()
	defer release()

	done := make(chan error, 1)
	go func() {
		_, err := f.orch.Go(context.Background())
		done <- err
	}()
	require.Eventually(t, func() bool { return f.router.RouteCalls() == 1 }, time.Second, time.Millisecond)

	f.orch.Reset()
	assert.False(t, f.orch.Computing())

	assert.ErrorIs(t, <-done, ErrStale)
	_, ok := f.orch.Result()
	assert.False(t, ok)
	assert.False(t, f.orch.Computing())
	assert.Empty(t, f.notices.Notices())

	// A fresh computation is possible right away.
	release()
	_, err := f.orch.Go(context.Background())
	require.NoError(t, err)
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "", UserMessage(nil, "x"))
	assert.Equal(t, "x", UserMessage(errors.New("boom"), "x"))
	assert.Equal(t, ErrRouteInFlight.Error(), UserMessage(ErrRouteInFlight, "x"))
	assert.Equal(t, ErrGoalUnset.Error(), UserMessage(errors.Join(ErrGoalUnset, ErrRangeMissing), "x"))
}
