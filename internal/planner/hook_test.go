package planner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResetHookInstallsOnce(t *testing.T) {
	var h ResetHook
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	assert.True(t, h.Install(ctx))
	assert.False(t, h.Install(ctx))
}

func TestResetHookResetsRegisteredSessions(t *testing.T) {
	s, _, _ := newTestSession(t)
	var h ResetHook
	h.Register(s)

	_, err := s.ClickMap(stuttgart)
	require.NoError(t, err)
	require.NoError(t, s.SetRange(FieldMax, "10"))

	h.Trigger()
	assert.False(t, s.Waypoints.Start().IsSet())
	assert.Empty(t, s.Form.Values().MaxRange)
}
