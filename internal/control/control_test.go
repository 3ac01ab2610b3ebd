package control

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sor-sim/sor/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "sor-*.log")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	cfg := &config.Config{
		N:                     4,
		Speed:                 200,
		Interval:              5 * time.Millisecond,
		Seed:                  1,
		MaxConcurrentPatients: 0,
		LogPath:               f.Name(),
	}
	cfg.ApplyDefaults()
	require.NoError(t, cfg.Validate())
	return cfg
}

// TestController_RunsEndToEndAndShutsDownCleanly exercises the whole worker
// graph at high speed for a short wall-clock window: patients must actually
// flow from admission through to exit, and Run must return promptly once
// its context is canceled.
func TestController_RunsEndToEndAndShutsDownCleanly(t *testing.T) {
	cfg := testConfig(t)
	ctrl := New(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ctrl.Run(ctx) }()

	time.Sleep(150 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(shutdownGrace + 2*time.Second):
		t.Fatal("controller did not shut down within the grace period")
	}

	data, err := os.ReadFile(cfg.LogPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "simulation started")
}

// TestController_DurationExpiresOnItsOwn verifies a configured Duration
// ends the run without an external cancel.
func TestController_DurationExpiresOnItsOwn(t *testing.T) {
	cfg := testConfig(t)
	cfg.Duration = 80 * time.Millisecond
	ctrl := New(cfg)

	done := make(chan error, 1)
	go func() { done <- ctrl.Run(context.Background()) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(shutdownGrace + 2*time.Second):
		t.Fatal("controller did not exit when its duration elapsed")
	}
}

// TestController_EvacuateBroadcastsBeforeShutdown exercises the operator
// evacuation path end to end.
func TestController_EvacuateBroadcastsBeforeShutdown(t *testing.T) {
	cfg := testConfig(t)
	ctrl := New(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- ctrl.Run(ctx) }()

	time.Sleep(30 * time.Millisecond)
	require.NoError(t, ctrl.Evacuate(context.Background()))
	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(shutdownGrace + 2*time.Second):
		t.Fatal("controller did not shut down after evacuation")
	}
}
