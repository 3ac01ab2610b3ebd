package simlog

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sor-sim/sor/internal/escalate"
	"github.com/sor-sim/sor/internal/events"
)

func TestLogger_WritesBannerAndEvents(t *testing.T) {
	start := time.Now()
	bus := events.NewBus(start)
	reg := escalate.NewRegistry()
	ch := reg.Register("logger")

	path := filepath.Join(t.TempDir(), "sor.log")
	l := New(bus, start, path, ch)

	done := make(chan error, 1)
	go func() { done <- l.Run() }()

	// Give the logger a moment to subscribe before emitting.
	time.Sleep(10 * time.Millisecond)
	bus.Emit(events.Event{Type: events.PatientArrived, Patient: "p1"})
	time.Sleep(10 * time.Millisecond)

	require.NoError(t, reg.Escalate(context.Background(), escalate.Escalation{Kind: escalate.KindTerminate}))

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("logger did not exit after terminate")
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "simulation started")
	assert.Contains(t, content, "patient.arrived")
	assert.Contains(t, content, "p1")
}

func TestLogger_IgnoresEvacuation(t *testing.T) {
	start := time.Now()
	bus := events.NewBus(start)
	reg := escalate.NewRegistry()
	ch := reg.Register("logger")

	path := filepath.Join(t.TempDir(), "sor.log")
	l := New(bus, start, path, ch)

	done := make(chan error, 1)
	go func() { done <- l.Run() }()

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, reg.Escalate(context.Background(), escalate.Escalation{Kind: escalate.KindEvacuate}))

	select {
	case <-done:
		t.Fatal("logger must not exit on evacuation alone")
	case <-time.After(50 * time.Millisecond):
	}

	require.NoError(t, reg.Escalate(context.Background(), escalate.Escalation{Kind: escalate.KindTerminate}))
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("logger did not exit after the follow-up terminate")
	}
}

func TestLogger_LineFormat(t *testing.T) {
	start := time.Now().Add(-2 * time.Second)
	bus := events.NewBus(start)
	reg := escalate.NewRegistry()
	ch := reg.Register("logger")

	path := filepath.Join(t.TempDir(), "sor.log")
	l := New(bus, start, path, ch)

	done := make(chan error, 1)
	go func() { done <- l.Run() }()
	time.Sleep(10 * time.Millisecond)
	bus.Emit(events.Event{Type: events.RegOpened})
	time.Sleep(10 * time.Millisecond)
	require.NoError(t, reg.Escalate(context.Background(), escalate.Escalation{Kind: escalate.KindTerminate}))
	<-done

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.GreaterOrEqual(t, len(lines), 2)
	assert.True(t, strings.HasPrefix(lines[1], "["), "event line must start with the elapsed-time bracket")
	assert.True(t, strings.Contains(lines[1], "s]"), "elapsed time must be suffixed with 's]'")
}
