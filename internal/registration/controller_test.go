package registration

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sor-sim/sor/internal/escalate"
	"github.com/sor-sim/sor/internal/events"
	"github.com/sor-sim/sor/internal/model"
	"github.com/sor-sim/sor/internal/pqueue"
	"github.com/sor-sim/sor/internal/state"
)

func newTestController(t *testing.T, kOpen, kClose int) (*Controller, *pqueue.Queue[*model.Patient], *state.State, *escalate.Registry) {
	t.Helper()
	regQueue := pqueue.New[*model.Patient]()
	triageQueue := pqueue.New[*model.Patient]()
	replies := pqueue.NewReplyBox[model.Reply]()
	st := state.New(100, time.Now())
	registry := escalate.NewRegistry()
	ctlCh := registry.Register("registration-controller")

	c := &Controller{
		Queue:       regQueue,
		TriageQueue: triageQueue,
		Replies:     replies,
		State:       st,
		Bus:         events.NewBus(time.Now()),
		Registry:    registry,
		KOpen:       kOpen,
		KClose:      kClose,
		Speed:       1000,
		Rand:        rand.New(rand.NewSource(1)),
		Escalations: ctlCh,
	}
	return c, regQueue, st, registry
}

func TestController_OpensDesk2AtKOpen(t *testing.T) {
	c, regQueue, st, registry := newTestController(t, 3, 1)
	c.Speed = 10 // desk #2 must stay open long enough for the poll below to see it

	done := make(chan error, 1)
	go func() { done <- c.Run(context.Background()) }()

	for i := 0; i < 3; i++ {
		regQueue.Push(model.RegTagOrdinary, &model.Patient{ID: "p"})
	}

	require.Eventually(t, st.Window2Open, time.Second, 5*time.Millisecond, "desk #2 should open once queue length reaches K_open")

	require.NoError(t, registry.Escalate(context.Background(), escalate.Escalation{Kind: escalate.KindTerminate}))
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("controller did not exit on terminate")
	}
}

func TestController_ClosesDesk2BelowKClose(t *testing.T) {
	c, regQueue, st, registry := newTestController(t, 2, 1)
	c.Speed = 10 // desk #2 must stay open long enough for the poll below to see it

	done := make(chan error, 1)
	go func() { done <- c.Run(context.Background()) }()

	p1 := &model.Patient{ID: "p1"}
	p2 := &model.Patient{ID: "p2"}
	regQueue.Push(model.RegTagOrdinary, p1)
	regQueue.Push(model.RegTagOrdinary, p2)

	require.Eventually(t, st.Window2Open, time.Second, 5*time.Millisecond)

	// Desk #2 drains the queue below K_close itself, so the hysteresis
	// predicate fires closed.
	require.Eventually(t, func() bool { return !st.Window2Open() }, time.Second, 5*time.Millisecond,
		"desk #2 should close once queue length drops below K_close")
	assert.Zero(t, regQueue.Len(), "desk #2 closes only after the queue has dropped below K_close")
	assert.Equal(t, 2, c.TriageQueue.Len(), "desk #2 finishes and forwards every patient it took before closing")

	require.NoError(t, registry.Escalate(context.Background(), escalate.Escalation{Kind: escalate.KindTerminate}))
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("controller did not exit on terminate")
	}
}

func TestController_NoThrashingBetweenThresholds(t *testing.T) {
	// K_open=5, K_close=2: a count of 3 or 4 must neither open (below K_open)
	// nor close (at/above K_close) — this is the gap hysteresis exists for.
	c, regQueue, st, _ := newTestController(t, 5, 2)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Run(ctx)

	for i := 0; i < 4; i++ {
		regQueue.Push(model.RegTagOrdinary, &model.Patient{ID: "p"})
	}
	time.Sleep(20 * time.Millisecond)
	assert.False(t, st.Window2Open(), "count below K_open must not open desk #2")
}
