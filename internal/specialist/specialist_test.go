package specialist

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

func newTestSpecialist(t *testing.T, speed float64, seed int64) (*Specialist, *escalate.Registry, *state.State, *pqueue.ReplyBox[model.Reply]) {
	t.Helper()
	queue := pqueue.New[*model.Patient]()
	st := state.New(100, time.Now())
	replies := pqueue.NewReplyBox[model.Reply]()
	reg := escalate.NewRegistry()
	esc := reg.Register("specialist-1")

	s := New(1, "specialist-1", queue, st, events.NewBus(time.Now()), speed, rand.New(rand.NewSource(seed)), replies, esc)
	return s, reg, st, replies
}

func admit(t *testing.T, st *state.State, p *model.Patient) {
	t.Helper()
	require.NoError(t, st.Waitroom.Acquire(context.Background(), p.Seats()))
	st.AddInsideCount(p.Seats())
}

func TestSpecialist_TreatsAndReleasesSeat(t *testing.T) {
	s, reg, st, replies := newTestSpecialist(t, 1000, 1)
	p := &model.Patient{ID: "p1", Age: 40}
	admit(t, st, p)
	reply := replies.Register(p.ID)
	s.Queue.Push(model.Color(model.Red).Tag(), p)

	done := make(chan error, 1)
	go func() { done <- s.Run(context.Background()) }()

	select {
	case r := <-reply:
		assert.NoError(t, r.Err)
	case <-time.After(time.Second):
		t.Fatal("specialist did not reply")
	}

	assert.Equal(t, int64(0), st.InsideCount())
	assert.NotEqual(t, model.OutcomeNone, p.Outcome)

	require.NoError(t, reg.Escalate(context.Background(), escalate.Escalation{Kind: escalate.KindTerminate}))
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("specialist did not exit on terminate")
	}
}

func TestSpecialist_ColorPriorityOrder(t *testing.T) {
	s, reg, st, replies := newTestSpecialist(t, 1000, 1)
	green := &model.Patient{ID: "green", Age: 40, Color: model.Green}
	red := &model.Patient{ID: "red", Age: 40, Color: model.Red}
	admit(t, st, green)
	admit(t, st, red)
	rGreen := replies.Register(green.ID)
	rRed := replies.Register(red.ID)

	s.Queue.Push(model.Green.Tag(), green)
	s.Queue.Push(model.Red.Tag(), red)

	sub, unsubscribe := s.Bus.Subscribe(16)
	defer unsubscribe()

	go s.Run(context.Background())

	select {
	case <-rRed:
	case <-time.After(time.Second):
		t.Fatal("red patient was not treated")
	}
	select {
	case <-rGreen:
	case <-time.After(time.Second):
		t.Fatal("green patient was not treated")
	}

	var started []string
	for len(started) < 2 {
		e := <-sub
		if e.Type == events.TreatmentStarted {
			started = append(started, e.Patient)
		}
	}
	assert.Equal(t, []string{"red", "green"}, started, "Red must be treated before a Green queued ahead of it (I5)")

	require.NoError(t, reg.Escalate(context.Background(), escalate.Escalation{Kind: escalate.KindTerminate}))
}

func TestSpecialist_InterruptWhileIdleTriggersImmediateWardTrip(t *testing.T) {
	s, reg, st, _ := newTestSpecialist(t, 10, 1) // ward trip of 50-150ms, long enough to observe

	done := make(chan error, 1)
	go func() { done <- s.Run(context.Background()) }()

	require.NoError(t, reg.Escalate(context.Background(), escalate.Escalation{Kind: escalate.KindInterrupt, Reason: "director"}))
	require.Eventually(t, func() bool { return st.DoctorOnBreak(1) }, time.Second, 2*time.Millisecond,
		"an idle specialist must start its ward trip as soon as the interrupt arrives")

	require.Eventually(t, func() bool { return !st.DoctorOnBreak(1) }, 2*time.Second, 5*time.Millisecond,
		"the ward trip must clear the sticky flag once it ends")

	require.NoError(t, reg.Escalate(context.Background(), escalate.Escalation{Kind: escalate.KindTerminate}))
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("specialist did not exit on terminate")
	}
}

func TestSpecialist_InterruptWhileTreatingWaitsForPatientToFinish(t *testing.T) {
	s, reg, st, replies := newTestSpecialist(t, 2, 1) // slow enough to interrupt mid-treatment
	p := &model.Patient{ID: "p1", Age: 40}
	admit(t, st, p)
	reply := replies.Register(p.ID)
	s.Queue.Push(model.Red.Tag(), p)

	go s.Run(context.Background())

	time.Sleep(5 * time.Millisecond) // let treatment begin
	require.NoError(t, reg.Escalate(context.Background(), escalate.Escalation{Kind: escalate.KindInterrupt}))

	assert.False(t, st.DoctorOnBreak(1), "the ward trip must not start while a patient is still being treated")

	select {
	case <-reply:
	case <-time.After(2 * time.Second):
		t.Fatal("treatment must complete even with an interrupt pending")
	}

	require.Eventually(t, func() bool { return st.DoctorOnBreak(1) }, time.Second, 2*time.Millisecond,
		"the ward trip must begin right after the current patient finishes")

	require.NoError(t, reg.Escalate(context.Background(), escalate.Escalation{Kind: escalate.KindTerminate}))
}

func TestSampleOutcome_Distribution(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	counts := map[model.Outcome]int{}
	const trials = 20000
	for i := 0; i < trials; i++ {
		counts[sampleOutcome(r)]++
	}
	assertFraction := func(o model.Outcome, want float64) {
		got := float64(counts[o]) / trials
		assert.InDelta(t, want, got, 0.02, "outcome %v frequency out of expected band", o)
	}
	assertFraction(model.Home, 0.85)
	assertFraction(model.Ward, 0.145)
	assertFraction(model.OtherFacility, 0.005)
}
