// Package generator implements the Generator of spec.md §4.9: it forks new
// patients at a randomized, speed-scaled rate, honors a concurrent-patient
// cap, and on shutdown signals every live patient before reaping them.
package generator

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/sor-sim/sor/internal/escalate"
	"github.com/sor-sim/sor/internal/events"
	"github.com/sor-sim/sor/internal/model"
	"github.com/sor-sim/sor/internal/patient"
	"github.com/sor-sim/sor/internal/state"
)

// capPollInterval is how often the Generator re-checks the concurrent
// patient cap while blocked waiting for headroom (spec.md §4.9: "it polls
// until active_patients + fixed_process_count < cap before each fork").
const capPollInterval = 50 * time.Millisecond

// reapGrace is how long the Generator waits for live patients to exit after
// signaling them, before giving up on an orderly reap (spec.md §4.9: "waits
// up to 3 s for their exit").
const reapGrace = 3 * time.Second

// minAge/maxAge/vipProbability/minorProbability bound the randomized
// patient attributes the Generator assigns (spec.md §4.9: "randomized
// attributes"; left to implementation per spec.md §1's "collaborator"
// carve-out for the random distributions).
const (
	minAge           = 1
	maxAge           = 90
	vipProbability   = 0.05
	minorProbability = 0.18
)

// Generator emits new patients in a loop and tracks them to completion.
type Generator struct {
	State             *state.State
	Deps              patient.Deps
	FixedProcessCount int // non-patient worker count, added to the cap check
	Cap               int // MaxConcurrentPatients; 0 = unbounded
	Interval          time.Duration
	Speed             float64
	Rand              *rand.Rand
	Escalations       <-chan escalate.Escalation

	// NewPatient creates the next patient's record; overridable for tests.
	// Defaults to a random attribute draw with a ULID-based id.
	NewPatient func() *model.Patient
}

// Run forks patient goroutines at a jittered, speed-scaled rate until ctx is
// canceled or the Generator's own terminate/evacuate escalation arrives,
// then cancels every live patient and waits up to reapGrace for them to
// exit before returning (spec.md §4.9).
func (g *Generator) Run(ctx context.Context) error {
	if g.NewPatient == nil {
		g.NewPatient = func() *model.Patient { return g.randomPatient() }
	}
	ctx = escalate.WatchShutdown(ctx, g.Escalations)

	patientCtx, cancelPatients := context.WithCancel(context.Background())
	var wg sync.WaitGroup

	for {
		if ctx.Err() != nil {
			break
		}
		if err := g.waitForHeadroom(ctx); err != nil {
			break
		}
		if err := g.sleepInterArrival(ctx); err != nil {
			break
		}

		p := g.NewPatient()
		g.State.IncTotalPatients()
		g.State.AddActivePatients(1)
		g.Deps.Bus.Emit(events.Event{Type: events.PatientArrived, Patient: p.ID})

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer g.State.AddActivePatients(-1)
			_ = patient.Run(patientCtx, g.Deps, p)
		}()
	}

	cancelPatients()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(reapGrace):
		// Force-cleanup: the grace period elapsed with patients still
		// in flight. Their contexts are already canceled; there is
		// nothing further this goroutine can do but stop waiting
		// (spec.md §4.9: "force-kills and reaps remaining children").
	}
	return nil
}

// waitForHeadroom blocks until active_patients+fixed_process_count is below
// the cap (spec.md §4.9), or ctx is canceled.
func (g *Generator) waitForHeadroom(ctx context.Context) error {
	if g.Cap <= 0 {
		return nil
	}
	for int(g.State.ActivePatients())+g.FixedProcessCount >= g.Cap {
		select {
		case <-time.After(capPollInterval):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// interArrivalJitterLo/Hi bound the randomized factor applied to Interval
// (spec.md §4.9; SPEC_FULL.md §4.3-§4.9: durations are drawn from a bounded
// uniform distribution, not an unbounded one — matching
// original_source/src/patient.cpp's delay_ms = interval * rand_factor, a
// +-30% bounded factor around the configured mean).
const (
	interArrivalJitterLo = 0.7
	interArrivalJitterHi = 1.3
)

// sleepInterArrival waits a speed-scaled inter-arrival gap, the configured
// mean jittered by a bounded uniform factor.
func (g *Generator) sleepInterArrival(ctx context.Context) error {
	mean := g.Interval
	if mean <= 0 {
		mean = time.Second
	}
	factor := interArrivalJitterLo + g.Rand.Float64()*(interArrivalJitterHi-interArrivalJitterLo)
	gap := time.Duration(float64(mean) * factor)
	if g.Speed > 0 {
		gap = time.Duration(float64(gap) / g.Speed)
	}

	timer := time.NewTimer(gap)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (g *Generator) randomPatient() *model.Patient {
	age := minAge + g.Rand.Intn(maxAge-minAge+1)
	if g.Rand.Float64() < minorProbability {
		age = g.Rand.Intn(18)
	}
	return &model.Patient{
		ID:    ulid.Make().String(),
		Age:   age,
		IsVIP: g.Rand.Float64() < vipProbability,
	}
}
