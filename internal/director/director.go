// Package director implements the Director of spec.md §4.8: a periodic
// random specialist interrupt, and the evacuation broadcast resolved in
// SPEC_FULL.md §4.10 as triggered by the evacuation key, not by SIGINT/SIGTERM.
package director

import (
	"context"
	"math/rand"
	"time"

	"github.com/sor-sim/sor/internal/escalate"
	"github.com/sor-sim/sor/internal/events"
	"github.com/sor-sim/sor/internal/sampling"
)

// minIntervalSeconds/maxIntervalSeconds bound the uniform inter-interrupt
// spacing of spec.md §4.8 ("uniform 3-12 s").
const (
	minIntervalSeconds = 3
	maxIntervalSeconds = 12
)

// evacuationFlushDelay, divided by Speed, is how long the Director waits
// before broadcasting evacuation, so the Logger can record the evacuation
// notice first (spec.md §4.8: "waits briefly so the Logger flushes the
// evacuation notice").
const evacuationFlushDelay = 200 * time.Millisecond

// Director periodically interrupts a random specialist and, on its own
// evacuation trigger, broadcasts evacuation to every worker and exits.
type Director struct {
	Registry        *escalate.Registry
	Bus             *events.Bus
	SpecialistNames []string
	Speed           float64
	Rand            *rand.Rand
	Escalations     <-chan escalate.Escalation
}

// Run blocks until the Director's own terminate or evacuate escalation
// arrives, issuing a random specialist interrupt on every tick in between.
func (d *Director) Run(ctx context.Context) error {
	for {
		wait := time.NewTimer(d.nextInterval())

		select {
		case <-wait.C:
			d.interruptRandomSpecialist(ctx)

		case e, ok := <-d.Escalations:
			wait.Stop()
			if !ok {
				return nil
			}
			switch e.Kind {
			case escalate.KindEvacuate:
				d.evacuate(ctx)
				return nil
			default: // KindTerminate: ordinary cooperative shutdown, no broadcast
				return nil
			}

		case <-ctx.Done():
			wait.Stop()
			return nil
		}
	}
}

func (d *Director) nextInterval() time.Duration {
	secs := minIntervalSeconds + d.Rand.Float64()*(maxIntervalSeconds-minIntervalSeconds)
	secs = sampling.Clamp(secs, float64(minIntervalSeconds), float64(maxIntervalSeconds))
	return scaledDuration(secs, d.Speed)
}

func (d *Director) interruptRandomSpecialist(ctx context.Context) {
	if len(d.SpecialistNames) == 0 {
		return
	}
	target := d.SpecialistNames[d.Rand.Intn(len(d.SpecialistNames))]
	_ = d.Registry.Escalate(ctx, escalate.Escalation{Kind: escalate.KindInterrupt, Target: target, Reason: "director"})
	d.Bus.Emit(events.Event{Type: events.DirectorInterrupt, Worker: target})
}

// evacuate broadcasts evacuation to every registered worker (spec.md §4.8).
// The Logger ignores it and is terminated explicitly by the Controller
// afterward (spec.md §4.2, §9).
func (d *Director) evacuate(ctx context.Context) {
	time.Sleep(scaledDuration(evacuationFlushDelay.Seconds(), d.Speed))
	d.Bus.Emit(events.Event{Type: events.Evacuating})
	_ = d.Registry.Escalate(ctx, escalate.Escalation{Kind: escalate.KindEvacuate, Reason: "evacuation"})
}

func scaledDuration(seconds float64, speed float64) time.Duration {
	if speed <= 0 {
		speed = 1
	}
	return time.Duration(seconds / speed * float64(time.Second))
}
