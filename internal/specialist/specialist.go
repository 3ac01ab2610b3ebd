// Package specialist implements the six per-specialist workers of spec.md
// §4.6: color-priority treatment, single-seat occupancy, outcome sampling,
// and the sticky interrupt / ward-trip state machine.
package specialist

import (
	"context"
	"math/rand"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/sor-sim/sor/internal/escalate"
	"github.com/sor-sim/sor/internal/events"
	"github.com/sor-sim/sor/internal/model"
	"github.com/sor-sim/sor/internal/pqueue"
	"github.com/sor-sim/sor/internal/sampling"
	"github.com/sor-sim/sor/internal/state"
)

// minTreatMillis/maxTreatMillis and minWardMillis/maxWardMillis bound the
// simulated durations before Speed scaling (spec.md §4.6: "simulates
// treatment (speed-scaled)" and "sleeps a ward-duration drawn from a bounded
// distribution").
const (
	minTreatMillis = 300
	maxTreatMillis = 900
	minWardMillis  = 500
	maxWardMillis  = 1500
)

// outcomeThresholds are the cumulative probabilities of spec.md §4.6's fixed
// outcome distribution (Home 85%, Ward 14.5%, OtherFacility 0.5%).
var outcomeThresholds = []sampling.Threshold[model.Outcome]{
	{UpTo: 0.85, Value: model.Home},
	{UpTo: 0.995, Value: model.Ward},
	{UpTo: 1.00, Value: model.OtherFacility},
}

// Specialist is one of the six clinicians of spec.md §2. Index 0 is always
// the pediatric specialist (internal/triage.PediatricSpecialist).
type Specialist struct {
	Index       int
	Name        string
	Queue       *pqueue.Queue[*model.Patient]
	Seat        *semaphore.Weighted // single-seat capacity, spec.md §4.6
	State       *state.State
	Bus         *events.Bus
	Speed       float64
	Rand        *rand.Rand
	Replies     *pqueue.ReplyBox[model.Reply]
	Escalations <-chan escalate.Escalation
}

// New creates a specialist with a fresh single-seat semaphore.
func New(index int, name string, queue *pqueue.Queue[*model.Patient], st *state.State, bus *events.Bus, speed float64, r *rand.Rand, replies *pqueue.ReplyBox[model.Reply], escalations <-chan escalate.Escalation) *Specialist {
	return &Specialist{
		Index: index, Name: name, Queue: queue, Seat: semaphore.NewWeighted(1),
		State: st, Bus: bus, Speed: speed, Rand: r, Replies: replies, Escalations: escalations,
	}
}

// Run implements the Idle → Treating → Idle state machine with the
// transverse WardTrip of spec.md §4.6. It never abandons a patient already
// dequeued, and the interrupt flag is observed only at the two designated
// safe points: while idle waiting for the next patient, and immediately
// after finishing the current one.
func (s *Specialist) Run(ctx context.Context) error {
	patients := make(chan *model.Patient, 1)
	pumpCtx, cancelPump := context.WithCancel(ctx)
	defer cancelPump()
	go s.pump(pumpCtx, patients)

	for {
		// Priority check: an interrupt or terminate pending right now must be
		// handled before dequeuing the next patient (spec.md §4.6: "If the
		// flag is observed while treating, the specialist completes the
		// current patient first, then performs the ward trip before
		// dequeuing the next").
		select {
		case e, ok := <-s.Escalations:
			if !ok {
				return nil
			}
			if exit := s.handleEscalation(e); exit {
				return nil
			}
			continue
		default:
		}

		select {
		case e, ok := <-s.Escalations:
			if !ok {
				return nil
			}
			if exit := s.handleEscalation(e); exit {
				return nil
			}

		case p, ok := <-patients:
			if !ok {
				return nil
			}
			s.treat(p)

		case <-ctx.Done():
			return nil
		}
	}
}

// handleEscalation performs a ward trip for an interrupt (never terminal),
// or reports that Run should exit for terminate/evacuate.
func (s *Specialist) handleEscalation(e escalate.Escalation) (exit bool) {
	switch e.Kind {
	case escalate.KindInterrupt:
		s.wardTrip(e.Reason)
		return false
	default: // KindTerminate, KindEvacuate
		return true
	}
}

// pump continuously dequeues from Queue and forwards to out, stopping when
// ctx is done or the queue is closed.
func (s *Specialist) pump(ctx context.Context, out chan<- *model.Patient) {
	for {
		p, err := s.Queue.Pop(ctx)
		if err != nil {
			return
		}
		select {
		case out <- p:
		case <-ctx.Done():
			return
		}
	}
}

// wardTrip logs the departure, sleeps a ward duration, then clears the
// sticky flag by returning (spec.md §4.6: "clears the flag only at the end
// of the ward trip").
func (s *Specialist) wardTrip(reason string) {
	s.State.SetDoctorOnBreak(s.Index, true)
	s.Bus.Emit(events.Event{Type: events.SpecialistOnBreak, Worker: s.Name, Detail: reason})

	ms := minWardMillis + s.Rand.Intn(maxWardMillis-minWardMillis+1)
	time.Sleep(scaledDuration(ms, s.Speed))

	s.State.SetDoctorOnBreak(s.Index, false)
	s.Bus.Emit(events.Event{Type: events.SpecialistReturned, Worker: s.Name})
}

// treat acquires the single seat, simulates treatment, samples an outcome,
// releases the patient's waiting-room seat(s) and the specialist seat, and
// replies — in that order (spec.md §4.6).
func (s *Specialist) treat(p *model.Patient) {
	ctx := context.Background()
	if err := s.Seat.Acquire(ctx, 1); err != nil {
		return
	}

	s.Bus.Emit(events.Event{Type: events.TreatmentStarted, Worker: s.Name, Patient: p.ID})

	ms := minTreatMillis + s.Rand.Intn(maxTreatMillis-minTreatMillis+1)
	time.Sleep(scaledDuration(ms, s.Speed))

	p.Outcome = sampleOutcome(s.Rand)
	s.Bus.Emit(events.Event{Type: events.TreatmentFinished, Worker: s.Name, Patient: p.ID, Detail: p.Outcome.String()})

	seats := p.Seats()
	s.State.Waitroom.Release(seats)
	s.State.AddInsideCount(-seats)
	s.Seat.Release(1)

	s.Replies.Send(p.ID, model.Reply{})
}

func sampleOutcome(r *rand.Rand) model.Outcome {
	return sampling.Sample(r, outcomeThresholds, model.OtherFacility)
}

func scaledDuration(ms int, speed float64) time.Duration {
	if speed <= 0 {
		speed = 1
	}
	return time.Duration(float64(ms)/speed) * time.Millisecond
}
