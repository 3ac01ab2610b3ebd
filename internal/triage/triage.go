// Package triage implements the POZ stage of spec.md §4.5: it assigns a
// triage color by fixed probability, discharges patients marked SentHome,
// and routes everyone else to a specialist (pediatric routing for minors).
package triage

import (
	"context"
	"math/rand"

	"github.com/sor-sim/sor/internal/escalate"
	"github.com/sor-sim/sor/internal/events"
	"github.com/sor-sim/sor/internal/model"
	"github.com/sor-sim/sor/internal/pqueue"
	"github.com/sor-sim/sor/internal/sampling"
	"github.com/sor-sim/sor/internal/state"
)

// PediatricSpecialist is the fixed index of the specialist minors are always
// routed to (spec.md §4.5: "minors always go to the pediatric specialist").
const PediatricSpecialist = 0

// SpecialistCount is the number of specialist workers (spec.md §2).
const SpecialistCount = 6

// colorThresholds are the cumulative probabilities of the fixed distribution
// in spec.md §4.5 (Red 10%, Yellow 35%, Green 50%, SentHome 5%).
var colorThresholds = []sampling.Threshold[model.Color]{
	{UpTo: 0.10, Value: model.Red},
	{UpTo: 0.45, Value: model.Yellow},
	{UpTo: 0.95, Value: model.Green},
	{UpTo: 1.00, Value: model.SentHome},
}

// Triage consumes the triage queue and forwards (or discharges) every
// patient that reaches it. It is immune to the specialist-interrupt signal
// (spec.md §4.5) — its Escalations channel only ever carries Terminate or
// Evacuate, since an interrupt's Target is always a specialist name.
type Triage struct {
	Queue       *pqueue.Queue[*model.Patient]
	Specialists [SpecialistCount]*pqueue.Queue[*model.Patient]
	Replies     *pqueue.ReplyBox[model.Reply]
	State       *state.State
	Bus         *events.Bus
	Rand        *rand.Rand
	Escalations <-chan escalate.Escalation
}

// Run blocks until ctx is canceled or a terminate/evacuate escalation
// arrives, assigning a color and routing or discharging each patient in
// turn.
func (tr *Triage) Run(ctx context.Context) error {
	ctx = escalate.WatchShutdown(ctx, tr.Escalations)

	for {
		p, err := tr.Queue.Pop(ctx)
		if err != nil {
			return nil
		}
		tr.handle(p)
	}
}

func (tr *Triage) handle(p *model.Patient) {
	tr.applyColor(p, sampleColor(tr.Rand))
}

// applyColor carries out the SentHome-or-route decision for an already
// colored patient; split out from handle so tests can exercise each branch
// without depending on the random color draw.
func (tr *Triage) applyColor(p *model.Patient, color model.Color) {
	p.Color = color

	if p.Color == model.SentHome {
		seats := p.Seats()
		tr.State.Waitroom.Release(seats)
		tr.State.AddInsideCount(-seats)
		tr.Bus.Emit(events.Event{Type: events.PatientSentHome, Patient: p.ID})
		tr.Replies.Send(p.ID, model.Reply{})
		return
	}

	p.AssignedDoc = tr.assignSpecialist(p)
	tr.Bus.Emit(events.Event{Type: events.TriageAssigned, Patient: p.ID, Detail: p.Color.String()})
	tr.Specialists[p.AssignedDoc].Push(p.Color.Tag(), p)
	tr.Replies.Send(p.ID, model.Reply{})
}

// assignSpecialist picks the pediatric specialist for a minor, or draws
// uniformly from the remaining five for an adult (spec.md §4.5).
func (tr *Triage) assignSpecialist(p *model.Patient) int {
	if p.HasGuardian() {
		return PediatricSpecialist
	}
	idx := tr.Rand.Intn(SpecialistCount - 1)
	if idx >= PediatricSpecialist {
		idx++
	}
	return idx
}

func sampleColor(r *rand.Rand) model.Color {
	return sampling.Sample(r, colorThresholds, model.SentHome)
}
