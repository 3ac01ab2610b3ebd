// Package patient implements the short-lived patient control flow of
// spec.md §4.7: a linear sequence for adults, and two cooperating flows
// sharing the patient record for minors.
package patient

import (
	"context"

	"github.com/sor-sim/sor/internal/events"
	"github.com/sor-sim/sor/internal/model"
	"github.com/sor-sim/sor/internal/pqueue"
	"github.com/sor-sim/sor/internal/state"
)

// Deps are the shared resources every patient flow needs: the registration
// queue it enqueues into, and the three reply correlators for registration,
// triage, and specialist stages (spec.md §4.2 "Reply channels").
type Deps struct {
	State             *state.State
	RegQueue          *pqueue.Queue[*model.Patient]
	RegReplies        *pqueue.ReplyBox[model.Reply]
	TriageReplies     *pqueue.ReplyBox[model.Reply]
	SpecialistReplies *pqueue.ReplyBox[model.Reply]
	Bus               *events.Bus
}

// Run carries a patient from waiting-room admission to exit, dispatching to
// the adult linear sequence or the guardian+child cooperating flows
// depending on age (spec.md §4.7). It returns nil on a normal exit (sent
// home or treated) and a non-nil error only if ctx is canceled before the
// patient completes (spec.md §7: "on any failure after admission they
// attempt to release seats and exit").
func Run(ctx context.Context, deps Deps, p *model.Patient) error {
	if p.HasGuardian() {
		return runChild(ctx, deps, p)
	}
	return runAdult(ctx, deps, p)
}

// regTag returns the registration queue's priority tag for p (spec.md §6:
// VIP=1, ordinary=2).
func regTag(p *model.Patient) int {
	if p.IsVIP {
		return model.RegTagVIP
	}
	return model.RegTagOrdinary
}

func waitReply(ctx context.Context, ch <-chan model.Reply) error {
	select {
	case r := <-ch:
		return r.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func runAdult(ctx context.Context, deps Deps, p *model.Patient) error {
	regReply := deps.RegReplies.Register(p.ID)
	triageReply := deps.TriageReplies.Register(p.ID)
	specialistReply := deps.SpecialistReplies.Register(p.ID)

	seats := p.Seats()
	if err := deps.State.Waitroom.Acquire(ctx, seats); err != nil {
		deps.RegReplies.Cancel(p.ID)
		deps.TriageReplies.Cancel(p.ID)
		deps.SpecialistReplies.Cancel(p.ID)
		return err
	}
	deps.State.AddInsideCount(seats)
	deps.Bus.Emit(events.Event{Type: events.PatientAdmitted, Patient: p.ID})

	deps.RegQueue.Push(regTag(p), p)

	if err := waitReply(ctx, regReply); err != nil {
		deps.TriageReplies.Cancel(p.ID)
		deps.SpecialistReplies.Cancel(p.ID)
		deps.State.Waitroom.Release(seats)
		deps.State.AddInsideCount(-seats)
		return err
	}

	return awaitDisposition(ctx, deps, p, seats, triageReply, specialistReply)
}

// awaitDisposition waits for the triage reply and, unless the patient is
// sent home, the specialist reply. Triage releases the patient's seats on
// SentHome and the treating specialist releases them on completion
// (spec.md §4.5, §4.6); this function only self-releases on the abort path,
// where ctx is canceled before either stage had a chance to.
func awaitDisposition(ctx context.Context, deps Deps, p *model.Patient, seats int64, triageReply, specialistReply <-chan model.Reply) error {
	if err := waitReply(ctx, triageReply); err != nil {
		deps.SpecialistReplies.Cancel(p.ID)
		deps.State.Waitroom.Release(seats)
		deps.State.AddInsideCount(-seats)
		return err
	}

	if p.Color == model.SentHome {
		deps.SpecialistReplies.Cancel(p.ID)
		deps.Bus.Emit(events.Event{Type: events.PatientExited, Patient: p.ID, Detail: "sent_home"})
		return nil
	}

	if err := waitReply(ctx, specialistReply); err != nil {
		deps.State.Waitroom.Release(seats)
		deps.State.AddInsideCount(-seats)
		return err
	}

	deps.Bus.Emit(events.Event{Type: events.PatientExited, Patient: p.ID, Detail: p.Outcome.String()})
	return nil
}

// runChild realizes the two cooperating flows of spec.md §4.7: a guardian
// goroutine performs the atomic two-unit admission and registration, then
// signals a child goroutine that carries the patient through triage and
// treatment. Reply boxes are registered once, before either flow starts, so
// neither ever races a stage that completes before the flow awaits its
// reply.
func runChild(ctx context.Context, deps Deps, p *model.Patient) error {
	regReply := deps.RegReplies.Register(p.ID)
	triageReply := deps.TriageReplies.Register(p.ID)
	specialistReply := deps.SpecialistReplies.Register(p.ID)

	seats := p.Seats() // 2, guardian + child (spec.md §3 I3)
	guardianDone := make(chan error, 1)
	childResult := make(chan error, 1)

	go func() {
		err := <-guardianDone
		if err != nil {
			deps.TriageReplies.Cancel(p.ID)
			deps.SpecialistReplies.Cancel(p.ID)
			childResult <- err
			return
		}
		childResult <- awaitDisposition(ctx, deps, p, seats, triageReply, specialistReply)
	}()

	if err := deps.State.Waitroom.Acquire(ctx, seats); err != nil {
		deps.RegReplies.Cancel(p.ID)
		guardianDone <- err
		return <-childResult
	}
	deps.State.AddInsideCount(seats)
	deps.Bus.Emit(events.Event{Type: events.PatientAdmitted, Patient: p.ID, Detail: "guardian"})

	deps.RegQueue.Push(regTag(p), p)

	if err := waitReply(ctx, regReply); err != nil {
		deps.State.Waitroom.Release(seats)
		deps.State.AddInsideCount(-seats)
		guardianDone <- err
		return <-childResult
	}

	guardianDone <- nil
	return <-childResult
}
