// Package registration implements the Registration Desk and Registration
// Controller of spec.md §4.3 and §4.4: the VIP-preferring intake stage and
// the hysteresis-driven elasticity that opens and closes a second desk.
package registration

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/sor-sim/sor/internal/escalate"
	"github.com/sor-sim/sor/internal/events"
	"github.com/sor-sim/sor/internal/model"
	"github.com/sor-sim/sor/internal/pqueue"
)

// Desk is one registration worker. Two may run concurrently against the
// same queue; correctness follows from the queue's own mutex and the desk
// holding no state of its own between patients (spec.md §4.3: "correctness
// follows from the producer/consumer semaphore triple and the desk being
// stateless").
type Desk struct {
	Name        string
	Queue       *pqueue.Queue[*model.Patient]
	TriageQueue *pqueue.Queue[*model.Patient]
	Replies     *pqueue.ReplyBox[model.Reply]
	Bus         *events.Bus
	Speed       float64
	Rand        *rand.Rand
	Escalations <-chan escalate.Escalation
}

// minServiceMillis/maxServiceMillis bound the simulated registration service
// time before scaling by Speed (spec.md §4.3: "Service time is drawn from a
// bounded distribution scaled by the global speed factor").
const (
	minServiceMillis = 200
	maxServiceMillis = 600
)

// Run dequeues patients (VIP tag first, spec.md §6) until ctx is canceled or
// the worker's own terminate/evacuate escalation arrives, servicing and
// forwarding to triage exactly once per patient — never mid-service
// (spec.md §4.3: "the desk exits after completing the current patient,
// never mid-critical-section").
func (d *Desk) Run(ctx context.Context) error {
	ctx = escalate.WatchShutdown(ctx, d.Escalations)

	for {
		p, err := d.Queue.Pop(ctx)
		if err != nil {
			return nil
		}

		d.service()

		d.Bus.Emit(events.Event{Type: events.PatientRegistered, Worker: d.Name, Patient: p.ID})
		d.TriageQueue.Push(model.TriageTag, p)
		d.Replies.Send(p.ID, model.Reply{})
	}
}

func (d *Desk) service() {
	ms := minServiceMillis + d.Rand.Intn(maxServiceMillis-minServiceMillis+1)
	time.Sleep(scaledDuration(ms, d.Speed))
}

func scaledDuration(ms int, speed float64) time.Duration {
	if speed <= 0 {
		speed = 1
	}
	return time.Duration(float64(ms)/speed) * time.Millisecond
}

// String identifies the desk for logging.
func (d *Desk) String() string {
	return fmt.Sprintf("desk(%s)", d.Name)
}
