package registration

import (
	"context"
	"math/rand"
	"sync"

	"github.com/sor-sim/sor/internal/escalate"
	"github.com/sor-sim/sor/internal/events"
	"github.com/sor-sim/sor/internal/model"
	"github.com/sor-sim/sor/internal/pqueue"
	"github.com/sor-sim/sor/internal/state"
)

// Desk2Name is the worker name desk #2 registers under, the escalation
// Target the Controller addresses its close-signal to.
const Desk2Name = "desk-2"

// Controller implements the Registration Controller of spec.md §4.4: it
// wakes on the registration queue's change signal, applies hysteresis, and
// opens or closes a second desk.
type Controller struct {
	Queue       *pqueue.Queue[*model.Patient]
	TriageQueue *pqueue.Queue[*model.Patient]
	Replies     *pqueue.ReplyBox[model.Reply]
	State       *state.State
	Bus         *events.Bus
	Registry    *escalate.Registry
	KOpen       int
	KClose      int
	Speed       float64
	Rand        *rand.Rand
	Escalations <-chan escalate.Escalation

	mu        sync.Mutex
	desk2Done chan struct{}
}

// Run blocks until ctx is canceled or the controller's own terminate
// escalation arrives, applying the hysteresis predicate of spec.md §4.4
// every time the registration queue changes.
func (c *Controller) Run(ctx context.Context) error {
	ctx = escalate.WatchShutdown(ctx, c.Escalations)

	for {
		// Take the change signal before reading the count, so a push or pop
		// that lands while evaluate runs still wakes the next iteration.
		changed := c.Queue.Changed()
		c.evaluate(ctx)

		select {
		case <-ctx.Done():
			c.closeDesk2IfOpen(context.Background())
			return nil
		case <-changed:
		}
	}
}

// evaluate applies the K_open/K_close predicate once (spec.md §4.4).
func (c *Controller) evaluate(ctx context.Context) {
	count := c.Queue.Len()
	open := c.State.Window2Open()

	switch {
	case !open && count >= c.KOpen:
		c.openDesk2()
	case open && count < c.KClose:
		c.closeDesk2IfOpen(ctx)
	}
}

func (c *Controller) openDesk2() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.desk2Done != nil {
		return // already open
	}

	ch := c.Registry.Register(Desk2Name)
	done := make(chan struct{})
	c.desk2Done = done

	desk := &Desk{
		Name:        Desk2Name,
		Queue:       c.Queue,
		TriageQueue: c.TriageQueue,
		Replies:     c.Replies,
		Bus:         c.Bus,
		Speed:       c.Speed,
		Rand:        c.Rand,
		Escalations: ch,
	}

	c.State.SetWindow2(true, state.WorkerID(Desk2Name))
	c.Bus.Emit(events.Event{Type: events.Window2Opened, Worker: Desk2Name})

	go func() {
		defer close(done)
		desk.Run(context.Background())
	}()
}

func (c *Controller) closeDesk2IfOpen(ctx context.Context) {
	c.mu.Lock()
	done := c.desk2Done
	c.mu.Unlock()
	if done == nil {
		return
	}

	_ = c.Registry.Escalate(ctx, escalate.Escalation{Kind: escalate.KindTerminate, Target: Desk2Name, Reason: "window2 closing"})

	<-done // "waits for its exit" (spec.md §4.4)

	c.Registry.Unregister(Desk2Name)
	c.State.SetWindow2(false, "")
	c.Bus.Emit(events.Event{Type: events.Window2Closed, Worker: Desk2Name})

	c.mu.Lock()
	c.desk2Done = nil
	c.mu.Unlock()
}
