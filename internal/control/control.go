// Package control is the root coordinator of the simulation (spec.md §4.1,
// §9): it owns the shared state, starts every worker in dependency order,
// and drives shutdown — cooperative terminate, evacuation, or a run
// duration expiring — down to every goroutine it started.
package control

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/sor-sim/sor/internal/config"
	"github.com/sor-sim/sor/internal/director"
	"github.com/sor-sim/sor/internal/escalate"
	"github.com/sor-sim/sor/internal/events"
	"github.com/sor-sim/sor/internal/generator"
	"github.com/sor-sim/sor/internal/model"
	"github.com/sor-sim/sor/internal/patient"
	"github.com/sor-sim/sor/internal/pqueue"
	"github.com/sor-sim/sor/internal/registration"
	"github.com/sor-sim/sor/internal/simlog"
	"github.com/sor-sim/sor/internal/specialist"
	"github.com/sor-sim/sor/internal/state"
	"github.com/sor-sim/sor/internal/triage"
)

// shutdownGrace is how long Run waits for every worker to exit on its own
// after a terminate/evacuate before returning anyway (spec.md §9: "the
// controller gives workers a grace period, then returns regardless").
const shutdownGrace = 3 * time.Second

// fixedProcessCount is the number of always-running, non-patient workers the
// Generator's concurrent cap counts against (spec.md §4.9's
// fixed_process_count): logger, director, desk-1, registration controller,
// triage, and six specialists. Desk #2 is elastic and excluded.
const fixedProcessCount = 5 + triage.SpecialistCount

// desk1Name is the worker name the always-open first registration desk
// registers under.
const desk1Name = "desk-1"

// loggerName, directorName, triageName, controllerName, generatorName are
// the fixed workers' registry names, the escalation Targets the Controller
// (or the Director, for a broadcast) addresses.
const (
	loggerName     = "logger"
	directorName   = "director"
	triageName     = "triage"
	controllerName = "registration-controller"
	generatorName  = "generator"
)

// Controller owns every shared resource and worker goroutine for one run.
type Controller struct {
	cfg   *config.Config
	state *state.State
	bus   *events.Bus

	registry *escalate.Registry
	escalate *escalate.Multi

	wg sync.WaitGroup
}

// New builds a Controller for cfg, which must already have passed
// ApplyDefaults and Validate (spec.md §7: "fail fast before any fork").
func New(cfg *config.Config) *Controller {
	start := time.Now()
	return &Controller{
		cfg:      cfg,
		state:    state.New(int64(cfg.N), start),
		bus:      events.NewBus(start),
		registry: escalate.NewRegistry(),
	}
}

// Run starts every worker in dependency order, blocks until the run
// duration elapses or a shutdown is externally triggered via ctx, and
// returns once every worker has exited or the shutdown grace period has.
//
// Startup order (spec.md §4.1 "process forking order" and §9):
//  1. Logger, so every later event is captured.
//  2. Director, whose evacuation broadcast every later worker must see.
//  3. Registration desk #1 and its elasticity controller.
//  4. Triage.
//  5. Six specialists.
//  6. Generator, last, so it never admits a patient into a pipeline that
//     isn't fully wired yet.
func (c *Controller) Run(ctx context.Context) error {
	r := rand.New(rand.NewSource(int64(c.cfg.Seed)))

	term := escalate.NewTerminal()
	c.escalate = escalate.NewMulti(c.registry, term)

	regQueue := pqueue.New[*model.Patient]()
	triageQueue := pqueue.New[*model.Patient]()
	regReplies := pqueue.NewReplyBox[model.Reply]()
	triageReplies := pqueue.NewReplyBox[model.Reply]()
	specialistReplies := pqueue.NewReplyBox[model.Reply]()

	var specialistQueues [triage.SpecialistCount]*pqueue.Queue[*model.Patient]
	for i := range specialistQueues {
		specialistQueues[i] = pqueue.New[*model.Patient]()
	}

	// 1. Logger.
	loggerCh := c.registry.Register(loggerName)
	logger := simlog.New(c.bus, c.state.Start, c.cfg.LogPath, loggerCh)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		if err := logger.Run(); err != nil {
			fmt.Printf("logger: %v\n", err)
		}
	}()

	// 2. Director.
	specialistNames := make([]string, triage.SpecialistCount)
	for i := range specialistNames {
		specialistNames[i] = specialistWorkerName(i)
	}
	dirCh := c.registry.Register(directorName)
	dir := &director.Director{
		Registry:        c.registry,
		Bus:             c.bus,
		SpecialistNames: specialistNames,
		Speed:           c.cfg.Speed,
		Rand:            rand.New(rand.NewSource(r.Int63())),
		Escalations:     dirCh,
	}
	c.startWorker(dir.Run)

	// 3. Registration desk #1 and its elasticity controller.
	desk1Ch := c.registry.Register(desk1Name)
	desk1 := &registration.Desk{
		Name:        desk1Name,
		Queue:       regQueue,
		TriageQueue: triageQueue,
		Replies:     regReplies,
		Bus:         c.bus,
		Speed:       c.cfg.Speed,
		Rand:        rand.New(rand.NewSource(r.Int63())),
		Escalations: desk1Ch,
	}
	c.startWorker(desk1.Run)

	ctrlCh := c.registry.Register(controllerName)
	regCtrl := &registration.Controller{
		Queue:       regQueue,
		TriageQueue: triageQueue,
		Replies:     regReplies,
		State:       c.state,
		Bus:         c.bus,
		Registry:    c.registry,
		KOpen:       c.cfg.K,
		KClose:      c.cfg.KClose,
		Speed:       c.cfg.Speed,
		Rand:        rand.New(rand.NewSource(r.Int63())),
		Escalations: ctrlCh,
	}
	c.startWorker(regCtrl.Run)

	// 4. Triage.
	triageCh := c.registry.Register(triageName)
	tr := &triage.Triage{
		Queue:       triageQueue,
		Specialists: specialistQueues,
		Replies:     triageReplies,
		State:       c.state,
		Bus:         c.bus,
		Rand:        rand.New(rand.NewSource(r.Int63())),
		Escalations: triageCh,
	}
	c.startWorker(tr.Run)

	// 5. Six specialists.
	for i := 0; i < triage.SpecialistCount; i++ {
		name := specialistWorkerName(i)
		ch := c.registry.Register(name)
		sp := specialist.New(i, name, specialistQueues[i], c.state, c.bus, c.cfg.Speed, rand.New(rand.NewSource(r.Int63())), specialistReplies, ch)
		c.startWorker(sp.Run)
	}

	// 6. Generator.
	genCh := c.registry.Register(generatorName)
	gen := &generator.Generator{
		State:             c.state,
		FixedProcessCount: fixedProcessCount,
		Cap:               c.cfg.MaxConcurrentPatients,
		Interval:          c.cfg.Interval,
		Speed:             c.cfg.Speed,
		Rand:              rand.New(rand.NewSource(r.Int63())),
		Escalations:       genCh,
		Deps: patient.Deps{
			State:             c.state,
			RegQueue:          regQueue,
			RegReplies:        regReplies,
			TriageReplies:     triageReplies,
			SpecialistReplies: specialistReplies,
			Bus:               c.bus,
		},
	}
	c.startWorker(gen.Run)

	runCtx := ctx
	var cancelDuration context.CancelFunc
	if c.cfg.Duration > 0 {
		runCtx, cancelDuration = context.WithTimeout(ctx, c.cfg.Duration)
		defer cancelDuration()
	}

	<-runCtx.Done()
	return c.shutdown()
}

// SpecialistNames returns the six specialist worker names in index order,
// for a dashboard or key-reader to label its prompts.
func (c *Controller) SpecialistNames() []string {
	names := make([]string, triage.SpecialistCount)
	for i := range names {
		names[i] = specialistWorkerName(i)
	}
	return names
}

// Capacity returns the waiting-room capacity N.
func (c *Controller) Capacity() int { return c.cfg.N }

// Bus returns the simulation's event bus, for a dashboard or logger to
// subscribe to independently of the Controller's own worker wiring.
func (c *Controller) Bus() *events.Bus { return c.bus }

// Interrupt delivers a targeted specialist interrupt, the operator action
// bound to the '1'-'6' keys (spec.md §4.10).
func (c *Controller) Interrupt(ctx context.Context, specialistIndex int) error {
	return c.escalate.Escalate(ctx, escalate.Escalation{
		Kind:   escalate.KindInterrupt,
		Target: specialistWorkerName(specialistIndex),
		Reason: "operator",
	})
}

// Evacuate broadcasts an evacuation, the operator action bound to the '7'
// key (spec.md §4.10, resolved Open Question in SPEC_FULL.md §4.10: only the
// evacuation key triggers this, never SIGINT/SIGTERM).
func (c *Controller) Evacuate(ctx context.Context) error {
	c.bus.Emit(events.Event{Type: events.Evacuating})
	return c.escalate.Escalate(ctx, escalate.Escalation{Kind: escalate.KindEvacuate, Reason: "operator"})
}

// shutdown broadcasts a terminate to every worker (including the Logger;
// its own Run ignores evacuation but always exits on a direct terminate,
// spec.md §4.2, §9) and waits up to shutdownGrace for them all to exit.
func (c *Controller) shutdown() error {
	c.state.SetShutdown()
	c.bus.Emit(events.Event{Type: events.ShuttingDown})

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()

	_ = c.registry.Escalate(shutdownCtx, escalate.Escalation{Kind: escalate.KindTerminate, Reason: "shutdown"})

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(shutdownGrace):
		// Grace period elapsed with workers still running; Run returns
		// regardless (spec.md §9), leaving their goroutines to exit
		// whenever their own blocking calls unblock.
	}

	c.bus.Close()
	return nil
}

func (c *Controller) startWorker(run func(context.Context) error) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		_ = run(context.Background())
	}()
}

func specialistWorkerName(i int) string {
	return fmt.Sprintf("specialist-%d", i)
}
