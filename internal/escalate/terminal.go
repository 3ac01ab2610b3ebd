package escalate

import (
	"context"
	"fmt"
	"os"
	"sync"
)

// Terminal writes escalations to stderr. It is attached alongside a Registry
// in a Multi so the operator sees every interrupt and evacuation even when
// the live dashboard (internal/cli/tui) is not attached to a TTY.
type Terminal struct {
	mu sync.Mutex // serializes writes to stderr
}

// NewTerminal creates a terminal escalator.
func NewTerminal() *Terminal {
	return &Terminal{}
}

// Escalate writes the escalation to stderr.
func (t *Terminal) Escalate(ctx context.Context, e Escalation) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	prefix := "interrupt"
	switch e.Kind {
	case KindEvacuate:
		prefix = "evacuate"
	case KindTerminate:
		prefix = "terminate"
	}
	target := e.Target
	if target == "" {
		target = "all"
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(os.Stderr, "[%s -> %s] %s\n", prefix, target, e.Reason)
	return nil
}

// Name returns "terminal".
func (t *Terminal) Name() string {
	return "terminal"
}
