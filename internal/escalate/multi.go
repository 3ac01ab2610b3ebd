package escalate

import "context"

// Multi wraps multiple escalators and fans out to all of them. The
// Controller uses it to deliver every escalation to both the worker
// Registry (the actual signal) and the Terminal (the operator-visible echo)
// — always exactly these two, so a plain sequential loop is enough; neither
// backend blocks (Registry delivery is non-blocking per channel, Terminal is
// a single stderr write), so there is nothing for concurrent fan-out to buy
// here.
type Multi struct {
	escalators []Escalator
}

// NewMulti creates a Multi escalator that sends to all provided backends.
func NewMulti(escalators ...Escalator) *Multi {
	return &Multi{escalators: escalators}
}

// Escalate sends the escalation to every backend in order, returning the
// first error but still sending to the rest.
func (m *Multi) Escalate(ctx context.Context, e Escalation) error {
	var firstErr error
	for _, esc := range m.escalators {
		if err := esc.Escalate(ctx, e); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Name returns "multi".
func (m *Multi) Name() string {
	return "multi"
}
