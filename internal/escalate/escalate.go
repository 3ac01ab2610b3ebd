// Package escalate delivers the control signals described in spec.md §5 — a
// targeted interrupt, a broadcast evacuation, and a cooperative terminate —
// from their origin (the Director, the Controller) to the worker goroutines
// that must act on them. Evacuation and terminate share the same broadcast
// delivery path but are distinct Kinds: the Logger is specified to ignore
// evacuation (so it can flush trailing events) while still exiting on a
// direct terminate (SPEC_FULL.md §4.10 expansion).
package escalate

import "context"

// Kind distinguishes the interrupt, evacuate, and terminate semantics;
// spec.md §5 is explicit that interrupt and terminate are never confused,
// and SPEC_FULL.md §3 splits evacuation out as its own Kind for the same
// reason.
type Kind string

const (
	// KindInterrupt pulls a single specialist away to the ward (spec.md §4.6,
	// §4.8). Sticky: the target clears it only at the end of its ward trip.
	KindInterrupt Kind = "interrupt"

	// KindEvacuate is the Director's mass-evacuation broadcast (spec.md
	// §4.8). Every worker except the Logger exits on it as on
	// KindTerminate (the Director first re-broadcasts it); the Logger
	// ignores it and waits for an explicit KindTerminate from the
	// Controller once draining is done.
	KindEvacuate Kind = "evacuate"

	// KindTerminate asks a worker to finish its current patient, if any,
	// and exit (spec.md §4.3, §5).
	KindTerminate Kind = "terminate"
)

// Escalation is one signal delivery: a single specialist interrupt, or an
// evacuate/terminate addressed to one worker (an empty Target makes the
// Registry deliver it to every registered worker, as evacuation and shutdown
// do).
type Escalation struct {
	Kind   Kind
	Target string // worker name, e.g. "specialist-3"; empty for a pure broadcast
	Reason string
}

// Escalator is the interface for delivering an Escalation to its target(s).
// Implementations must respect context cancellation and never block past it.
type Escalator interface {
	Escalate(ctx context.Context, e Escalation) error

	// Name identifies the escalator for logging.
	Name() string
}
