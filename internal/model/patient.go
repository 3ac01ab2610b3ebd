// Package model holds the wire-level records that travel across the
// simulation's message queues (spec.md §3, "Patient record").
package model

import "fmt"

// Color is the triage priority class assigned in §4.5. SentHome is a
// terminal non-color: the patient never reaches a specialist.
type Color int

const (
	// ColorNone is the zero value before triage has run.
	ColorNone Color = iota
	Red
	Yellow
	Green
	SentHome
)

// Tag returns the specialist-queue priority tag for this color, per
// spec.md §6 ("Specialist forward: 1/2/3 (Red/Yellow/Green)"). Lower sorts
// first.
func (c Color) Tag() int {
	switch c {
	case Red:
		return 1
	case Yellow:
		return 2
	case Green:
		return 3
	default:
		return 0
	}
}

func (c Color) String() string {
	switch c {
	case Red:
		return "red"
	case Yellow:
		return "yellow"
	case Green:
		return "green"
	case SentHome:
		return "sent_home"
	default:
		return "none"
	}
}

// Outcome is the final disposition a specialist assigns (spec.md §4.6).
type Outcome int

const (
	OutcomeNone Outcome = iota
	Home
	Ward
	OtherFacility
)

func (o Outcome) String() string {
	switch o {
	case Home:
		return "home"
	case Ward:
		return "ward"
	case OtherFacility:
		return "other_facility"
	default:
		return "none"
	}
}

// Patient is the in-flight representation carried by every queue message
// from registration through to the specialist reply (spec.md §3).
type Patient struct {
	ID           string
	Age          int
	IsVIP        bool
	Symptom      string
	Color        Color
	AssignedDoc  int // index into the six specialists, set by triage; meaningless (0) before routing or when SentHome
	Outcome      Outcome
}

// HasGuardian reports whether this patient is a minor traveling with a
// guardian flow (spec.md §3: "has_guardian (true iff age<18)").
func (p Patient) HasGuardian() bool {
	return p.Age < 18
}

// Seats returns how many waiting-room seats this patient occupies: two for
// a minor-with-guardian, one otherwise (spec.md §3 I3).
func (p Patient) Seats() int64 {
	if p.HasGuardian() {
		return 2
	}
	return 1
}

func (p Patient) String() string {
	return fmt.Sprintf("patient(%s age=%d vip=%v)", p.ID, p.Age, p.IsVIP)
}

// Reply is the payload delivered on a stage's per-patient reply channel
// (spec.md §4.2 "Reply channels"). The patient record itself is mutated in
// place by the stage that handled it (Color, AssignedDoc, Outcome); Reply
// only carries whether the stage completed or the patient should stop
// waiting because shutdown was observed.
type Reply struct {
	Err error
}
