// Package events is the simulation's secondary telemetry stream. It is
// distinct from the domain message queues in internal/pqueue: those carry
// patient records with strict priority and exactly-once delivery; this bus
// is a best-effort broadcast that feeds the Logger (internal/simlog) and the
// live dashboard (internal/cli/tui) and may be dropped under load without
// affecting simulation correctness.
package events

import (
	"fmt"
	"time"
)

// Type identifies what happened.
type Type string

const (
	PatientArrived     Type = "patient.arrived"
	PatientAdmitted    Type = "patient.admitted"
	PatientRegistered  Type = "patient.registered"
	PatientSentHome    Type = "patient.sent_home"
	PatientExited      Type = "patient.exited"
	RegOpened          Type = "registration.opened"
	RegClosed          Type = "registration.closed"
	Window2Opened      Type = "window2.opened"
	Window2Closed      Type = "window2.closed"
	TriageAssigned     Type = "triage.assigned"
	TreatmentStarted   Type = "treatment.started"
	TreatmentFinished  Type = "treatment.finished"
	SpecialistOnBreak  Type = "specialist.on_break"
	SpecialistReturned Type = "specialist.returned"
	DirectorInterrupt  Type = "director.interrupt"
	Evacuating         Type = "evacuating"
	ShuttingDown       Type = "shutting_down"
)

// Event is a single occurrence in the simulation. The Bus stamps Time with
// the wall-clock time of Emit; the Logger and the dashboard print it as the
// elapsed time since the run's start (spec.md §6: "elapsed simulated real
// time since start_time").
type Event struct {
	Time    time.Time
	Type    Type
	Worker  string // worker name this event relates to, if any
	Patient string // patient id this event relates to, if any
	Detail  string
}

// String renders a one-line human-readable form, the shape the Logger and
// the dashboard's log tail both print.
func (e Event) String() string {
	s := fmt.Sprintf("[%s]", e.Type)
	if e.Worker != "" {
		s += " " + e.Worker
	}
	if e.Patient != "" {
		s += " patient=" + e.Patient
	}
	if e.Detail != "" {
		s += " " + e.Detail
	}
	return s
}
