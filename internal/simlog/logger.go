// Package simlog is the single sink for the simulation's event stream
// (spec.md §4.2 "logger sink", §6 "Log file"): one worker drains the event
// bus and appends timestamped lines to a file, flushing after every line.
package simlog

import (
	"bufio"
	"fmt"
	"os"
	"time"

	"github.com/sor-sim/sor/internal/escalate"
	"github.com/sor-sim/sor/internal/events"
)

// Logger is the sole reader of the event bus's log-facing subscription. It
// ignores evacuation so trailing events still reach the file, and exits only
// on an explicit terminate (spec.md §4.2, §9 "Evacuation").
type Logger struct {
	bus         *events.Bus
	start       time.Time
	path        string
	escalations <-chan escalate.Escalation
}

// New creates a Logger that writes to path, subscribed to bus, and listening
// for its own escalations on escalations (normally obtained by registering
// the worker name "logger" with an escalate.Registry).
func New(bus *events.Bus, start time.Time, path string, escalations <-chan escalate.Escalation) *Logger {
	return &Logger{bus: bus, start: start, path: path, escalations: escalations}
}

// Run opens the log file, writes the start banner, and drains the bus until
// a KindTerminate escalation arrives or its escalation or subscription
// channel is closed. It returns nil on a clean exit.
func (l *Logger) Run() error {
	f, err := os.Create(l.path)
	if err != nil {
		return fmt.Errorf("simlog: open log file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if _, err := fmt.Fprintf(w, "[%7.2fs] === simulation started ===\n", 0.0); err != nil {
		return fmt.Errorf("simlog: write start banner: %w", err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("simlog: flush start banner: %w", err)
	}

	sub, unsubscribe := l.bus.Subscribe(256)
	defer unsubscribe()

	for {
		select {
		case e, ok := <-sub:
			if !ok {
				return nil
			}
			l.writeLine(w, e)

		case esc, ok := <-l.escalations:
			if !ok {
				return nil
			}
			if esc.Kind == escalate.KindTerminate {
				l.drain(w, sub)
				return w.Flush()
			}
			// KindEvacuate and KindInterrupt are ignored: the Logger keeps
			// running so it can record the evacuation notice and whatever
			// follows, until the Controller sends an explicit terminate.
		}
	}
}

// drain flushes any events already queued on sub before the final return,
// a best-effort courtesy so a terminate racing with a burst of events does
// not truncate the tail of the log.
func (l *Logger) drain(w *bufio.Writer, sub <-chan events.Event) {
	for {
		select {
		case e, ok := <-sub:
			if !ok {
				return
			}
			l.writeLine(w, e)
		default:
			return
		}
	}
}

func (l *Logger) writeLine(w *bufio.Writer, e events.Event) {
	elapsed := e.Time.Sub(l.start).Seconds()
	fmt.Fprintf(w, "[%7.2fs] %s\n", elapsed, e.String())
	w.Flush()
}
