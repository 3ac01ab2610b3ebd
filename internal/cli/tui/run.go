package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sor-sim/sor/internal/events"
)

// Run starts the dashboard program, bridges bus events into it, and blocks
// until the operator quits or stop is closed. stop lets the caller end the
// dashboard when the simulation itself ends, so a run that finishes on its
// own (duration expiry, evacuation-then-shutdown) doesn't leave the operator
// stuck in the dashboard waiting to press q. dispatch receives every
// operator Action (digit interrupt or evacuate key) as it happens.
func Run(bus *events.Bus, capacity int, specialistNames []string, dispatch func(Action), stop <-chan struct{}) error {
	m := NewModel(capacity, specialistNames)
	m.Dispatch = dispatch

	program := tea.NewProgram(m, tea.WithAltScreen())

	done := make(chan struct{})
	bridge := NewBridge(program)
	go bridge.Forward(bus, done)
	go func() {
		select {
		case <-stop:
			bridge.SendQuit()
		case <-done:
		}
	}()
	defer close(done)

	_, err := program.Run()
	return err
}
