package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sor-sim/sor/internal/events"
)

// Bridge forwards events from the bus to the bubbletea program as tea.Msg
// values, the same pattern used to stream a background process into a TUI.
type Bridge struct {
	program *tea.Program
}

// NewBridge creates a bridge targeting program.
func NewBridge(program *tea.Program) *Bridge {
	return &Bridge{program: program}
}

// Forward subscribes to bus and sends every event to the program until done
// is closed. Bus.Close only stops further Emits; it never closes the
// subscriber channel, so the only way Forward stops on its own is an
// explicit unsubscribe — the ordinary path out is done closing.
func (b *Bridge) Forward(bus *events.Bus, done <-chan struct{}) {
	sub, cancel := bus.Subscribe(256)
	defer cancel()
	for {
		select {
		case e, ok := <-sub:
			if !ok {
				return
			}
			b.program.Send(eventMsg{e})
		case <-done:
			return
		}
	}
}

// eventMsg wraps a raw events.Event as a tea.Msg.
type eventMsg struct {
	event events.Event
}

// SendQuit asks the program to exit.
func (b *Bridge) SendQuit() {
	b.program.Send(quitMsg{})
}

type quitMsg struct{}
