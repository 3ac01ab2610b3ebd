// Package tui is the live dashboard of spec.md §4.10's operator console: a
// bubbletea program driven by the simulation's event bus, capturing the
// digit keys that target a specialist interrupt, the '7' key that triggers
// evacuation, and 'q'/'Q' which triggers normal shutdown (spec.md §6).
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// SpecialistState is the dashboard's view of one specialist.
type SpecialistState struct {
	Name      string
	Treating  string // current patient id, empty if idle
	OnBreak   bool
	Completed int
}

// Model is the bubbletea model for the dashboard.
type Model struct {
	Styles Styles

	StartTime time.Time
	Elapsed   time.Duration

	WaitroomOccupied int
	WaitroomCapacity int
	Window2Open      bool

	Specialists []SpecialistState

	TotalArrived   int
	TotalSentHome  int
	TotalTreated   int
	TotalEvacuated bool

	LogLines []string
	LogLimit int

	Quitting bool

	// Dispatch is called synchronously from Update when the operator
	// presses a digit (interrupt specialist digit-1) or '7' (evacuate).
	// It must not block.
	Dispatch func(action Action)
}

// Action is an operator-triggered control action (spec.md §4.10).
type Action struct {
	Interrupt       bool
	SpecialistIndex int
	Evacuate        bool
	Quit            bool // "q"/"Q": normal shutdown (spec.md §6)
}

// NewModel creates a dashboard model for a run with the given waiting-room
// capacity and specialist names.
func NewModel(capacity int, specialistNames []string) *Model {
	specialists := make([]SpecialistState, len(specialistNames))
	for i, name := range specialistNames {
		specialists[i] = SpecialistState{Name: name}
	}
	return &Model{
		Styles:           DefaultStyles(),
		StartTime:        time.Now(),
		WaitroomCapacity: capacity,
		Specialists:      specialists,
		LogLimit:         200,
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tickCmd()
}

// TickMsg is sent once a second to refresh the elapsed-time display.
type TickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return TickMsg(t) })
}
