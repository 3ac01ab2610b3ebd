package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sor-sim/sor/internal/events"
)

// Update implements tea.Model. Digit keys 1-6 target a specialist interrupt,
// '7' triggers evacuation, and 'q'/ctrl+c requests normal shutdown (spec.md
// §4.10, §6); all three are forwarded to Dispatch without blocking the UI
// loop. Closing the dashboard window never stops the run on its own — the
// run only ends via Dispatch's Quit/Evacuate actions, a configured
// duration, or an OS signal.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.Quitting = true
			if m.Dispatch != nil {
				m.Dispatch(Action{Quit: true})
			}
			return m, tea.Quit
		case "1", "2", "3", "4", "5", "6":
			idx := int(msg.String()[0] - '1')
			if m.Dispatch != nil && idx < len(m.Specialists) {
				m.Dispatch(Action{Interrupt: true, SpecialistIndex: idx})
			}
		case "7":
			if m.Dispatch != nil {
				m.Dispatch(Action{Evacuate: true})
			}
		}

	case TickMsg:
		m.Elapsed = time.Since(m.StartTime)
		return m, tickCmd()

	case quitMsg:
		m.Quitting = true
		return m, tea.Quit

	case eventMsg:
		m.applyEvent(msg.event)
	}

	return m, nil
}

func (m *Model) applyEvent(e events.Event) {
	switch e.Type {
	case events.PatientAdmitted:
		m.WaitroomOccupied++
		m.TotalArrived++
	case events.PatientSentHome:
		m.WaitroomOccupied--
		m.TotalSentHome++
	case events.PatientExited:
		if e.Detail != "sent_home" { // already counted by PatientSentHome
			m.WaitroomOccupied--
			m.TotalTreated++
		}
	case events.Window2Opened:
		m.Window2Open = true
	case events.Window2Closed:
		m.Window2Open = false
	case events.TreatmentStarted:
		m.setSpecialist(e.Worker, func(s *SpecialistState) { s.Treating = e.Patient })
	case events.TreatmentFinished:
		m.setSpecialist(e.Worker, func(s *SpecialistState) { s.Treating = ""; s.Completed++ })
	case events.SpecialistOnBreak:
		m.setSpecialist(e.Worker, func(s *SpecialistState) { s.OnBreak = true })
	case events.SpecialistReturned:
		m.setSpecialist(e.Worker, func(s *SpecialistState) { s.OnBreak = false })
	case events.Evacuating:
		m.TotalEvacuated = true
	}

	m.LogLines = append(m.LogLines, fmt.Sprintf("[%7.2fs] %s", e.Time.Sub(m.StartTime).Seconds(), e.String()))
	if len(m.LogLines) > m.LogLimit {
		m.LogLines = m.LogLines[len(m.LogLines)-m.LogLimit:]
	}
}

func (m *Model) setSpecialist(name string, fn func(*SpecialistState)) {
	for i := range m.Specialists {
		if m.Specialists[i].Name == name {
			fn(&m.Specialists[i])
			return
		}
	}
}
