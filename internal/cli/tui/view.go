package tui

import (
	"fmt"
	"strings"
)

// View implements tea.Model.
func (m *Model) View() string {
	if m.Quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")
	b.WriteString(m.renderSpecialists())
	b.WriteString("\n")
	b.WriteString(m.renderStatusLine())
	b.WriteString("\n")
	b.WriteString(m.renderLog())
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m *Model) renderHeader() string {
	title := m.Styles.Title.Render("emergency department simulation")
	timer := m.Styles.Timer.Render(fmt.Sprintf("t=%.1fs", m.Elapsed.Seconds()))
	line := fmt.Sprintf("%s   %s", title, timer)
	if m.TotalEvacuated {
		line += "   " + m.Styles.Evacuating.Render("EVACUATING")
	}
	return line
}

func (m *Model) renderSpecialists() string {
	var b strings.Builder
	for i, s := range m.Specialists {
		icon := m.Styles.Idle.Render(IconIdle)
		status := "idle"
		if s.OnBreak {
			icon = m.Styles.OnBreak.Render(IconOnBreak)
			status = "ward trip"
		} else if s.Treating != "" {
			icon = m.Styles.Treating.Render(IconTreating)
			status = "treating " + s.Treating
		}
		b.WriteString(fmt.Sprintf("  [%d] %s %-10s %s (%d done)\n", i+1, icon, s.Name, status, s.Completed))
	}
	return b.String()
}

func (m *Model) renderStatusLine() string {
	waitroom := fmt.Sprintf("waitroom %d/%d", m.WaitroomOccupied, m.WaitroomCapacity)
	window2 := ""
	if m.Window2Open {
		window2 = "  " + m.Styles.Window2.Render("desk-2 open")
	}
	stats := fmt.Sprintf("arrived=%d sent_home=%d treated=%d", m.TotalArrived, m.TotalSentHome, m.TotalTreated)
	return m.Styles.StatLabel.Render(waitroom) + window2 + "   " + m.Styles.StatLabel.Render(stats)
}

func (m *Model) renderLog() string {
	if len(m.LogLines) == 0 {
		return ""
	}
	start := 0
	if n := len(m.LogLines); n > 8 {
		start = n - 8
	}
	var b strings.Builder
	for _, line := range m.LogLines[start:] {
		b.WriteString(m.Styles.LogLine.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) renderFooter() string {
	keys := m.Styles.FooterKey.Render("1-6") + " interrupt specialist   " +
		m.Styles.FooterKey.Render("7") + " evacuate   " +
		m.Styles.FooterKey.Render("q") + " quit"
	return m.Styles.Footer.Render(keys)
}
