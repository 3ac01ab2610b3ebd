package tui

import "github.com/charmbracelet/lipgloss"

// Styles holds the dashboard's lipgloss styles.
type Styles struct {
	Title      lipgloss.Style
	Timer      lipgloss.Style
	StatLabel  lipgloss.Style
	Occupied   lipgloss.Style
	Idle       lipgloss.Style
	Treating   lipgloss.Style
	OnBreak    lipgloss.Style
	Window2    lipgloss.Style
	Footer     lipgloss.Style
	FooterKey  lipgloss.Style
	LogLine    lipgloss.Style
	Evacuating lipgloss.Style
}

// DefaultStyles returns the dashboard's default color palette.
func DefaultStyles() Styles {
	return Styles{
		Title:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		Timer:      lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		StatLabel:  lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Occupied:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Idle:       lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		Treating:   lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		OnBreak:    lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		Window2:    lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
		Footer:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")).MarginTop(1),
		FooterKey:  lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
		LogLine:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Evacuating: lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
	}
}

// Icons used by the dashboard.
const (
	IconTreating = "●"
	IconIdle     = "○"
	IconOnBreak  = "✗"
)
