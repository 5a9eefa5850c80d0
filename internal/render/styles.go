package render

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title   lipgloss.Style
	section lipgloss.Style
	key     lipgloss.Style
	value   lipgloss.Style
	yes     lipgloss.Style
	no      lipgloss.Style
	warning lipgloss.Style
	faint   lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:   lipgloss.NewStyle().Bold(true),
		section: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).MarginTop(1),
		key:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(20),
		value:   lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		yes:     lipgloss.NewStyle().Foreground(lipgloss.Color("114")),
		no:      lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		warning: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		faint:   lipgloss.NewStyle().Faint(true),
	}
}
