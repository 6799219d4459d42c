package main

import "github.com/charmbracelet/lipgloss"

type styles struct {
	Header   lipgloss.Style
	Title    lipgloss.Style
	Muted    lipgloss.Style
	Selected lipgloss.Style
	Card     lipgloss.Style
	Success  lipgloss.Style
	Error    lipgloss.Style
}

func defaultStyles() styles {
	primary := lipgloss.AdaptiveColor{Light: "#4f46e5", Dark: "#818cf8"}
	muted := lipgloss.AdaptiveColor{Light: "#6b7280", Dark: "#9ca3af"}

	return styles{
		Header: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffffff")).
			Background(primary).
			Padding(0, 2),
		Title: lipgloss.NewStyle().
			Foreground(primary).
			Bold(true).
			MarginBottom(1),
		Muted: lipgloss.NewStyle().
			Foreground(muted),
		Selected: lipgloss.NewStyle().
			Foreground(primary).
			Bold(true),
		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primary).
			Padding(0, 2),
		Success: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffffff")).
			Background(lipgloss.Color("#16a34a")).
			Padding(0, 1),
		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffffff")).
			Background(lipgloss.Color("#dc2626")).
			Padding(0, 1),
	}
}
