package cli

import "github.com/charmbracelet/lipgloss"

const (
	colorPrimary   = lipgloss.Color("#7C3AED")
	colorMuted     = lipgloss.Color("#6B7280")
	colorHighlight = lipgloss.Color("#3B82F6")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	labelStyle = lipgloss.NewStyle().
			Foreground(colorHighlight)

	headingStyle = lipgloss.NewStyle().
			Bold(true).
			Width(10)
)
