// Package ui provides the Bubble Tea dashboard for the arbitrage monitor.
package ui

import "github.com/charmbracelet/lipgloss"

// Colors
var (
	ColorPrimary   = lipgloss.Color("#7C3AED") // Purple
	ColorSecondary = lipgloss.Color("#10B981") // Green
	ColorDanger    = lipgloss.Color("#EF4444") // Red
	ColorWarning   = lipgloss.Color("#F59E0B") // Amber
	ColorMuted     = lipgloss.Color("#6B7280") // Gray
	ColorBorder    = lipgloss.Color("#374151") // Dark gray
)

var (
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(ColorPrimary).
			Padding(0, 2)

	// Execution mode badges in the status bar.
	ModeLive    = lipgloss.NewStyle().Foreground(ColorSecondary).Bold(true)
	ModeMonitor = lipgloss.NewStyle().Foreground(ColorWarning).Bold(true)

	ErrorHeader = lipgloss.NewStyle().Bold(true).Foreground(ColorDanger)
	ErrorValue  = lipgloss.NewStyle().Foreground(ColorDanger)
	PausedStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorWarning)
	GreetStyle  = lipgloss.NewStyle().Foreground(ColorSecondary)

	MutedValue = lipgloss.NewStyle().
			Foreground(ColorMuted)

	HelpStyle = lipgloss.NewStyle().
			Foreground(ColorMuted).
			Padding(0, 1)
)
