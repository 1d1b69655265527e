package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Stats holds statistics for display.
type Stats struct {
	Cycles        int64
	Opportunities int64
	Routes        int64
	Executions    int64
	Successes     int64
	Failures      int64
	Skipped       int64
	LastCycleMs   int64
}

// StatsComponent renders statistics.
type StatsComponent struct {
	stats Stats
}

// NewStatsComponent creates a new stats component.
func NewStatsComponent() *StatsComponent {
	return &StatsComponent{}
}

// Update updates the statistics.
func (s *StatsComponent) Update(stats Stats) {
	s.stats = stats
}

// Stats returns the current statistics.
func (s *StatsComponent) Stats() Stats {
	return s.stats
}

// View renders the stats component.
func (s *StatsComponent) View() string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Bold(true)
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true)

	successRate := float64(0)
	if s.stats.Executions > 0 {
		successRate = float64(s.stats.Successes) / float64(s.stats.Executions) * 100
	}

	failuresDisplay := valueStyle.Render(fmt.Sprintf("%d", s.stats.Failures))
	if s.stats.Failures > 0 {
		failuresDisplay = errorStyle.Render(fmt.Sprintf("%d", s.stats.Failures))
	}

	return style.Render("STATS") + "\n" +
		fmt.Sprintf("Cycles: %s  │  Opportunities: %s  │  Routes: %s  │  Last cycle: %s\n",
			valueStyle.Render(fmt.Sprintf("%d", s.stats.Cycles)),
			valueStyle.Render(fmt.Sprintf("%d", s.stats.Opportunities)),
			valueStyle.Render(fmt.Sprintf("%d", s.stats.Routes)),
			valueStyle.Render(fmt.Sprintf("%dms", s.stats.LastCycleMs)),
		) +
		fmt.Sprintf("Executions: %s  │  Succeeded: %s (%.1f%%)  │  Failed: %s  │  Skipped: %s",
			valueStyle.Render(fmt.Sprintf("%d", s.stats.Executions)),
			valueStyle.Render(fmt.Sprintf("%d", s.stats.Successes)),
			successRate,
			failuresDisplay,
			valueStyle.Render(fmt.Sprintf("%d", s.stats.Skipped)),
		)
}
