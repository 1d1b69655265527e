package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// StatusLine is one named indicator such as the RPC link or the execution
// breaker.
type StatusLine struct {
	Name   string
	OK     bool
	Detail string
}

// StatusComponent renders status indicators in insertion order.
type StatusComponent struct {
	lines []StatusLine
}

// NewStatusComponent creates a new status component.
func NewStatusComponent() *StatusComponent {
	return &StatusComponent{
		lines: make([]StatusLine, 0),
	}
}

// Update replaces the line with the same name or appends it.
func (s *StatusComponent) Update(line StatusLine) {
	for i, l := range s.lines {
		if l.Name == line.Name {
			s.lines[i] = line
			return
		}
	}
	s.lines = append(s.lines, line)
}

// View renders the status line as a single row.
func (s *StatusComponent) View() string {
	if len(s.lines) == 0 {
		return ""
	}

	okStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")).Bold(true)
	badStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true)

	parts := make([]string, 0, len(s.lines))
	for _, l := range s.lines {
		icon, style := "●", okStyle
		if !l.OK {
			icon, style = "○", badStyle
		}
		text := l.Name
		if l.Detail != "" {
			text = fmt.Sprintf("%s (%s)", l.Name, l.Detail)
		}
		parts = append(parts, style.Render(icon+" "+text))
	}
	return strings.Join(parts, "  │  ")
}
