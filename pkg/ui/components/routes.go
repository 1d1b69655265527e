package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// RouteRow is a profitable triangular venue combination.
type RouteRow struct {
	Name   string
	Path   string
	Return decimal.Decimal
}

// RoutesComponent renders the latest cycle's triangular routes.
type RoutesComponent struct {
	rows    []RouteRow
	maxRows int
}

// NewRoutesComponent creates a new routes component.
func NewRoutesComponent(maxRows int) *RoutesComponent {
	return &RoutesComponent{maxRows: maxRows}
}

// Update replaces the routes.
func (r *RoutesComponent) Update(rows []RouteRow) {
	if len(rows) > r.maxRows {
		rows = rows[:r.maxRows]
	}
	r.rows = rows
}

// View renders the routes component.
func (r *RoutesComponent) View() string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	positiveStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))

	var b strings.Builder
	b.WriteString(headerStyle.Render("TRIANGULAR ROUTES"))
	b.WriteString("\n\n")

	if len(r.rows) == 0 {
		b.WriteString(mutedStyle.Render("  No profitable routes this cycle"))
		return b.String()
	}

	for _, row := range r.rows {
		b.WriteString(fmt.Sprintf("  %s %s\n",
			positiveStyle.Render(fmt.Sprintf("%7s%%", row.Return.StringFixed(3))),
			row.Path,
		))
	}
	return b.String()
}
