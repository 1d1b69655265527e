// Package components provides reusable TUI components.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// PriceRow is one pair of the price table. Quotes holds the formatted
// amountOut per venue; a venue without a quote is absent.
type PriceRow struct {
	Pair      string
	AmountIn  string
	Quotes    map[string]string
	Spread    decimal.Decimal
	HasSpread bool
}

// PricesComponent renders the per-venue price table.
type PricesComponent struct {
	venues []string
	rows   []PriceRow
}

// NewPricesComponent creates a new prices component.
func NewPricesComponent() *PricesComponent {
	return &PricesComponent{}
}

// Update replaces the table contents.
func (p *PricesComponent) Update(venues []string, rows []PriceRow) {
	p.venues = venues
	p.rows = rows
}

// View renders the prices component.
func (p *PricesComponent) View() string {
	if len(p.rows) == 0 {
		return "Waiting for price data..."
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	positiveStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("PRICES (%d pairs)", len(p.rows))))
	b.WriteString("\n\n")

	b.WriteString(fmt.Sprintf("  %-14s", "Pair"))
	for _, v := range p.venues {
		b.WriteString(fmt.Sprintf(" %14s", truncate(v, 14)))
	}
	b.WriteString(fmt.Sprintf(" %9s\n", "Spread"))
	b.WriteString(dimStyle.Render("  "+strings.Repeat("─", 14+15*len(p.venues)+10)) + "\n")

	for _, row := range p.rows {
		b.WriteString(fmt.Sprintf("  %-14s", truncate(row.Pair, 14)))
		for _, v := range p.venues {
			q, ok := row.Quotes[v]
			if !ok {
				b.WriteString(dimStyle.Render(fmt.Sprintf(" %14s", "-")))
				continue
			}
			b.WriteString(fmt.Sprintf(" %14s", truncate(q, 14)))
		}

		spread := dimStyle.Render(fmt.Sprintf(" %9s", "n/a"))
		if row.HasSpread {
			spread = positiveStyle.Render(fmt.Sprintf(" %8s%%", row.Spread.StringFixed(3)))
		}
		b.WriteString(spread)
		b.WriteString("\n")
	}

	return b.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
