package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// OpportunityRow represents an opportunity in the list.
type OpportunityRow struct {
	Time      string
	Pair      string
	BuyVenue  string
	SellVenue string
	Spread    decimal.Decimal
	Profit    decimal.Decimal
	Status    string
	Executed  bool
}

// OpportunitiesComponent renders the opportunities list, newest first.
type OpportunitiesComponent struct {
	rows    []OpportunityRow
	maxRows int
	offset  int
}

// NewOpportunitiesComponent creates a new opportunities component.
func NewOpportunitiesComponent(maxRows int) *OpportunitiesComponent {
	return &OpportunitiesComponent{
		rows:    make([]OpportunityRow, 0),
		maxRows: maxRows,
	}
}

// Add adds a new opportunity to the list.
func (o *OpportunitiesComponent) Add(row OpportunityRow) {
	o.rows = append([]OpportunityRow{row}, o.rows...)
	if len(o.rows) > o.maxRows {
		o.rows = o.rows[:o.maxRows]
	}
}

// MarkLatest sets the status of the newest row matching pair.
func (o *OpportunitiesComponent) MarkLatest(pair, status string) {
	for i := range o.rows {
		if o.rows[i].Pair == pair {
			o.rows[i].Status = status
			o.rows[i].Executed = true
			return
		}
	}
}

// Clear clears all opportunities.
func (o *OpportunitiesComponent) Clear() {
	o.rows = make([]OpportunityRow, 0)
	o.offset = 0
}

// Len returns the number of stored rows.
func (o *OpportunitiesComponent) Len() int {
	return len(o.rows)
}

// ScrollUp moves the view towards newer rows.
func (o *OpportunitiesComponent) ScrollUp() {
	if o.offset > 0 {
		o.offset--
	}
}

// ScrollDown moves the view towards older rows.
func (o *OpportunitiesComponent) ScrollDown() {
	if o.offset < len(o.rows)-1 {
		o.offset++
	}
}

const visibleRows = 8

// View renders the opportunities component.
func (o *OpportunitiesComponent) View() string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	if len(o.rows) == 0 {
		return headerStyle.Render("OPPORTUNITIES") + "\n\nNo opportunities detected yet..."
	}

	executedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	pendingStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))

	result := headerStyle.Render(fmt.Sprintf("OPPORTUNITIES (%d)", len(o.rows))) + "\n"
	result += "┌──────────┬──────────────┬──────────────────────────┬─────────┬────────────┬────────────┐\n"
	result += "│   Time   │     Pair     │        Buy → Sell        │ Spread  │   Profit   │   Status   │\n"
	result += "├──────────┼──────────────┼──────────────────────────┼─────────┼────────────┼────────────┤\n"

	end := min(o.offset+visibleRows, len(o.rows))
	for _, row := range o.rows[o.offset:end] {
		statusStyle := pendingStyle
		if row.Executed {
			statusStyle = executedStyle
		}

		result += fmt.Sprintf("│ %8s │ %-12s │ %-24s │%7s%% │ %10s │ %s │\n",
			row.Time,
			truncate(row.Pair, 12),
			truncate(row.BuyVenue+" → "+row.SellVenue, 24),
			row.Spread.StringFixed(2),
			row.Profit.StringFixed(4),
			statusStyle.Render(fmt.Sprintf("%-10s", truncate(row.Status, 10))),
		)
	}

	result += "└──────────┴──────────────┴──────────────────────────┴─────────┴────────────┴────────────┘"

	return result
}
