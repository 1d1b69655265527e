// Package ui provides the Bubble Tea TUI for the arbitrage bot.
package ui

import (
	"time"

	"github.com/fd1az/dex-arbitrage-bot/pkg/ui/components"
)

// Message types for TUI updates. Values are pre-formatted by the sender;
// the UI does not calculate anything.

// CycleMsg is sent once per monitoring cycle.
type CycleMsg struct {
	CycleID          string
	At               time.Time
	Duration         time.Duration
	Venues           []string
	Prices           []components.PriceRow
	Opportunities    []components.OpportunityRow
	Routes           []components.RouteRow
	ExecutionEnabled bool
}

// ExecutionMsg is sent after an execution attempt or skip.
type ExecutionMsg struct {
	Pair      string
	Strategy  string
	Outcome   string // "success", "failure", "skipped"
	TxHash    string
	ErrorKind string
	FellBack  bool
}

// BreakerMsg is sent when the execution breaker changes.
type BreakerMsg struct {
	Enabled  bool
	Failures int
	Max      int
}

// ConnectionStatusMsg is sent when the RPC connection state changes.
type ConnectionStatusMsg struct {
	Name      string
	Connected bool
	Detail    string
}

// ErrorMsg is sent when an error occurs.
type ErrorMsg struct {
	Error error
}

// TickMsg is sent periodically for UI updates.
type TickMsg struct{}

// LogMsg is sent to display a log message in the UI.
type LogMsg struct {
	Level   string // "info", "warn", "error"
	Message string
}
