// Package ui provides the Bubble Tea TUI for the arbitrage bot.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fd1az/dex-arbitrage-bot/pkg/ui/components"
)

// Phase represents the current UI phase.
type Phase string

const (
	PhaseWelcome   Phase = "welcome"   // Initial welcome screen
	PhaseDashboard Phase = "dashboard" // Main dashboard
)

// WelcomeDuration is how long the welcome screen shows before auto-advancing.
const WelcomeDuration = 2 * time.Second

// ErrorEntry represents an error with timestamp.
type ErrorEntry struct {
	Message   string
	Timestamp time.Time
}

// Options configures the dashboard.
type Options struct {
	Network string
	// OnResetBreaker re-enables execution. It runs off the UI goroutine.
	OnResetBreaker func()
}

// breakerResetMsg reports that the reset callback ran.
type breakerResetMsg struct{}

// Model is the main Bubble Tea model for the TUI.
type Model struct {
	// Components
	prices        *components.PricesComponent
	opportunities *components.OpportunitiesComponent
	routes        *components.RoutesComponent
	stats         *components.StatsComponent
	status        *components.StatusComponent

	keys KeyMap
	help help.Model
	opts Options

	// Phase state
	phase        Phase
	welcomeStart time.Time

	// State
	ready            bool
	quitting         bool
	paused           bool // Freeze price and opportunity updates
	width            int
	height           int
	lastUpdate       time.Time
	lastCycleID      string
	executionEnabled bool
	errors           []ErrorEntry // Persistent error panel (last 3)
	activityFeed     []string     // Recent activity messages
}

// New creates a new TUI model.
func New(opts Options) Model {
	m := Model{
		prices:        components.NewPricesComponent(),
		opportunities: components.NewOpportunitiesComponent(50), // Store more for scrolling
		routes:        components.NewRoutesComponent(5),
		stats:         components.NewStatsComponent(),
		status:        components.NewStatusComponent(),
		keys:          DefaultKeyMap(),
		help:          help.New(),
		opts:          opts,
		phase:         PhaseWelcome,
		welcomeStart:  time.Now(),
		errors:        make([]ErrorEntry, 0, 3),
		activityFeed:  make([]string, 0, 8),
	}
	m.status.Update(components.StatusLine{Name: "RPC", OK: false, Detail: "connecting"})
	m.status.Update(components.StatusLine{Name: "Execution", OK: false, Detail: "monitor-only"})
	return m
}

// NewProgram creates the Bubble Tea program for m.
func NewProgram(m Model) *tea.Program {
	return tea.NewProgram(m, tea.WithAltScreen())
}

// Init initializes the TUI model.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// tickCmd returns a command that sends a tick every 100ms for smooth animations.
func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg{}
	})
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Always allow quit
		if key.Matches(msg, m.keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
		// During welcome phase, any other key skips to the dashboard
		if m.phase == PhaseWelcome {
			m.phase = PhaseDashboard
			return m, nil
		}
		switch {
		case key.Matches(msg, m.keys.Clear):
			m.opportunities.Clear()
		case key.Matches(msg, m.keys.Pause):
			m.paused = !m.paused
		case key.Matches(msg, m.keys.Up):
			m.opportunities.ScrollUp()
		case key.Matches(msg, m.keys.Down):
			m.opportunities.ScrollDown()
		case key.Matches(msg, m.keys.ClearErrors):
			m.errors = make([]ErrorEntry, 0, 3)
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		case key.Matches(msg, m.keys.ResetBreaker):
			if m.opts.OnResetBreaker == nil {
				return m, nil
			}
			reset := m.opts.OnResetBreaker
			return m, func() tea.Msg {
				reset()
				return breakerResetMsg{}
			}
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ready = true

	case TickMsg:
		if m.phase == PhaseWelcome && time.Since(m.welcomeStart) >= WelcomeDuration {
			m.phase = PhaseDashboard
		}
		return m, tickCmd()

	case CycleMsg:
		m.applyCycle(msg)

	case ExecutionMsg:
		m.applyExecution(msg)

	case BreakerMsg:
		m.executionEnabled = msg.Enabled
		detail := fmt.Sprintf("%d/%d failures", msg.Failures, msg.Max)
		if !msg.Enabled {
			detail = "breaker open, r to reset"
		}
		m.status.Update(components.StatusLine{Name: "Execution", OK: msg.Enabled, Detail: detail})

	case breakerResetMsg:
		m.activityFeed = addActivity(m.activityFeed, "Execution breaker reset by operator")

	case ConnectionStatusMsg:
		m.status.Update(components.StatusLine{Name: msg.Name, OK: msg.Connected, Detail: msg.Detail})
		m.lastUpdate = time.Now()

	case ErrorMsg:
		m.errors = append(m.errors, ErrorEntry{
			Message:   msg.Error.Error(),
			Timestamp: time.Now(),
		})
		if len(m.errors) > 3 {
			m.errors = m.errors[len(m.errors)-3:]
		}

	case LogMsg:
		m.activityFeed = addActivity(m.activityFeed, fmt.Sprintf("%s: %s", msg.Level, msg.Message))
	}

	return m, nil
}

func (m *Model) applyCycle(msg CycleMsg) {
	s := m.stats.Stats()
	s.Cycles++
	s.Opportunities += int64(len(msg.Opportunities))
	s.Routes += int64(len(msg.Routes))
	s.LastCycleMs = msg.Duration.Milliseconds()
	m.stats.Update(s)

	m.lastCycleID = msg.CycleID
	m.lastUpdate = msg.At
	m.executionEnabled = msg.ExecutionEnabled

	if m.paused {
		return
	}

	m.prices.Update(msg.Venues, msg.Prices)
	m.routes.Update(msg.Routes)
	// Oldest first so the best opportunity ends up on top.
	for i := len(msg.Opportunities) - 1; i >= 0; i-- {
		m.opportunities.Add(msg.Opportunities[i])
	}
	if len(msg.Opportunities) > 0 {
		m.activityFeed = addActivity(m.activityFeed,
			fmt.Sprintf("Cycle %s: %d opportunities, %d routes", shortID(msg.CycleID), len(msg.Opportunities), len(msg.Routes)))
	}
}

func (m *Model) applyExecution(msg ExecutionMsg) {
	s := m.stats.Stats()
	switch msg.Outcome {
	case "success":
		s.Executions++
		s.Successes++
	case "skipped":
		s.Skipped++
	default:
		s.Executions++
		s.Failures++
	}
	m.stats.Update(s)

	status := msg.Outcome
	if msg.ErrorKind != "" {
		status = msg.ErrorKind
	}
	m.opportunities.MarkLatest(msg.Pair, status)

	line := fmt.Sprintf("%s %s via %s", msg.Pair, msg.Outcome, msg.Strategy)
	if msg.FellBack {
		line += " (after flash fallback)"
	}
	if msg.TxHash != "" {
		line += " tx " + shortID(msg.TxHash)
	}
	if msg.ErrorKind != "" {
		line += " [" + msg.ErrorKind + "]"
	}
	m.activityFeed = addActivity(m.activityFeed, line)
}

func shortID(s string) string {
	if len(s) <= 10 {
		return s
	}
	return s[:10]
}

// addActivity adds an activity message and returns the updated slice (keeps last 6).
func addActivity(feed []string, message string) []string {
	timestamp := time.Now().Format("15:04:05")
	line := fmt.Sprintf("[%s] %s", timestamp, message)
	feed = append(feed, line)
	if len(feed) > 6 {
		feed = feed[len(feed)-6:]
	}
	return feed
}

// View renders the TUI.
func (m Model) View() string {
	if m.quitting {
		return "\n  Goodbye!\n\n"
	}
	if m.phase == PhaseWelcome {
		return m.renderWelcomeScreen()
	}

	var b strings.Builder

	// Title
	title := TitleStyle.Render(" 🤖 DEX Arbitrage Bot ")
	b.WriteString(title)
	b.WriteString("\n\n")

	// Status bar
	b.WriteString(m.renderStatusBar())
	b.WriteString("\n\n")

	// Main content: prices on left, opportunities + routes + activity on right
	leftCol := m.prices.View()

	var rightContent strings.Builder
	rightContent.WriteString(m.opportunities.View())
	rightContent.WriteString("\n\n")
	rightContent.WriteString(m.routes.View())
	rightContent.WriteString("\n\n")
	rightContent.WriteString(m.renderActivityFeed())
	rightCol := rightContent.String()

	// Side by side if enough width
	if m.width > 120 {
		left := BoxStyle.Width(m.width/2 - 2).Render(leftCol)
		right := BoxStyle.Width(m.width/2 - 2).Render(rightCol)
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, right))
	} else {
		width := max(m.width-4, 40)
		b.WriteString(BoxStyle.Width(width).Render(leftCol))
		b.WriteString("\n")
		b.WriteString(BoxStyle.Width(width).Render(rightCol))
	}

	b.WriteString("\n\n")
	b.WriteString(m.stats.View())
	b.WriteString("\n\n")

	// Persistent error panel (show last 3 errors)
	if len(m.errors) > 0 {
		b.WriteString(ErrorHeader.Render("ERRORS"))
		b.WriteString(MutedValue.Render(" (e: clear)"))
		b.WriteString("\n")
		for _, err := range m.errors {
			ago := time.Since(err.Timestamp).Round(time.Second)
			b.WriteString(ErrorValue.Render(fmt.Sprintf("  • %s ", err.Message)))
			b.WriteString(MutedValue.Render(fmt.Sprintf("(%s ago)", ago)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if m.paused {
		b.WriteString(PausedStyle.Render("⏸ PAUSED"))
		b.WriteString(" • ")
	}
	b.WriteString(HelpStyle.Render(m.help.View(m.keys)))

	return b.String()
}

// renderActivityFeed renders the recent activity feed.
func (m Model) renderActivityFeed() string {
	var sb strings.Builder
	sb.WriteString(HeaderStyle.Render("LIVE ACTIVITY"))
	sb.WriteString("\n\n")

	if len(m.activityFeed) == 0 {
		sb.WriteString(MutedValue.Render("  Waiting for the first cycle..."))
		return sb.String()
	}
	for _, activity := range m.activityFeed {
		sb.WriteString(MutedValue.Render("  " + activity))
		sb.WriteString("\n")
	}
	return sb.String()
}

// renderWelcomeScreen renders the animated welcome screen.
func (m Model) renderWelcomeScreen() string {
	// Animated dots based on time
	elapsed := time.Since(m.welcomeStart)
	dotCount := int(elapsed.Milliseconds()/300) % 4
	dots := strings.Repeat(".", dotCount)

	var sb strings.Builder
	sb.WriteString("\n\n\n\n")

	logo := `
   ██████╗ ███████╗██╗  ██╗     █████╗ ██████╗ ██████╗
   ██╔══██╗██╔════╝╚██╗██╔╝    ██╔══██╗██╔══██╗██╔══██╗
   ██║  ██║█████╗   ╚███╔╝     ███████║██████╔╝██████╔╝
   ██║  ██║██╔══╝   ██╔██╗     ██╔══██║██╔══██╗██╔══██╗
   ██████╔╝███████╗██╔╝ ██╗    ██║  ██║██║  ██║██████╔╝
   ╚═════╝ ╚══════╝╚═╝  ╚═╝    ╚═╝  ╚═╝╚═╝  ╚═╝╚═════╝
`
	sb.WriteString(HeaderStyle.Render(logo))
	sb.WriteString("\n")

	network := m.opts.Network
	if network == "" {
		network = "polygon"
	}
	sb.WriteString(MutedValue.Render(fmt.Sprintf("            cross-venue monitor on %s", network)))
	sb.WriteString("\n\n\n")

	sb.WriteString(GreetStyle.Render(fmt.Sprintf("                  Initializing%s", dots)))
	sb.WriteString("\n\n")

	sb.WriteString(MutedValue.Render("            Press any key to skip, or wait..."))
	sb.WriteString("\n")

	return sb.String()
}

func (m Model) renderStatusBar() string {
	var parts []string

	mode := ModeMonitor.Render("MONITOR")
	if m.executionEnabled {
		mode = ModeLive.Render("LIVE")
	}
	parts = append(parts, mode)

	if m.lastCycleID != "" {
		parts = append(parts, fmt.Sprintf("Cycle: %s", shortID(m.lastCycleID)))
	}

	if status := m.status.View(); status != "" {
		parts = append(parts, status)
	}

	if !m.lastUpdate.IsZero() {
		ago := time.Since(m.lastUpdate).Round(time.Second)
		indicator := ""
		if ago < 2*time.Second {
			indicator = "▪" // Recent activity indicator
		}
		parts = append(parts, MutedValue.Render(fmt.Sprintf("Updated: %s ago %s", ago, indicator)))
	}

	return strings.Join(parts, "  │  ")
}
