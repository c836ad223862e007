package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/mcdonaldj/autopush/internal/adapters/tuisvc"
	"github.com/mcdonaldj/autopush/internal/app"
	"github.com/mcdonaldj/autopush/internal/ports"
)

// Mode is what keystrokes currently drive
type Mode int

const (
	BrowseMode  Mode = iota
	AddMode          // Typing a repository path
	MessageMode      // Editing the commit message
)

// Model is the main TUI model
type Model struct {
	svc      ports.TUIService
	mode     Mode
	width    int
	height   int
	quitting bool

	// Configuration as last read from the service
	repos    []string
	message  string
	periodic bool
	cursor   int

	// Batch state
	busy     bool                           // A manual run is in flight
	stopping bool                           // StopPeriodic is waiting for the loop
	last     map[string]ports.TUIRepoResult // Latest outcome per repository
	lastRun  time.Time

	input textinput.Model

	// Status message
	statusMsg string
	statusErr bool
}

// Key bindings
type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Add      key.Binding
	Remove   key.Binding
	Run      key.Binding
	Periodic key.Binding
	Message  key.Binding
	Confirm  key.Binding
	Cancel   key.Binding
	Quit     key.Binding
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Add: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "add"),
	),
	Remove: key.NewBinding(
		key.WithKeys("x", "delete"),
		key.WithHelp("x", "remove"),
	),
	Run: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "run now"),
	),
	Periodic: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "start/stop"),
	),
	Message: key.NewBinding(
		key.WithKeys("m"),
		key.WithHelp("m", "message"),
	),
	Confirm: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "confirm"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancel"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// NewModel creates a TUI model backed by svc
func NewModel(svc ports.TUIService) *Model {
	ti := textinput.New()
	ti.CharLimit = 512
	ti.Width = 60

	m := &Model{
		svc:   svc,
		mode:  BrowseMode,
		input: ti,
		last:  make(map[string]ports.TUIRepoResult),
	}
	m.reload()
	return m
}

// reload refreshes the cached configuration from the service
func (m *Model) reload() {
	m.repos = m.svc.Repos()
	m.message = m.svc.CommitMessage()
	m.periodic = m.svc.Periodic()
	m.clampCursor()
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.repos) {
		m.cursor = len(m.repos) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

type statusMsg struct {
	msg string
	err bool
}

// runDoneMsg carries the result of a manual run
type runDoneMsg struct {
	report ports.TUIBatchReport
	err    error
}

// periodicMsg reports the outcome of a start or stop request
type periodicMsg struct {
	started bool
	err     error
}

// reportMsg is a batch finished by periodic mode
type reportMsg ports.TUIBatchReport

// waitForReport blocks until periodic mode publishes a report.
func waitForReport(ch <-chan ports.TUIBatchReport) tea.Cmd {
	return func() tea.Msg {
		r, ok := <-ch
		if !ok {
			return nil
		}
		return reportMsg(r)
	}
}

// Init starts listening for periodic reports
func (m *Model) Init() tea.Cmd {
	return waitForReport(m.svc.Reports())
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case statusMsg:
		m.statusMsg = msg.msg
		m.statusErr = msg.err
		m.reload()
		return m, nil

	case runDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.setStatus(fmt.Sprintf("Run failed: %v", msg.err), true)
			return m, nil
		}
		m.applyReport(msg.report)
		m.setStatus(summaryLine("Run", msg.report), failedCount(msg.report) > 0)
		return m, nil

	case periodicMsg:
		m.stopping = false
		m.reload()
		switch {
		case msg.err != nil:
			m.setStatus(fmt.Sprintf("Error: %v", msg.err), true)
		case msg.started:
			m.setStatus("Periodic mode started", false)
		default:
			m.setStatus("Periodic mode stopped", false)
		}
		return m, nil

	case reportMsg:
		r := ports.TUIBatchReport(msg)
		m.applyReport(r)
		m.reload()
		m.setStatus(summaryLine("Periodic", r), failedCount(r) > 0)
		return m, waitForReport(m.svc.Reports())

	case tea.KeyMsg:
		if m.mode != BrowseMode {
			return m.updateInput(msg)
		}

		// Clear status on any key
		m.statusMsg = ""
		m.statusErr = false

		switch {
		case key.Matches(msg, keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, keys.Up):
			m.moveCursor(-1)

		case key.Matches(msg, keys.Down):
			m.moveCursor(1)

		case key.Matches(msg, keys.Add):
			return m, m.beginInput(AddMode, "", "path/to/repository")

		case key.Matches(msg, keys.Message):
			return m, m.beginInput(MessageMode, m.message, "commit message")

		case key.Matches(msg, keys.Remove):
			m.removeSelected()

		case key.Matches(msg, keys.Run):
			return m, m.runNow()

		case key.Matches(msg, keys.Periodic):
			return m, m.togglePeriodic()
		}
	}

	return m, nil
}

func (m *Model) setStatus(msg string, isErr bool) {
	m.statusMsg = msg
	m.statusErr = isErr
}

func (m *Model) moveCursor(delta int) {
	m.cursor += delta
	m.clampCursor()
}

func (m *Model) beginInput(mode Mode, value, placeholder string) tea.Cmd {
	m.mode = mode
	m.input.Reset()
	m.input.SetValue(value)
	m.input.Placeholder = placeholder
	m.input.CursorEnd()
	return m.input.Focus()
}

func (m *Model) endInput() {
	m.mode = BrowseMode
	m.input.Blur()
	m.input.Reset()
}

// updateInput routes keys to the text input until it is confirmed or cancelled
func (m *Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyCtrlC:
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, keys.Cancel):
		m.endInput()
		m.setStatus("Cancelled", false)
		return m, nil

	case key.Matches(msg, keys.Confirm):
		value := strings.TrimSpace(m.input.Value())
		mode := m.mode
		m.endInput()
		if mode == AddMode {
			m.addRepo(value)
		} else {
			m.setMessage(value)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) addRepo(path string) {
	if path == "" {
		m.setStatus("No path entered", true)
		return
	}
	added, err := m.svc.AddRepo(path)
	m.reload()
	switch {
	case err != nil:
		m.setStatus(fmt.Sprintf("Add failed: %v", err), true)
	case !added:
		m.setStatus(fmt.Sprintf("%s is already configured", path), false)
	default:
		m.cursor = len(m.repos) - 1
		m.setStatus(fmt.Sprintf("✓ Added %s", path), false)
	}
}

func (m *Model) removeSelected() {
	if len(m.repos) == 0 {
		m.setStatus("No repository selected", true)
		return
	}
	path := m.repos[m.cursor]
	removed, err := m.svc.RemoveRepo(path)
	m.reload()
	switch {
	case err != nil:
		m.setStatus(fmt.Sprintf("Remove failed: %v", err), true)
	case !removed:
		m.setStatus(fmt.Sprintf("%s was not configured", path), true)
	default:
		delete(m.last, path)
		m.setStatus(fmt.Sprintf("✓ Removed %s", path), false)
	}
}

func (m *Model) setMessage(message string) {
	if err := m.svc.SetCommitMessage(message); err != nil {
		m.setStatus(fmt.Sprintf("Message not saved: %v", err), true)
		return
	}
	m.reload()
	m.setStatus("✓ Commit message saved", false)
}

func (m *Model) runNow() tea.Cmd {
	switch {
	case m.busy:
		m.setStatus("A run is already in progress", true)
		return nil
	case m.periodic:
		m.setStatus("Periodic mode is running; stop it first (s)", true)
		return nil
	case len(m.repos) == 0:
		m.setStatus("No repositories configured; add one with a", true)
		return nil
	}

	m.busy = true
	m.setStatus(fmt.Sprintf("Pushing %d repositories...", len(m.repos)), false)
	svc := m.svc
	return func() tea.Msg {
		report, err := svc.RunNow(context.Background())
		return runDoneMsg{report: report, err: err}
	}
}

func (m *Model) togglePeriodic() tea.Cmd {
	if m.stopping {
		return nil
	}
	svc := m.svc
	if m.periodic {
		// StopPeriodic waits for an in-flight batch, so it runs off the UI loop.
		m.stopping = true
		m.setStatus("Stopping periodic mode...", false)
		return func() tea.Msg {
			return periodicMsg{started: false, err: svc.StopPeriodic()}
		}
	}
	if m.busy {
		m.setStatus("A run is already in progress", true)
		return nil
	}
	err := svc.StartPeriodic()
	return func() tea.Msg {
		return periodicMsg{started: err == nil, err: err}
	}
}

func (m *Model) applyReport(r ports.TUIBatchReport) {
	for _, res := range r.Results {
		m.last[res.Repo] = res
	}
	m.lastRun = r.Finished
}

func failedCount(r ports.TUIBatchReport) int {
	n := 0
	for _, res := range r.Results {
		if res.Err != nil {
			n++
		}
	}
	return n
}

func summaryLine(label string, r ports.TUIBatchReport) string {
	pushed, unchanged := 0, 0
	for _, res := range r.Results {
		switch res.Outcome {
		case "pushed":
			pushed++
		case "no changes":
			unchanged++
		}
	}
	line := fmt.Sprintf("%s: %d pushed, %d unchanged", label, pushed, unchanged)
	if n := failedCount(r); n > 0 {
		line += fmt.Sprintf(", %d failed", n)
	}
	if !r.Finished.IsZero() {
		line = fmt.Sprintf("[%s] %s", r.Finished.Format("15:04:05"), line)
	}
	return line
}

// View renders the UI
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	return appStyle.Render(m.renderRepos())
}

func (m *Model) renderRepos() string {
	var b strings.Builder

	// Title
	b.WriteString(titleStyle.Render(" ⇡ autopush "))
	b.WriteString("  ")
	if m.periodic {
		b.WriteString(runningBadge.Render("● periodic"))
	} else {
		b.WriteString(dimStyle.Render("○ idle"))
	}
	if !m.lastRun.IsZero() {
		b.WriteString(dimStyle.Render("  last run " + relativeTime(m.lastRun)))
	}
	b.WriteString("\n\n")

	b.WriteString(dimStyle.Render("Commit message: "))
	b.WriteString(normalStyle.Render(m.message))
	b.WriteString("\n\n")

	// Header
	header := fmt.Sprintf("  %-50s %s", "REPOSITORY", "LAST RESULT")
	b.WriteString(dimStyle.Render(header))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(strings.Repeat("─", 70)))
	b.WriteString("\n")

	// List items
	visibleHeight := m.height - 14
	if visibleHeight < 5 {
		visibleHeight = 5
	}

	start := 0
	if m.cursor >= visibleHeight {
		start = m.cursor - visibleHeight + 1
	}

	if len(m.repos) == 0 {
		b.WriteString(dimStyle.Render("  No repositories yet. Press a to add one."))
		b.WriteString("\n")
	}

	for i := start; i < len(m.repos) && i < start+visibleHeight; i++ {
		repo := m.repos[i]
		cursor := "  "
		style := normalStyle
		if i == m.cursor {
			cursor = "▸ "
			style = selectedStyle
		}

		b.WriteString(style.Render(fmt.Sprintf("%s%-50s ", cursor, truncate(repo, 50))))
		b.WriteString(m.renderOutcome(repo))
		b.WriteString("\n")
	}

	// Pad to fixed height
	for i := len(m.repos); i < visibleHeight; i++ {
		b.WriteString("\n")
	}

	// Input
	switch m.mode {
	case AddMode:
		b.WriteString("Add repository: ")
		b.WriteString(m.input.View())
	case MessageMode:
		b.WriteString("Commit message: ")
		b.WriteString(m.input.View())
	}
	b.WriteString("\n")

	// Status
	if m.statusMsg != "" {
		if m.statusErr {
			b.WriteString(errorBadge.Render(m.statusMsg))
		} else {
			b.WriteString(successBadge.Render(m.statusMsg))
		}
	}
	b.WriteString("\n")

	// Help
	help := "[↑/↓] navigate  [a] add  [x] remove  [r] run now  [s] start/stop  [m] message  [q] quit"
	if m.mode != BrowseMode {
		help = "[enter] confirm  [esc] cancel"
	}
	b.WriteString(helpStyle.Render(help))

	return b.String()
}

func (m *Model) renderOutcome(repo string) string {
	res, ok := m.last[repo]
	if !ok {
		return dimStyle.Render("-")
	}
	switch {
	case res.Err != nil:
		return failedStyle.Render("✗ " + truncate(res.Err.Error(), 60))
	case res.Outcome == "pushed":
		return pushedStyle.Render("✓ pushed")
	default:
		return dimStyle.Render(res.Outcome)
	}
}

// Run starts the TUI. Periodic mode is stopped on exit.
func Run(log *slog.Logger) error {
	sched, err := app.Open(app.Options{Logger: log})
	if err != nil {
		return err
	}
	defer func() { _ = sched.Close() }()

	m := NewModel(tuisvc.New(sched))
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

// Helper functions

// truncate shortens s to at most max terminal cells, ending in an ellipsis.
func truncate(s string, max int) string {
	return ansi.Truncate(s, max, "…")
}

func relativeTime(t time.Time) string {
	diff := time.Since(t)
	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2")
	}
}
