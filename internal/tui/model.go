// Package tui provides the interactive day view: the selected kid's merged
// timeline for one day, with keys to record sleep as it happens.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/mellow/internal/dateutil"
	"github.com/javiermolinar/mellow/internal/logging"
	"github.com/javiermolinar/mellow/internal/schedule"
	"github.com/javiermolinar/mellow/internal/sleep"
	"github.com/javiermolinar/mellow/internal/summary"
	"github.com/javiermolinar/mellow/internal/tracker"
	"github.com/javiermolinar/mellow/internal/tui/commands"
	"github.com/javiermolinar/mellow/internal/tui/theme"
)

const (
	statusTimeout = 4 * time.Second
	tickInterval  = 30 * time.Second
)

// Mode represents the current interaction mode.
type Mode int

const (
	ModeNormal Mode = iota
	ModePrompt
	ModeConfirmDelete
	ModeWeek
)

func (m Mode) String() string {
	switch m {
	case ModePrompt:
		return "prompt"
	case ModeConfirmDelete:
		return "confirm"
	case ModeWeek:
		return "week"
	default:
		return "normal"
	}
}

// Options configures Run.
type Options struct {
	Theme  string // theme name or "auto"
	DBPath string // watched for writes from other processes
	Debug  bool   // log keys and messages to DebugLogPath
	Clock  dateutil.Clock
	Table  schedule.Table    // ideal sleep per age, defaults to schedule.DefaultTable
	Week   commands.WeekFunc // nil disables the week panel
}

// Model is the day view model.
type Model struct {
	ctx     context.Context
	tracker commands.Tracker
	week    commands.WeekFunc
	clock   dateutil.Clock
	table   schedule.Table
	log     logging.Logger
	changes <-chan struct{}

	theme  *theme.Theme
	styles *Styles

	state  tracker.State
	loaded bool
	cursor int
	mode   Mode

	prompt      textinput.Model
	confirmID   string
	showHelp    bool
	weekSummary *summary.WeekSummary
	weekLoading bool

	width  int
	height int

	statusMsg  string
	statusTime time.Time
	err        error
}

// ModelOption configures optional model behavior.
type ModelOption func(*Model)

// WithTheme sets the theme.
func WithTheme(t *theme.Theme) ModelOption {
	return func(m *Model) { m.theme = t }
}

// WithLogger sets the debug logger.
func WithLogger(l logging.Logger) ModelOption {
	return func(m *Model) { m.log = l }
}

// WithChanges sets the channel notified when the database changes.
func WithChanges(ch <-chan struct{}) ModelOption {
	return func(m *Model) { m.changes = ch }
}

// New creates a day view model over t.
func New(ctx context.Context, t commands.Tracker, opts Options, modelOpts ...ModelOption) Model {
	m := Model{
		ctx:     ctx,
		tracker: t,
		week:    opts.Week,
		clock:   opts.Clock,
		table:   opts.Table,
		log:     logging.Nop(),
	}
	if m.clock == nil {
		m.clock = dateutil.SystemClock{}
	}
	if len(m.table.Brackets) == 0 {
		m.table = schedule.DefaultTable()
	}
	for _, opt := range modelOpts {
		opt(&m)
	}
	if m.theme == nil {
		m.theme, _ = theme.Load(opts.Theme)
	}
	m.styles = NewStyles(m.theme)

	m.prompt = textinput.New()
	m.prompt.Prompt = "› "
	m.prompt.Placeholder = "/log 13:10 14:25"
	m.prompt.CharLimit = 120
	m.prompt.PromptStyle = m.styles.Prompt
	m.prompt.TextStyle = m.styles.Base
	m.prompt.PlaceholderStyle = m.styles.Muted

	if t != nil {
		m.state = t.Snapshot()
	}
	return m
}

// Init starts the first refresh, the clock tick and the database watch.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		commands.Refresh(m.ctx, m.tracker),
		commands.Tick(tickInterval),
		commands.WaitForChange(m.changes),
	)
}

// Run starts the day view and blocks until it exits.
func Run(ctx context.Context, t commands.Tracker, opts Options) error {
	log, err := newDebugLogger(opts.Debug)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	th, err := theme.Detect(opts.Theme)
	if err != nil {
		return fmt.Errorf("loading theme: %w", err)
	}

	w, err := watchDB(opts.DBPath, log)
	if err != nil {
		log.Warnw("database changes from other processes will not show", "error", err)
	}
	defer func() { _ = w.Close() }()

	m := New(ctx, t, opts, WithTheme(th), WithLogger(log), WithChanges(w.Changes()))
	log.Debugw("start", "theme", th.Name, "db", opts.DBPath)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()
	return err
}

// day returns the entries of the selected day.
func (m Model) day() sleep.Timeline {
	return m.state.Day()
}

// selected returns the entry under the cursor.
func (m Model) selected() (sleep.Entry, bool) {
	day := m.day()
	if m.cursor < 0 || m.cursor >= len(day) {
		return sleep.Entry{}, false
	}
	return day[m.cursor], true
}

func (m *Model) clampCursor() {
	n := len(m.day())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// focusNow moves the cursor to the running entry, else to the first entry
// that has not ended yet.
func (m *Model) focusNow() {
	now := m.clock.Now()
	for i, e := range m.day() {
		if e.IsInProgress() || e.EndOr(now).After(now) {
			m.cursor = i
			return
		}
	}
	m.cursor = len(m.day()) - 1
	m.clampCursor()
}

func (m *Model) setStatus(msg string) tea.Cmd {
	m.statusMsg = msg
	m.statusTime = m.clock.Now().Add(statusTimeout)
	return commands.ClearStatusAfter(statusTimeout)
}
