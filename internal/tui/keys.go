package tui

import (
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/mellow/internal/dateutil"
	"github.com/javiermolinar/mellow/internal/tui/commands"
	"github.com/javiermolinar/mellow/internal/tui/input"
)

// handleKeyMsg handles keyboard input.
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.logKey(msg)

	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	switch m.mode {
	case ModePrompt:
		return m.handlePromptKeys(msg)
	case ModeConfirmDelete:
		return m.handleConfirmKeys(msg)
	case ModeWeek:
		return m.handleWeekKeys(msg)
	default:
		return m.handleNormalKeys(msg)
	}
}

// handleNormalKeys handles keys in normal mode.
func (m Model) handleNormalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit

	// Day navigation
	case "h", "left":
		return m, commands.ShiftDate(m.ctx, m.tracker, -1)
	case "l", "right":
		return m, commands.ShiftDate(m.ctx, m.tracker, 1)
	case "t":
		return m, commands.SelectDate(m.ctx, m.tracker, m.clock.Now())

	// Entry navigation
	case "j", "down":
		m.cursor++
		m.clampCursor()
	case "k", "up":
		m.cursor--
		m.clampCursor()
	case "g", "home":
		m.cursor = 0
	case "G", "end":
		m.cursor = len(m.day()) - 1
		m.clampCursor()

	// Recording
	case "s":
		return m, commands.StartSession(m.ctx, m.tracker)
	case "e":
		return m, commands.EndSession(m.ctx, m.tracker)
	case "d", "x":
		e, ok := m.selected()
		if !ok {
			return m, nil
		}
		if e.IsScheduled {
			return m, m.setStatus("Scheduled entries follow the recorded ones and cannot be deleted")
		}
		m.confirmID = e.ID
		m.mode = ModeConfirmDelete

	case "tab":
		if id, ok := m.nextKidID(); ok {
			return m, commands.SelectKid(m.ctx, m.tracker, id)
		}
	case "r":
		return m, tea.Batch(commands.Refresh(m.ctx, m.tracker), m.setStatus("Refreshed"))
	case "w":
		return m.openWeek(m.state.SelectedDate, false)
	case "i":
		return m.openWeek(m.state.SelectedDate, true)
	case "y":
		return m, m.copy(dayText(m.state, m.clock.Now()), "Day copied to clipboard")

	case ":", "/":
		m.mode = ModePrompt
		m.prompt.SetValue("/")
		m.prompt.CursorEnd()
		return m, m.prompt.Focus()
	case "?":
		m.showHelp = !m.showHelp
	}
	return m, nil
}

// handlePromptKeys handles keys while typing a command.
func (m Model) handlePromptKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closePrompt()
		return m, nil
	case "tab":
		if value, ok := input.PromptAutocomplete(m.prompt.Value(), promptCommands); ok {
			m.prompt.SetValue(value)
			m.prompt.CursorEnd()
		}
		return m, nil
	case "enter":
		line := m.prompt.Value()
		m.closePrompt()
		return m.runPrompt(line)
	}

	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}

// handleConfirmKeys handles the delete confirmation.
func (m Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y", "enter":
		id := m.confirmID
		m.confirmID = ""
		m.mode = ModeNormal
		return m, tea.Batch(
			commands.DeleteSession(m.ctx, m.tracker, id),
			m.setStatus("Deleted"),
		)
	case "n", "N", "esc", "q":
		m.confirmID = ""
		m.mode = ModeNormal
	}
	return m, nil
}

// handleWeekKeys handles keys while the week panel is open.
func (m Model) handleWeekKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q", "w":
		m.mode = ModeNormal
	case "h", "left":
		if m.weekSummary != nil {
			return m.openWeek(dateutil.AddDays(m.weekSummary.Start, -7), false)
		}
	case "l", "right":
		if m.weekSummary != nil {
			return m.openWeek(dateutil.AddDays(m.weekSummary.Start, 7), false)
		}
	case "i":
		if m.weekSummary != nil {
			return m.openWeek(m.weekSummary.Start, true)
		}
	case "y":
		if m.weekSummary != nil {
			return m, m.copy(weekText(m.weekSummary), "Week copied to clipboard")
		}
	}
	return m, nil
}

func (m *Model) closePrompt() {
	m.mode = ModeNormal
	m.prompt.Blur()
	m.prompt.Reset()
}

func (m Model) openWeek(date time.Time, insight bool) (tea.Model, tea.Cmd) {
	if m.week == nil {
		return m, m.setStatus("Week summary is not available")
	}
	m.weekLoading = true
	status := "Loading week…"
	if insight {
		status = "Asking for insight…"
	}
	return m, tea.Batch(
		commands.WeekSummary(m.ctx, m.week, dateutil.AdjustToMidday(date), insight),
		m.setStatus(status),
	)
}

func (m Model) nextKidID() (string, bool) {
	kids := m.state.Kids
	if len(kids) < 2 {
		return "", false
	}
	current := 0
	for i, k := range kids {
		if m.state.Kid != nil && k.ID == m.state.Kid.ID {
			current = i
		}
	}
	return kids[(current+1)%len(kids)].ID, true
}

func (m *Model) copy(text, done string) tea.Cmd {
	if err := clipboard.WriteAll(text); err != nil {
		m.err = err
		return m.setStatus("Copy failed: " + err.Error())
	}
	return m.setStatus(done)
}
