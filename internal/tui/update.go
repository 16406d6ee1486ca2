package tui

import (
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/mellow/internal/dateutil"
	"github.com/javiermolinar/mellow/internal/sleep"
	"github.com/javiermolinar/mellow/internal/tui/commands"
	"github.com/javiermolinar/mellow/internal/tui/view"
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.prompt.Width = max(10, msg.Width-6)
		return m, nil

	case commands.StateMsg:
		dayChanged := !dateutil.SameDay(msg.State.SelectedDate, m.state.SelectedDate)
		m.state = msg.State
		m.err = nil
		if dayChanged || !m.loaded {
			m.focusNow()
		}
		m.loaded = true
		m.clampCursor()
		m.logMsg("state", "date", dateutil.FormatDate(m.state.SelectedDate), "entries", len(m.day()))
		return m, nil

	case commands.SessionMsg:
		m.state = msg.State
		m.err = nil
		m.focusNow()
		return m, m.setStatus(describeSession(msg, m.clock.Now()))

	case commands.WeekSummaryStartedMsg:
		m.weekLoading = true
		return m, nil

	case commands.WeekSummaryMsg:
		m.weekLoading = false
		m.weekSummary = msg.Summary
		m.mode = ModeWeek
		return m, nil

	case commands.ErrMsg:
		m.err = msg.Err
		m.weekLoading = false
		m.logMsg("error", "error", msg.Err)
		return m, m.setStatus(errorText(msg.Err))

	case commands.StatusMsgCmd:
		return m, m.setStatus(msg.Msg)

	case commands.ClearStatusMsg:
		if !m.clock.Now().Before(m.statusTime) {
			m.statusMsg = ""
			m.err = nil
		}
		return m, nil

	case commands.TickMsg:
		return m, commands.Tick(tickInterval)

	case commands.DBChangedMsg:
		m.logMsg("db changed")
		return m, tea.Batch(
			commands.Refresh(m.ctx, m.tracker),
			commands.WaitForChange(m.changes),
		)
	}

	if m.mode == ModePrompt {
		var cmd tea.Cmd
		m.prompt, cmd = m.prompt.Update(msg)
		return m, cmd
	}
	return m, nil
}

func describeSession(msg commands.SessionMsg, now time.Time) string {
	s := msg.Session
	name := "Sleep"
	if msg.State.Kid != nil {
		name = msg.State.Kid.Name
	}
	switch msg.Action {
	case "started":
		return fmt.Sprintf("%s fell asleep at %s", name, dateutil.FormatClock(s.Start))
	case "ended":
		return fmt.Sprintf("%s woke up after %s (%s)", name, view.FormatDuration(s.Duration(now)), s.Type.Label())
	default:
		return fmt.Sprintf("Logged %s %s-%s", s.Type.Label(), dateutil.FormatClock(s.Start), dateutil.FormatClock(s.EndOr(now)))
	}
}

func errorText(err error) string {
	switch {
	case errors.Is(err, sleep.ErrNoKidSelected):
		return "No kid selected. Add one with 'mellow kid add'"
	case errors.Is(err, sleep.ErrSessionInProgress):
		return "A session is already running. Press e to end it"
	case errors.Is(err, sleep.ErrNoSessionRunning):
		return "Nothing is running. Press s to start"
	default:
		return "Error: " + err.Error()
	}
}
