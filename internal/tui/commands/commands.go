// Package commands provides day view command constructors and message types.
package commands

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/mellow/internal/sleep"
	"github.com/javiermolinar/mellow/internal/summary"
	"github.com/javiermolinar/mellow/internal/tracker"
)

// Tracker is the part of tracker.Tracker the day view drives.
type Tracker interface {
	Load(ctx context.Context) (tracker.State, error)
	Refresh(ctx context.Context) (tracker.State, error)
	Snapshot() tracker.State
	SelectDate(ctx context.Context, date time.Time) (tracker.State, error)
	ShiftDate(ctx context.Context, days int) (tracker.State, error)
	SelectKid(ctx context.Context, id string) (tracker.State, error)
	CreateSession(ctx context.Context, start, end *time.Time, typ sleep.SessionType) (*sleep.Session, error)
	DeleteSession(ctx context.Context, id string) (tracker.State, error)
	StartSession(ctx context.Context) (*sleep.Session, error)
	EndSession(ctx context.Context) (*sleep.Session, error)
}

// WeekFunc builds the summary of the week containing date.
type WeekFunc func(ctx context.Context, date time.Time, insight bool) (*summary.WeekSummary, error)

// StateMsg carries a fresh tracker state.
type StateMsg struct {
	State tracker.State
}

// SessionMsg is sent after a session was started, ended or logged.
type SessionMsg struct {
	Action  string // "started", "ended", "logged"
	Session *sleep.Session
	State   tracker.State
}

// ErrMsg is sent when an error occurs.
type ErrMsg struct {
	Err error
}

// StatusMsgCmd is sent for temporary status messages.
type StatusMsgCmd struct {
	Msg string
}

// ClearStatusMsg is sent to clear the status message.
type ClearStatusMsg struct{}

// WeekSummaryStartedMsg is sent before a slow insight request.
type WeekSummaryStartedMsg struct{}

// WeekSummaryMsg is sent when week summary data is ready.
type WeekSummaryMsg struct {
	Summary *summary.WeekSummary
}

// TickMsg drives the running session clock.
type TickMsg struct {
	Time time.Time
}

// DBChangedMsg is sent when another process wrote to the database.
type DBChangedMsg struct{}

// Load reads kids and builds the timeline for today.
func Load(ctx context.Context, t Tracker) tea.Cmd {
	return stateCmd(func() (tracker.State, error) { return t.Load(ctx) })
}

// Refresh rebuilds the timeline from the store.
func Refresh(ctx context.Context, t Tracker) tea.Cmd {
	return stateCmd(func() (tracker.State, error) { return t.Refresh(ctx) })
}

// ShiftDate moves the selected date by days.
func ShiftDate(ctx context.Context, t Tracker, days int) tea.Cmd {
	return stateCmd(func() (tracker.State, error) { return t.ShiftDate(ctx, days) })
}

// SelectDate jumps to date.
func SelectDate(ctx context.Context, t Tracker, date time.Time) tea.Cmd {
	return stateCmd(func() (tracker.State, error) { return t.SelectDate(ctx, date) })
}

// SelectKid switches the selected kid.
func SelectKid(ctx context.Context, t Tracker, id string) tea.Cmd {
	return stateCmd(func() (tracker.State, error) { return t.SelectKid(ctx, id) })
}

// DeleteSession removes a recorded session.
func DeleteSession(ctx context.Context, t Tracker, id string) tea.Cmd {
	return func() tea.Msg {
		st, err := t.DeleteSession(ctx, id)
		if err != nil {
			return ErrMsg{Err: err}
		}
		return StateMsg{State: st}
	}
}

// StartSession opens a session starting now.
func StartSession(ctx context.Context, t Tracker) tea.Cmd {
	return sessionCmd(t, "started", func() (*sleep.Session, error) { return t.StartSession(ctx) })
}

// EndSession closes the running session.
func EndSession(ctx context.Context, t Tracker) tea.Cmd {
	return sessionCmd(t, "ended", func() (*sleep.Session, error) { return t.EndSession(ctx) })
}

// LogSession records a finished session.
func LogSession(ctx context.Context, t Tracker, start, end time.Time, typ sleep.SessionType) tea.Cmd {
	return sessionCmd(t, "logged", func() (*sleep.Session, error) {
		return t.CreateSession(ctx, &start, &end, typ)
	})
}

// WeekSummary builds the summary of the week containing date.
func WeekSummary(ctx context.Context, fn WeekFunc, date time.Time, insight bool) tea.Cmd {
	return func() tea.Msg {
		s, err := fn(ctx, date, insight)
		if err != nil {
			return ErrMsg{Err: err}
		}
		return WeekSummaryMsg{Summary: s}
	}
}

// ClearStatusAfter clears the status line after d.
func ClearStatusAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}

// Tick fires once after d.
func Tick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}

// WaitForChange blocks until changes delivers, then reports it.
// A closed channel stops the loop.
func WaitForChange(changes <-chan struct{}) tea.Cmd {
	if changes == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-changes; !ok {
			return nil
		}
		return DBChangedMsg{}
	}
}

func stateCmd(fn func() (tracker.State, error)) tea.Cmd {
	return func() tea.Msg {
		st, err := fn()
		if err != nil {
			return ErrMsg{Err: err}
		}
		return StateMsg{State: st}
	}
}

func sessionCmd(t Tracker, action string, fn func() (*sleep.Session, error)) tea.Cmd {
	return func() tea.Msg {
		s, err := fn()
		if err != nil {
			return ErrMsg{Err: err}
		}
		return SessionMsg{Action: action, Session: s, State: t.Snapshot()}
	}
}
