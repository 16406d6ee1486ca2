package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/mellow/internal/dateutil"
	"github.com/javiermolinar/mellow/internal/sleep"
	"github.com/javiermolinar/mellow/internal/tui/commands"
	"github.com/javiermolinar/mellow/internal/tui/input"
)

var promptCommands = []input.PromptCommand{
	{Name: "/log", Usage: "/log 13:10 14:25 [nap|night]", Description: "Record a finished nap or night on this day"},
	{Name: "/start", Usage: "/start", Description: "Start a session now"},
	{Name: "/stop", Usage: "/stop", Description: "End the running session"},
	{Name: "/date", Usage: "/date yesterday|-2|2025-01-09", Description: "Jump to a day"},
	{Name: "/today", Usage: "/today", Description: "Jump to today"},
	{Name: "/kid", Usage: "/kid Ada", Description: "Switch kid"},
	{Name: "/week", Usage: "/week [insight]", Description: "Summarize the week"},
	{Name: "/help", Usage: "/help", Description: "Show available commands"},
}

var errUsage = errors.New("usage")

// runPrompt executes a submitted prompt line.
func (m Model) runPrompt(line string) (tea.Model, tea.Cmd) {
	if strings.TrimSpace(line) == "" || strings.TrimSpace(line) == "/" {
		return m, nil
	}
	name, args, err := input.ParsePrompt(line)
	if err != nil {
		return m, m.setStatus(err.Error())
	}
	m.logMsg("prompt", "command", name, "args", args)

	switch name {
	case "/log":
		start, end, typ, err := parseLogArgs(m.state.SelectedDate, args, m.clock.Now())
		if err != nil {
			return m, m.setStatus(err.Error())
		}
		return m, commands.LogSession(m.ctx, m.tracker, start, end, typ)
	case "/start":
		return m, commands.StartSession(m.ctx, m.tracker)
	case "/stop":
		return m, commands.EndSession(m.ctx, m.tracker)
	case "/date":
		date, err := dateutil.ParseRelativeDate(strings.Join(args, " "), m.clock.Now())
		if err != nil {
			return m, m.setStatus(err.Error())
		}
		return m, commands.SelectDate(m.ctx, m.tracker, date)
	case "/today":
		return m, commands.SelectDate(m.ctx, m.tracker, m.clock.Now())
	case "/kid":
		id, err := m.findKid(strings.Join(args, " "))
		if err != nil {
			return m, m.setStatus(err.Error())
		}
		return m, commands.SelectKid(m.ctx, m.tracker, id)
	case "/week":
		insight := len(args) > 0 && strings.EqualFold(args[0], "insight")
		return m.openWeek(m.state.SelectedDate, insight)
	case "/help":
		m.showHelp = true
		return m, nil
	default:
		return m, m.setStatus(fmt.Sprintf("Unknown command %s, try /help", name))
	}
}

// parseLogArgs reads "START END [TYPE]" relative to day. A bare END clock at
// or before START is taken to be on the next day. Without TYPE the session
// is classified by its length.
func parseLogArgs(day time.Time, args []string, now time.Time) (start, end time.Time, typ sleep.SessionType, err error) {
	if len(args) < 2 || len(args) > 3 {
		return start, end, typ, fmt.Errorf("%w: /log START END [nap|night]", errUsage)
	}
	start, err = dateutil.ParseDateTime(args[0], day)
	if err != nil {
		return start, end, typ, fmt.Errorf("start: %w", err)
	}
	end, err = dateutil.ParseDateTime(args[1], dateutil.TruncateToDay(start))
	if err != nil {
		return start, end, typ, fmt.Errorf("end: %w", err)
	}
	if !end.After(start) {
		end = dateutil.AddDays(end, 1)
	}

	if len(args) == 3 {
		typ, err = sleep.ParseType(args[2])
		if err != nil {
			return start, end, typ, err
		}
		return start, end, typ, nil
	}
	return start, end, sleep.ClassifyType(start, &end, now), nil
}

func (m Model) findKid(query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", fmt.Errorf("%w: /kid NAME", errUsage)
	}
	var matches []string
	for _, k := range m.state.Kids {
		if strings.EqualFold(k.Name, query) || k.ID == query {
			return k.ID, nil
		}
		if strings.HasPrefix(strings.ToLower(k.Name), strings.ToLower(query)) {
			matches = append(matches, k.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no kid matches %q", query)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%q matches %d kids", query, len(matches))
	}
}
