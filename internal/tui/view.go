package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/javiermolinar/mellow/internal/dateutil"
	"github.com/javiermolinar/mellow/internal/sleep"
	"github.com/javiermolinar/mellow/internal/tui/input"
	"github.com/javiermolinar/mellow/internal/tui/view"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
	labelWidth    = 22
	barWidth      = 20
)

// View renders the model.
func (m Model) View() string {
	width, height := m.size()
	s := m.styles

	lines := []string{m.headerLine(width)}
	if m.state.Kid == nil {
		lines = append(lines,
			"",
			s.Muted.Render("  No kid yet. Run 'mellow kid add NAME --born YYYY-MM-DD' to get started."),
			"",
			m.statusLine(),
			m.helpLine(),
		)
	} else {
		lines = append(lines, m.stripLines(width)...)
		footer := m.footerLines(width)
		rowsH := max(1, height-len(lines)-len(footer))
		lines = append(lines, m.rowLines(width, rowsH)...)
		for len(lines) < height-len(footer) {
			lines = append(lines, "")
		}
		lines = append(lines, footer...)
	}

	for i, l := range lines {
		lines[i] = ansi.Truncate(l, width, "")
	}
	out := view.PlaceBox(width, height, lipgloss.Top, strings.Join(lines, "\n"), s.Bg())

	if m.mode == ModeWeek && m.weekSummary != nil {
		out = view.Overlay(out, m.weekPanel(width), width, height, s.PanelBg())
	}
	return out
}

func (m Model) size() (int, int) {
	w, h := m.width, m.height
	if w <= 0 {
		w = defaultWidth
	}
	if h <= 0 {
		h = defaultHeight
	}
	return w, h
}

func (m Model) headerLine(width int) string {
	s := m.styles
	left := s.Title.Render(" mellow ")
	if k := m.state.Kid; k != nil {
		left += s.Header.Render(" "+k.Name) + s.Muted.Render(" · "+k.AgeFormatted(m.clock.Now()))
	}

	date := m.state.SelectedDate.Format("Mon Jan 2, 2006")
	if dateutil.SameDay(m.state.SelectedDate, m.clock.Now()) {
		date += " · today"
	}
	if m.state.Kid != nil && !m.state.Timeline.HasRealOn(m.state.SelectedDate) {
		date += " · not logged"
	}
	right := s.Muted.Render("‹ ") + s.Header.Render(date) + s.Muted.Render(" › ")

	gap := max(1, width-lipgloss.Width(left)-lipgloss.Width(right))
	return left + s.Base.Render(strings.Repeat(" ", gap)) + right
}

func (m Model) stripLines(width int) []string {
	s := m.styles
	stripW := max(24, width-2)
	now := m.clock.Now()

	var segs []view.Segment
	for _, e := range m.state.Timeline {
		segs = append(segs, view.Segment{
			Start:     e.Start,
			End:       e.EndOr(now),
			Night:     e.Type == sleep.TypeNighttime,
			Scheduled: e.IsScheduled,
			Running:   e.IsInProgress(),
		})
	}
	cells := view.StripCells(m.state.SelectedDate, segs, stripW)
	return []string{
		" " + s.Muted.Render(view.StripAxis(stripW)),
		" " + view.RenderStrip(cells, s.Strip),
	}
}

// rowLines renders the timeline rows, scrolled so the cursor stays visible.
func (m Model) rowLines(width, height int) []string {
	s := m.styles
	day := m.day()
	if len(day) == 0 {
		return []string{s.Muted.Render("  Nothing recorded or scheduled for this day.")}
	}

	offset := max(0, m.cursor-height+1)
	end := min(len(day), offset+height)
	now := m.clock.Now()

	lines := make([]string, 0, end-offset)
	for i := offset; i < end; i++ {
		row := entryRow(day[i], now)
		if i == m.cursor {
			lines = append(lines, s.RowSelected.Render(view.Fit(row, width)))
			continue
		}
		lines = append(lines, m.entryStyle(day[i]).Render(row))
	}
	return lines
}

func (m Model) entryStyle(e sleep.Entry) lipgloss.Style {
	switch {
	case e.IsInProgress():
		return m.styles.Running
	case e.IsScheduled:
		return m.styles.Scheduled
	case e.Type == sleep.TypeNighttime:
		return m.styles.Night
	default:
		return m.styles.Nap
	}
}

// entryRow renders one timeline entry as plain text.
func entryRow(e sleep.Entry, now time.Time) string {
	symbol := "■"
	label := e.Type.Label()
	switch {
	case e.IsInProgress():
		symbol = "●"
	case e.IsScheduled:
		symbol = "○"
		label = "Next " + strings.ToLower(label)
	}

	end := "now  "
	if e.End != nil {
		end = dateutil.FormatClock(*e.End)
		if !dateutil.SameDay(*e.End, e.Start) {
			end += "+"
		} else {
			end += " "
		}
	}
	return fmt.Sprintf("  %s %s %s - %s %s",
		symbol,
		view.Fit(label, labelWidth),
		dateutil.FormatClock(e.Start),
		end,
		view.FormatDuration(e.Duration(now)),
	)
}

func (m Model) footerLines(width int) []string {
	s := m.styles
	now := m.clock.Now()

	var total time.Duration
	for _, e := range m.day().Real() {
		total += e.Duration(now)
	}
	profile, _ := m.table.Lookup(m.state.AgeInMonths)
	filled := view.Bar(total, profile.IdealSleep, barWidth)
	bar := s.BarFilled.Render(strings.Repeat("█", filled)) + s.BarEmpty.Render(strings.Repeat("░", barWidth-filled))
	pct := 0
	if profile.IdealSleep > 0 {
		pct = int(100 * total / profile.IdealSleep)
	}
	slept := s.Header.Render(" Slept "+view.FormatDuration(total)) + " " + bar +
		s.Muted.Render(fmt.Sprintf(" %d%% of %s", pct, view.FormatDuration(profile.IdealSleep)))
	stats := s.Muted.Render(fmt.Sprintf("%dh tracked · %d days logged ", m.state.HoursTracked, m.state.DayStreak))
	gap := max(1, width-lipgloss.Width(slept)-lipgloss.Width(stats))

	lines := []string{
		s.Rule.Render(strings.Repeat("─", width)),
		slept + s.Base.Render(strings.Repeat(" ", gap)) + stats,
	}
	if running := m.state.InProgress; running != nil {
		badge := s.RunningBadge.Render("● " + running.Type.Label())
		lines = append(lines, " "+badge+s.Running.Render(fmt.Sprintf(" since %s · %s", dateutil.FormatClock(running.Start), view.FormatDuration(running.Duration(now)))))
	}

	switch m.mode {
	case ModePrompt:
		lines = append(lines, " "+m.prompt.View())
		for _, c := range input.PromptMatchingCommands(m.prompt.Value(), promptCommands) {
			lines = append(lines, s.HelpKey.Render("   "+c.Usage)+s.Help.Render("  "+c.Description))
		}
	case ModeConfirmDelete:
		lines = append(lines, s.Error.Render(" Delete this entry? (y/n)"))
	default:
		lines = append(lines, m.statusLine())
	}

	if m.showHelp {
		for _, c := range promptCommands {
			lines = append(lines, s.HelpKey.Render("   "+view.Fit(c.Usage, 32))+s.Help.Render(c.Description))
		}
	}
	lines = append(lines, m.helpLine())
	return lines
}

func (m Model) statusLine() string {
	if m.statusMsg == "" {
		return ""
	}
	if m.err != nil {
		return m.styles.Error.Render(" " + m.statusMsg)
	}
	return m.styles.Status.Render(" " + m.statusMsg)
}

var helpKeys = [][2]string{
	{"h/l", "day"},
	{"j/k", "move"},
	{"s", "sleep"},
	{"e", "wake"},
	{"d", "delete"},
	{"w", "week"},
	{"i", "insight"},
	{"y", "copy"},
	{":", "command"},
	{"?", "help"},
	{"q", "quit"},
}

func (m Model) helpLine() string {
	s := m.styles
	parts := make([]string, 0, len(helpKeys))
	for _, k := range helpKeys {
		parts = append(parts, s.HelpKey.Render(k[0])+s.Help.Render(" "+k[1]))
	}
	return " " + strings.Join(parts, s.Help.Render("  "))
}

// weekPanel renders the week summary box.
func (m Model) weekPanel(width int) string {
	s := m.styles
	w := m.weekSummary
	inner := min(64, max(30, width-10))

	var b []string
	b = append(b, s.PanelTitle.Render(fmt.Sprintf("WEEK  %s - %s", w.Start.Format("Mon Jan 2"), w.End.Format("Mon Jan 2"))))
	if w.Kid != nil {
		b = append(b, s.PanelMuted.Render(fmt.Sprintf("%s · %d months · ideal %s", w.Kid.Name, w.AgeInMonths, view.FormatDuration(w.Ideal))))
	}
	b = append(b, "")
	b = append(b, s.PanelMuted.Render(fmt.Sprintf("%-10s %5s %8s %8s %8s", "Day", "Naps", "Nap", "Night", "Total")))
	for _, d := range w.Days {
		row := fmt.Sprintf("%-10s %5d %8s %8s %8s", d.Date.Format("Mon 02"), d.NapCount,
			view.FormatDuration(d.NapTime), view.FormatDuration(d.NightTime), view.FormatDuration(d.Total()))
		if d.Total() == 0 {
			b = append(b, s.PanelMuted.Render(fmt.Sprintf("%-10s %5s", d.Date.Format("Mon 02"), "-")))
			continue
		}
		b = append(b, s.PanelText.Render(row))
	}
	b = append(b, "")
	if w.Stats.TrackedDays == 0 {
		b = append(b, s.PanelMuted.Render("No sleep recorded this week."))
	} else {
		b = append(b, s.PanelText.Render(fmt.Sprintf("On target %d of %d days · avg %s",
			w.Stats.DaysOnTarget, w.Stats.TrackedDays, view.FormatDuration(w.Stats.AvgTotal))))
	}

	if w.Insight != nil {
		b = append(b, "", s.PanelTitle.Render("INSIGHT"))
		for _, l := range view.Wrap(w.Insight.Summary, inner) {
			b = append(b, s.PanelText.Render(l))
		}
		for _, o := range w.Insight.Observations {
			for _, l := range view.Wrap("• "+o, inner) {
				b = append(b, s.PanelText.Render(l))
			}
		}
		for _, g := range w.Insight.Guidance {
			for _, l := range view.Wrap("➜ "+g, inner) {
				b = append(b, s.PanelText.Render(l))
			}
		}
	} else if m.weekLoading {
		b = append(b, "", s.PanelMuted.Render("Asking for insight…"))
	}

	b = append(b, "", s.PanelMuted.Render("h/l week  i insight  y copy  esc close"))
	return s.Panel.Width(inner + 4).Render(strings.Join(b, "\n"))
}
