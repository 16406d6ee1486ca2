package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/javiermolinar/mellow/internal/dateutil"
	"github.com/javiermolinar/mellow/internal/llm"
	"github.com/javiermolinar/mellow/internal/schedule"
	"github.com/javiermolinar/mellow/internal/sleep"
)

// shortIDLen is how much of a session ID the CLI prints and accepts.
const shortIDLen = 8

// FormatDuration formats d as 1h30m, 45m or 2h.
func FormatDuration(d time.Duration) string {
	minutes := int(d.Round(time.Minute).Minutes())
	if minutes <= 0 {
		return "0m"
	}
	hours, mins := minutes/60, minutes%60
	switch {
	case hours == 0:
		return fmt.Sprintf("%dm", mins)
	case mins == 0:
		return fmt.Sprintf("%dh", hours)
	default:
		return fmt.Sprintf("%dh%dm", hours, mins)
	}
}

// shortID returns the printable prefix of a recorded session ID. Scheduled
// IDs are not shown since they cannot be edited.
func shortID(e sleep.Entry) string {
	if e.IsScheduled {
		return strings.Repeat(" ", shortIDLen)
	}
	if len(e.ID) <= shortIDLen {
		return e.ID
	}
	return e.ID[:shortIDLen]
}

func entrySymbol(e sleep.Entry) string {
	switch {
	case e.IsInProgress():
		return "●"
	case e.IsScheduled:
		return "○"
	default:
		return "■"
	}
}

func entryColor(e sleep.Entry) *color.Color {
	switch {
	case e.IsInProgress():
		return colorRunning
	case e.IsScheduled:
		return colorScheduled
	case e.Type == sleep.TypeNighttime:
		return colorNight
	default:
		return colorNap
	}
}

// PrintEntryRow prints one timeline entry.
func PrintEntryRow(w io.Writer, e sleep.Entry, now time.Time) {
	end := "now  "
	if e.End != nil {
		end = dateutil.FormatClock(*e.End)
		if !dateutil.SameDay(e.Start, *e.End) {
			end += "+"
		} else {
			end += " "
		}
	}
	label := e.Type.Label()
	if e.IsScheduled {
		label = "Next " + strings.ToLower(label)
	}
	c := entryColor(e)
	fmt.Fprintf(w, "  %s %s  %s-%s %s  %s\n",
		c.Sprint(entrySymbol(e)),
		formatMuted(shortID(e)),
		dateutil.FormatClock(e.Start),
		end,
		c.Sprintf("%-16s", label),
		formatMuted(FormatDuration(e.Duration(now))))
}

// PrintTimeline prints entries grouped by the day they start on.
func PrintTimeline(w io.Writer, tl sleep.Timeline, now time.Time) {
	var current time.Time
	for _, e := range tl {
		day := dateutil.TruncateToDay(e.Start)
		if !day.Equal(current) {
			if !current.IsZero() {
				fmt.Fprintln(w)
			}
			fmt.Fprintf(w, "  %s\n", formatHeader(day.Format("Mon Jan 2")))
			current = day
		}
		PrintEntryRow(w, e, now)
	}
}

// PrintScheduled prints a generated schedule.
func PrintScheduled(w io.Writer, items []schedule.Scheduled) {
	for _, s := range items {
		PrintEntryRow(w, s.Entry(), s.Start)
	}
}

// SleepBar draws total sleep against the ideal for the age.
func SleepBar(total, ideal time.Duration, width int) string {
	if ideal <= 0 {
		return "[" + strings.Repeat("░", width) + "]"
	}
	pct := int(total * 100 / ideal)
	filled := int(total * time.Duration(width) / ideal)
	filled = min(max(filled, 0), width)

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	label := fmt.Sprintf("(%d%% of %s)", pct, FormatDuration(ideal))
	if pct < 85 {
		return fmt.Sprintf("[%s] %s", colorNight.Sprint(bar), formatWarn(label))
	}
	return fmt.Sprintf("[%s] %s", colorNight.Sprint(bar), formatStats(label))
}

// PrintInsight prints the coach's reading wrapped to width.
func PrintInsight(w io.Writer, in *llm.Insight, width int) {
	wrapAndPrint(w, in.Summary, "  ", width)
	if len(in.Observations) > 0 {
		fmt.Fprintln(w)
		for _, o := range in.Observations {
			wrapAndPrint(w, o, "    • ", width)
		}
	}
	if len(in.Guidance) > 0 {
		fmt.Fprintln(w)
		for _, g := range in.Guidance {
			wrapAndPrint(w, g, "    ➜ ", width)
		}
	}
}

// wrapAndPrint wraps text to width and prints with the given prefix.
func wrapAndPrint(w io.Writer, text, prefix string, width int) {
	words := strings.Fields(text)
	if len(words) == 0 {
		return
	}
	indent := strings.Repeat(" ", len([]rune(prefix)))
	avail := max(width-len([]rune(prefix)), 20)

	line := ""
	lead := prefix
	for _, word := range words {
		switch {
		case line == "":
			line = word
		case len(line)+1+len(word) <= avail:
			line += " " + word
		default:
			fmt.Fprintln(w, formatInsight(lead+line))
			lead = indent
			line = word
		}
	}
	fmt.Fprintln(w, formatInsight(lead+line))
}
