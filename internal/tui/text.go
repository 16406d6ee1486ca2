package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/javiermolinar/mellow/internal/summary"
	"github.com/javiermolinar/mellow/internal/tracker"
	"github.com/javiermolinar/mellow/internal/tui/view"
)

// dayText renders the selected day as plain text for the clipboard.
func dayText(st tracker.State, now time.Time) string {
	var b strings.Builder
	name := "mellow"
	if st.Kid != nil {
		name = st.Kid.Name
	}
	fmt.Fprintf(&b, "%s · %s\n", name, st.SelectedDate.Format("Mon Jan 2, 2006"))

	var total time.Duration
	for _, e := range st.Day() {
		b.WriteString(strings.TrimRight(entryRow(e, now), " "))
		b.WriteString("\n")
		if !e.IsScheduled {
			total += e.Duration(now)
		}
	}
	fmt.Fprintf(&b, "Slept %s\n", view.FormatDuration(total))
	return b.String()
}

// weekText renders a week summary as plain text for the clipboard.
func weekText(w *summary.WeekSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Week %s - %s", w.Start.Format("Mon Jan 2"), w.End.Format("Mon Jan 2, 2006"))
	if w.Kid != nil {
		fmt.Fprintf(&b, " · %s", w.Kid.Name)
	}
	b.WriteString("\n")
	for _, d := range w.Days {
		if d.Total() == 0 {
			fmt.Fprintf(&b, "%s  -\n", d.Date.Format("Mon 02"))
			continue
		}
		fmt.Fprintf(&b, "%s  %d naps %s  night %s  total %s\n",
			d.Date.Format("Mon 02"), d.NapCount,
			view.FormatDuration(d.NapTime), view.FormatDuration(d.NightTime), view.FormatDuration(d.Total()))
	}
	fmt.Fprintf(&b, "On target %d of %d days\n", w.Stats.DaysOnTarget, w.Stats.TrackedDays)
	if w.Insight != nil {
		b.WriteString("\n")
		b.WriteString(w.Insight.String())
		b.WriteString("\n")
	}
	return b.String()
}
