package schedule

import (
	"errors"
	"time"

	"github.com/javiermolinar/mellow/internal/dateutil"
	"github.com/javiermolinar/mellow/internal/logging"
	"github.com/javiermolinar/mellow/internal/sleep"
)

// DefaultWindowDays is the number of days projected on each side of the
// selected date.
const DefaultWindowDays = 2

// Merger combines recorded sessions with projected schedules over a window
// of days around the selected date.
type Merger struct {
	gen        *Generator
	clock      dateutil.Clock
	log        logging.Logger
	windowDays int
	middayHour int
}

// MergerOption configures a Merger.
type MergerOption func(*Merger)

// WithWindowDays overrides the window padding. Values below 1 are ignored.
func WithWindowDays(n int) MergerOption {
	return func(m *Merger) {
		if n >= 1 {
			m.windowDays = n
		}
	}
}

// WithMiddayHour sets the hour before which a night must end to anchor the day.
func WithMiddayHour(h int) MergerOption {
	return func(m *Merger) { m.middayHour = h }
}

// WithMergerClock sets the clock used to bound running sessions.
func WithMergerClock(c dateutil.Clock) MergerOption {
	return func(m *Merger) { m.clock = c }
}

// WithLogger sets the logger used for generation failures.
func WithLogger(l logging.Logger) MergerOption {
	return func(m *Merger) { m.log = l }
}

// NewMerger creates a Merger that projects with gen.
func NewMerger(gen *Generator, opts ...MergerOption) *Merger {
	m := &Merger{
		gen:        gen,
		clock:      dateutil.SystemClock{},
		log:        logging.Nop(),
		windowDays: DefaultWindowDays,
		middayHour: dateutil.MiddayHour,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// WindowDays returns the configured window padding.
func (m *Merger) WindowDays() int {
	return m.windowDays
}

// Refresh regenerates the schedule for the window around selectedDate and
// merges it into current.
//
// Recorded entries are always kept. Scheduled entries from a previous refresh
// are dropped when they start inside the window or now collide with a
// recorded entry. New scheduled entries that overlap a recorded entry are
// discarded, and so are new naps that fall inside another day's projected
// night after a late wake-up. The result is de-duplicated by ID and sorted by start. current
// is not modified.
func (m *Merger) Refresh(current sleep.Timeline, selectedDate time.Time, ageInMonths int) sleep.Timeline {
	now := m.clock.Now()
	if selectedDate.IsZero() {
		selectedDate = now
	}
	dates := dateutil.WindowDates(selectedDate, m.windowDays)

	recorded := current.Real().Clone()

	var kept sleep.Timeline
	for _, e := range current.Scheduled() {
		if inWindow(e.Start, dates) || overlapsAny(e, recorded, now) {
			continue
		}
		kept = append(kept, e)
	}

	var fresh sleep.Timeline
	for _, date := range dates {
		var wakeUp *time.Time
		if night, ok := recorded.NightEndingOn(date, m.middayHour); ok {
			end := *night.End
			wakeUp = &end
		}
		slots, err := m.gen.Generate(ageInMonths, wakeUp, date)
		if err != nil {
			m.logGenerateError(err, ageInMonths, date)
			continue
		}
		for _, s := range slots {
			e := s.Entry()
			if overlapsAny(e, recorded, now) {
				continue
			}
			fresh = append(fresh, e)
		}
	}
	fresh = dropNapsUnderNights(fresh, now)

	merged := make(sleep.Timeline, 0, len(recorded)+len(kept)+len(fresh))
	merged = append(merged, recorded...)
	merged = append(merged, kept...)
	merged = append(merged, fresh...)
	merged = dedupe(merged)
	merged.SortByStart()
	return merged
}

// Build merges a snapshot of recorded sessions with a fresh projection.
func (m *Merger) Build(recorded []*sleep.Session, selectedDate time.Time, ageInMonths int) sleep.Timeline {
	tl := make(sleep.Timeline, 0, len(recorded))
	for _, s := range recorded {
		tl = append(tl, sleep.FromSession(s))
	}
	return m.Refresh(tl, selectedDate, ageInMonths)
}

func (m *Merger) logGenerateError(err error, age int, date time.Time) {
	kv := []any{"age_months", age, "date", dateutil.FormatDate(date), "error", err}
	if errors.Is(err, ErrTableInconsistency) {
		m.log.Errorw("sleep table inconsistent, skipping day", kv...)
		return
	}
	m.log.Warnw("no schedule generated for day", kv...)
}

func inWindow(t time.Time, dates []time.Time) bool {
	for _, d := range dates {
		if dateutil.SameDay(d, t) {
			return true
		}
	}
	return false
}

func overlapsAny(e sleep.Entry, others sleep.Timeline, now time.Time) bool {
	for _, o := range others {
		if e.Overlaps(o, now) {
			return true
		}
	}
	return false
}

// dropNapsUnderNights removes naps that overlap a night in the same
// timeline. The night wins.
func dropNapsUnderNights(tl sleep.Timeline, now time.Time) sleep.Timeline {
	var nights sleep.Timeline
	for _, e := range tl {
		if e.Type == sleep.TypeNighttime {
			nights = append(nights, e)
		}
	}
	out := make(sleep.Timeline, 0, len(tl))
	for _, e := range tl {
		if e.Type == sleep.TypeNap && overlapsAny(e, nights, now) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// dedupe keeps one entry per ID. A later entry replaces an earlier one in
// place.
func dedupe(tl sleep.Timeline) sleep.Timeline {
	index := make(map[string]int, len(tl))
	out := make(sleep.Timeline, 0, len(tl))
	for _, e := range tl {
		if i, ok := index[e.ID]; ok {
			out[i] = e
			continue
		}
		index[e.ID] = len(out)
		out = append(out, e)
	}
	return out
}
