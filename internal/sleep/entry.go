package sleep

import (
	"cmp"
	"slices"
	"time"

	"github.com/javiermolinar/mellow/internal/dateutil"
)

// Entry is one row of the merged timeline: either a recorded session or a
// scheduled projection.
type Entry struct {
	ID          string
	Start       time.Time
	End         *time.Time
	Type        SessionType
	IsScheduled bool
}

// FromSession converts a recorded session into a timeline entry.
func FromSession(s *Session) Entry {
	e := Entry{ID: s.ID, Start: s.Start, Type: s.Type}
	if s.End != nil {
		end := *s.End
		e.End = &end
	}
	return e
}

// IsInProgress returns true if the entry has not ended.
func (e Entry) IsInProgress() bool {
	return e.End == nil
}

// EndOr returns End, or now for a running entry.
func (e Entry) EndOr(now time.Time) time.Time {
	if e.End != nil {
		return *e.End
	}
	return now
}

// Duration returns the entry length measured up to now if running.
func (e Entry) Duration(now time.Time) time.Duration {
	return e.EndOr(now).Sub(e.Start)
}

// Overlaps reports whether e and o intersect as half-open intervals. Running
// entries are treated as ending at now.
func (e Entry) Overlaps(o Entry, now time.Time) bool {
	return dateutil.Overlaps(e.Start, e.EndOr(now), o.Start, o.EndOr(now))
}

// Timeline is an ordered list of entries.
type Timeline []Entry

// Clone returns a deep copy of t.
func (t Timeline) Clone() Timeline {
	if t == nil {
		return nil
	}
	out := make(Timeline, len(t))
	for i, e := range t {
		if e.End != nil {
			end := *e.End
			e.End = &end
		}
		out[i] = e
	}
	return out
}

// Real returns the recorded entries.
func (t Timeline) Real() Timeline {
	var out Timeline
	for _, e := range t {
		if !e.IsScheduled {
			out = append(out, e)
		}
	}
	return out
}

// Scheduled returns the projected entries.
func (t Timeline) Scheduled() Timeline {
	var out Timeline
	for _, e := range t {
		if e.IsScheduled {
			out = append(out, e)
		}
	}
	return out
}

// OnDay returns the entries starting on the calendar day of date.
func (t Timeline) OnDay(date time.Time) Timeline {
	var out Timeline
	for _, e := range t {
		if dateutil.SameDay(date, e.Start) {
			out = append(out, e)
		}
	}
	return out
}

// HasRealOn reports whether a recorded entry starts on the day of date.
func (t Timeline) HasRealOn(date time.Time) bool {
	for _, e := range t {
		if !e.IsScheduled && dateutil.SameDay(date, e.Start) {
			return true
		}
	}
	return false
}

// NightEndingOn finds the recorded night sleep that started the day before
// date and ended on date before cutoffHour.
func (t Timeline) NightEndingOn(date time.Time, cutoffHour int) (Entry, bool) {
	dayBefore := date.AddDate(0, 0, -1)
	cutoff := dateutil.AtClock(date, cutoffHour, 0)
	for _, e := range t {
		if e.IsScheduled || e.Type != TypeNighttime || e.End == nil {
			continue
		}
		if !dateutil.SameDay(date, *e.End) || !e.End.Before(cutoff) {
			continue
		}
		if !dateutil.SameDay(dayBefore, e.Start) {
			continue
		}
		return e, true
	}
	return Entry{}, false
}

// InProgress returns the running recorded entry, if any.
func (t Timeline) InProgress() (Entry, bool) {
	for _, e := range t {
		if !e.IsScheduled && e.IsInProgress() {
			return e, true
		}
	}
	return Entry{}, false
}

// SortByStart orders t by start time. Ties put recorded entries before
// scheduled ones and then compare IDs, so the order is total.
func (t Timeline) SortByStart() {
	slices.SortStableFunc(t, func(a, b Entry) int {
		if c := a.Start.Compare(b.Start); c != 0 {
			return c
		}
		if a.IsScheduled != b.IsScheduled {
			if a.IsScheduled {
				return 1
			}
			return -1
		}
		return cmp.Compare(a.ID, b.ID)
	})
}
