// Package dateutil provides date parsing and calendar helpers.
// All calendar arithmetic happens in the location of the value being
// manipulated, so local wall clock times survive DST changes.
package dateutil

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Validation errors.
var (
	ErrInvalidDateFormat  = errors.New("date must be in YYYY-MM-DD format")
	ErrInvalidClockFormat = errors.New("time must be in HH:MM format")
	ErrEndDateBeforeStart = errors.New("end date must be on or after start date")
)

const (
	dateLayout     = "2006-01-02"
	clockLayout    = "15:04"
	dateTimeLayout = "2006-01-02 15:04"
)

// Clock hours used across the app.
const (
	MiddayHour  = 12
	MorningHour = 8
)

// DateRange represents a validated date range.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange creates a new DateRange with validation.
// startDate can be empty (defaults to today) or in YYYY-MM-DD format.
// endDate can be empty (defaults to startDate) or in YYYY-MM-DD format.
func NewDateRange(startDate, endDate string) (*DateRange, error) {
	start, err := ParseDate(startDate)
	if err != nil {
		return nil, err
	}

	end := start
	if endDate != "" {
		end, err = ParseDate(endDate)
		if err != nil {
			return nil, err
		}
	}

	if end.Before(start) {
		return nil, ErrEndDateBeforeStart
	}

	return &DateRange{Start: start, End: end}, nil
}

// ParseDate parses a date string in YYYY-MM-DD format in the local timezone.
// If the string is empty, returns today's date.
func ParseDate(s string) (time.Time, error) {
	if s == "" {
		return TruncateToDay(time.Now()), nil
	}
	t, err := time.ParseInLocation(dateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, ErrInvalidDateFormat
	}
	return t, nil
}

// ParseClock parses an "HH:MM" string and returns hour and minute.
func ParseClock(s string) (hour, minute int, err error) {
	t, err := time.Parse(clockLayout, strings.TrimSpace(s))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidClockFormat, s)
	}
	return t.Hour(), t.Minute(), nil
}

// ParseDateTime accepts either "YYYY-MM-DD HH:MM" or a bare "HH:MM", which
// is placed on the given day.
func ParseDateTime(s string, day time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.ParseInLocation(dateTimeLayout, s, day.Location()); err == nil {
		return t, nil
	}
	hour, minute, err := ParseClock(s)
	if err != nil {
		return time.Time{}, err
	}
	return AtClock(day, hour, minute), nil
}

// FormatDate renders t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}

// FormatClock renders t as HH:MM.
func FormatClock(t time.Time) string {
	return t.Format(clockLayout)
}

// WeekRange returns the Monday and Sunday of the ISO week containing t.
func WeekRange(t time.Time) (monday, sunday time.Time) {
	t = TruncateToDay(t)
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday becomes day 7 in ISO week
	}
	monday = t.AddDate(0, 0, -(weekday - 1))
	sunday = monday.AddDate(0, 0, 6)
	return monday, sunday
}

// TruncateToDay returns t with time set to midnight.
func TruncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// AtClock returns the calendar day of t at hour:minute.
func AtClock(t time.Time, hour, minute int) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), hour, minute, 0, 0, t.Location())
}

// AdjustToMidday moves t to 12:00 on the same day.
func AdjustToMidday(t time.Time) time.Time {
	return AtClock(t, MiddayHour, 0)
}

// AddMinutes adds wall clock minutes to t. Adding 24h to 08:00 lands on
// 08:00 the next day even across a DST transition.
func AddMinutes(t time.Time, minutes int) time.Time {
	days := minutes / (24 * 60)
	rest := minutes % (24 * 60)
	t = t.AddDate(0, 0, days)
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute()+rest, t.Second(), t.Nanosecond(), t.Location())
}

// AddDays adds calendar days to t.
func AddDays(t time.Time, days int) time.Time {
	return t.AddDate(0, 0, days)
}

// SameDay reports whether a and b fall on the same calendar day in a's location.
func SameDay(a, b time.Time) bool {
	b = b.In(a.Location())
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// Overlaps reports whether the half-open intervals [start1, end1) and
// [start2, end2) intersect. Touching intervals do not overlap.
func Overlaps(start1, end1, start2, end2 time.Time) bool {
	return start1.Before(end2) && start2.Before(end1)
}

// WindowDates returns the days center-n through center+n, each adjusted to
// midday, in ascending order.
func WindowDates(center time.Time, n int) []time.Time {
	if n < 0 {
		n = 0
	}
	mid := AdjustToMidday(center)
	dates := make([]time.Time, 0, 2*n+1)
	for i := -n; i <= n; i++ {
		dates = append(dates, mid.AddDate(0, 0, i))
	}
	return dates
}

// ParseRelativeDate parses a date string that can be:
//   - Empty string or "today": returns relativeTo date
//   - Keywords: "yesterday", "tomorrow"
//   - Offsets: "-1", "+2" (days from relativeTo)
//   - Absolute date: "2025-01-15" (YYYY-MM-DD)
//
// All inputs are case-insensitive. Returns ErrInvalidDateFormat for
// unrecognized input.
func ParseRelativeDate(s string, relativeTo time.Time) (time.Time, error) {
	today := TruncateToDay(relativeTo)
	input := strings.ToLower(strings.TrimSpace(s))

	switch input {
	case "", "today":
		return today, nil
	case "yesterday":
		return today.AddDate(0, 0, -1), nil
	case "tomorrow":
		return today.AddDate(0, 0, 1), nil
	}

	if strings.HasPrefix(input, "+") || strings.HasPrefix(input, "-") {
		var days int
		if _, err := fmt.Sscanf(input, "%d", &days); err != nil {
			return time.Time{}, ErrInvalidDateFormat
		}
		return today.AddDate(0, 0, days), nil
	}

	result, err := time.ParseInLocation(dateLayout, input, relativeTo.Location())
	if err != nil {
		return time.Time{}, ErrInvalidDateFormat
	}
	return result, nil
}
