package sleep

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/javiermolinar/mellow/internal/dateutil"
)

// Default usual bedtime and wake-up clocks for a new kid.
const (
	DefaultSleepTime = "20:00"
	DefaultWakeTime  = "08:00"
)

// Kid is the child whose sleep is tracked.
type Kid struct {
	ID          string
	Name        string
	DateOfBirth time.Time
	SleepTime   string // usual bedtime, "HH:MM"
	WakeTime    string // usual wake-up, "HH:MM"
	CreatedAt   time.Time
}

// NewKid creates a kid with validation. Empty clocks fall back to the
// defaults.
func NewKid(name string, dob time.Time, sleepTime, wakeTime string, now time.Time) (*Kid, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	if sleepTime == "" {
		sleepTime = DefaultSleepTime
	}
	if wakeTime == "" {
		wakeTime = DefaultWakeTime
	}
	if _, _, err := dateutil.ParseClock(sleepTime); err != nil {
		return nil, fmt.Errorf("sleep time: %w", err)
	}
	if _, _, err := dateutil.ParseClock(wakeTime); err != nil {
		return nil, fmt.Errorf("wake time: %w", err)
	}
	return &Kid{
		ID:          uuid.NewString(),
		Name:        name,
		DateOfBirth: dateutil.TruncateToDay(dob),
		SleepTime:   sleepTime,
		WakeTime:    wakeTime,
		CreatedAt:   now,
	}, nil
}

// AgeInMonths returns the number of whole calendar months since birth.
func (k *Kid) AgeInMonths(now time.Time) int {
	y, m, _ := calendarDiff(k.DateOfBirth, now)
	return y*12 + m
}

// AgeFormatted renders the age as "1 year 2 months", "3 months 4 days" or
// "5 days".
func (k *Kid) AgeFormatted(now time.Time) string {
	y, m, d := calendarDiff(k.DateOfBirth, now)
	switch {
	case y >= 1:
		parts := []string{plural(y, "year")}
		if m > 0 {
			parts = append(parts, plural(m, "month"))
		}
		return strings.Join(parts, " ")
	case m >= 1:
		parts := []string{plural(m, "month")}
		if d > 0 {
			parts = append(parts, plural(d, "day"))
		}
		return strings.Join(parts, " ")
	default:
		return plural(d, "day")
	}
}

// LastNight builds the session seeded when a kid is created: from the usual
// bedtime yesterday to the usual wake-up today.
func (k *Kid) LastNight(now time.Time) (*Session, error) {
	sh, sm, err := dateutil.ParseClock(k.SleepTime)
	if err != nil {
		return nil, err
	}
	wh, wm, err := dateutil.ParseClock(k.WakeTime)
	if err != nil {
		return nil, err
	}
	start := dateutil.AtClock(now.AddDate(0, 0, -1), sh, sm)
	end := dateutil.AtClock(now, wh, wm)
	if !end.After(start) {
		end = end.AddDate(0, 0, 1)
	}
	return NewSession(k.ID, start, &end, TypeNighttime, now)
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// calendarDiff returns the years, months and days from a to b counted on
// the calendar. It returns zeros if b is before a.
func calendarDiff(a, b time.Time) (years, months, days int) {
	a = dateutil.TruncateToDay(a)
	b = dateutil.TruncateToDay(b.In(a.Location()))
	if b.Before(a) {
		return 0, 0, 0
	}
	years = b.Year() - a.Year()
	months = int(b.Month()) - int(a.Month())
	days = b.Day() - a.Day()
	if days < 0 {
		months--
		// Days in the month preceding b.
		days += time.Date(b.Year(), b.Month(), 0, 0, 0, 0, 0, b.Location()).Day()
	}
	if months < 0 {
		years--
		months += 12
	}
	return years, months, days
}
