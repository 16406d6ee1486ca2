package sleep

import (
	"time"

	"github.com/javiermolinar/mellow/internal/dateutil"
)

// TotalHours sums session durations in hours. Running sessions count up to now.
func TotalHours(sessions []*Session, now time.Time) float64 {
	var total time.Duration
	for _, s := range sessions {
		total += s.Duration(now)
	}
	return total.Hours()
}

// DayStreak counts the distinct calendar days on which at least one session
// started.
func DayStreak(sessions []*Session) int {
	days := make(map[time.Time]struct{}, len(sessions))
	for _, s := range sessions {
		days[dateutil.TruncateToDay(s.Start)] = struct{}{}
	}
	return len(days)
}

// DaySummary aggregates sleep for one calendar day.
type DaySummary struct {
	Date      time.Time
	NapCount  int
	NapTime   time.Duration
	NightTime time.Duration
}

// Total returns nap plus night sleep.
func (d DaySummary) Total() time.Duration {
	return d.NapTime + d.NightTime
}

// Summarize groups sessions by the day they started.
func Summarize(sessions []*Session, start, end time.Time, now time.Time) []DaySummary {
	start = dateutil.TruncateToDay(start)
	end = dateutil.TruncateToDay(end)
	var days []DaySummary
	index := make(map[time.Time]int)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		index[d] = len(days)
		days = append(days, DaySummary{Date: d})
	}
	for _, s := range sessions {
		i, ok := index[dateutil.TruncateToDay(s.Start)]
		if !ok {
			continue
		}
		switch s.Type {
		case TypeNighttime:
			days[i].NightTime += s.Duration(now)
		default:
			days[i].NapCount++
			days[i].NapTime += s.Duration(now)
		}
	}
	return days
}
