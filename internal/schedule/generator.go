// Package schedule projects an ideal nap and night schedule for a child and
// merges it with recorded sleep into a single timeline.
package schedule

import (
	"errors"
	"fmt"
	"time"

	"github.com/javiermolinar/mellow/internal/dateutil"
)

// Generation errors.
var (
	// ErrTableInconsistency signals a sleep table authoring bug, such as fewer
	// wake windows than naps.
	ErrTableInconsistency = errors.New("sleep table inconsistency")
	// ErrNonPositiveNight is returned when naps consume all of the ideal sleep.
	ErrNonPositiveNight = errors.New("night sleep duration is not positive")
)

// Kind distinguishes naps from the night block.
type Kind string

const (
	KindNap   Kind = "nap"
	KindNight Kind = "night"
)

// Scheduled is one projected sleep interval.
type Scheduled struct {
	Kind    Kind
	Ordinal int // 1-based nap number, 0 for the night block
	Start   time.Time
	End     time.Time
}

// Duration returns End - Start.
func (s Scheduled) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

// Generator turns an age and an anchor into a day's ideal schedule.
type Generator struct {
	table      Table
	clock      dateutil.Clock
	wakeHour   int
	wakeMinute int
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithClock sets the clock used when no base date is given.
func WithClock(c dateutil.Clock) GeneratorOption {
	return func(g *Generator) { g.clock = c }
}

// WithDefaultWake sets the wake-up clock used when no anchor is given.
func WithDefaultWake(hour, minute int) GeneratorOption {
	return func(g *Generator) {
		g.wakeHour = hour
		g.wakeMinute = minute
	}
}

// NewGenerator creates a Generator over table.
func NewGenerator(table Table, opts ...GeneratorOption) *Generator {
	g := &Generator{
		table:    table,
		clock:    dateutil.SystemClock{},
		wakeHour: dateutil.MorningHour,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Table returns the table the generator reads.
func (g *Generator) Table() Table {
	return g.table
}

// Anchor resolves the first wake-up of the day: wakeUp if set, otherwise
// baseDate (or today) at the default wake clock.
func (g *Generator) Anchor(wakeUp *time.Time, baseDate time.Time) time.Time {
	if wakeUp != nil {
		return *wakeUp
	}
	if baseDate.IsZero() {
		baseDate = g.clock.Now()
	}
	return dateutil.AtClock(baseDate, g.wakeHour, g.wakeMinute)
}

// Generate returns the naps and the night block for one day, ordered by start.
//
// Nap i starts WakeWindows[i] after the previous wake-up and lasts
// NapDurations[i]. The night block ends at the anchor's wall clock on the
// next day and lasts exactly the ideal sleep minus all naps.
func (g *Generator) Generate(ageInMonths int, wakeUp *time.Time, baseDate time.Time) ([]Scheduled, error) {
	profile, _ := g.table.Lookup(ageInMonths)

	if len(profile.WakeWindows) < len(profile.NapDurations) {
		return nil, fmt.Errorf("%w: age %d months has %d naps but %d wake windows",
			ErrTableInconsistency, ageInMonths, len(profile.NapDurations), len(profile.WakeWindows))
	}

	night := profile.IdealSleep - profile.TotalNaps()
	if night <= 0 {
		return nil, fmt.Errorf("%w: age %d months, ideal %v, naps %v",
			ErrNonPositiveNight, ageInMonths, profile.IdealSleep, profile.TotalNaps())
	}

	anchor := g.Anchor(wakeUp, baseDate)
	out := make([]Scheduled, 0, len(profile.NapDurations)+1)

	lastWake := anchor
	for i, d := range profile.NapDurations {
		start := dateutil.AddMinutes(lastWake, int(profile.WakeWindows[i]/time.Minute))
		end := dateutil.AddMinutes(start, int(d/time.Minute))
		out = append(out, Scheduled{Kind: KindNap, Ordinal: i + 1, Start: start, End: end})
		lastWake = end
	}

	// The night ends at the anchor's wall clock the next day but always lasts
	// exactly night, even when a DST change falls inside it.
	nightEnd := dateutil.AddMinutes(anchor, 24*60)
	bedtime := nightEnd.Add(-night)
	if bedtime.Before(lastWake) {
		return nil, fmt.Errorf("%w: age %d months, bedtime %s falls before the last nap ends at %s",
			ErrTableInconsistency, ageInMonths, dateutil.FormatClock(bedtime), dateutil.FormatClock(lastWake))
	}
	out = append(out, Scheduled{Kind: KindNight, Start: bedtime, End: nightEnd})

	return out, nil
}
