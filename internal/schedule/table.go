package schedule

import (
	"fmt"
	"time"

	"github.com/javiermolinar/mellow/internal/config"
)

// Unbounded marks an age bracket with no upper limit.
const Unbounded = -1

// fallbackIdealHours applies to ages no bracket covers.
const fallbackIdealHours = 10.5

// AgeProfile is the ideal sleep shape for one age bracket.
type AgeProfile struct {
	IdealSleep   time.Duration
	NapDurations []time.Duration
	WakeWindows  []time.Duration
}

// TotalNaps returns the sum of nap durations.
func (p AgeProfile) TotalNaps() time.Duration {
	var total time.Duration
	for _, d := range p.NapDurations {
		total += d
	}
	return total
}

// Bracket maps an inclusive age range in months to a profile.
type Bracket struct {
	MinMonths int
	MaxMonths int // Unbounded for open-ended
	Profile   AgeProfile
}

// Contains reports whether age falls in the bracket.
func (b Bracket) Contains(age int) bool {
	return age >= b.MinMonths && (b.MaxMonths == Unbounded || age <= b.MaxMonths)
}

// Table is an ordered list of brackets. The first bracket containing an age
// wins.
type Table struct {
	Brackets []Bracket
}

// Lookup returns the profile for age. Ages no bracket covers get no naps and
// the fallback ideal sleep, and ok is false.
func (t Table) Lookup(age int) (profile AgeProfile, ok bool) {
	if age < 0 {
		age = 0
	}
	for _, b := range t.Brackets {
		if b.Contains(age) {
			return b.Profile, true
		}
	}
	return AgeProfile{IdealSleep: hours(fallbackIdealHours)}, false
}

// Validate reports the first bracket whose wake windows do not cover its naps.
func (t Table) Validate() error {
	for _, b := range t.Brackets {
		if len(b.Profile.WakeWindows) < len(b.Profile.NapDurations) {
			return fmt.Errorf("%w: bracket %d-%d has %d naps but %d wake windows",
				ErrTableInconsistency, b.MinMonths, b.MaxMonths,
				len(b.Profile.NapDurations), len(b.Profile.WakeWindows))
		}
	}
	return nil
}

// DefaultTable returns the built-in sleep table.
//
// Months 0-1 use three one-hour naps with 45 minute wake windows. Month 2
// has five naps and month 3 four. From month 4 on, three one-hour naps with
// hour-long wake windows apply while total sleep steps down with age.
func DefaultTable() Table {
	threeNaps := []time.Duration{hm(1, 0), hm(1, 0), hm(1, 0)}
	hourWindows := minutes(60, 60, 60)

	standard := func(min, max int, ideal float64) Bracket {
		return Bracket{MinMonths: min, MaxMonths: max, Profile: AgeProfile{
			IdealSleep:   hours(ideal),
			NapDurations: threeNaps,
			WakeWindows:  hourWindows,
		}}
	}

	return Table{Brackets: []Bracket{
		{MinMonths: 0, MaxMonths: 1, Profile: AgeProfile{
			IdealSleep:   hours(15.5),
			NapDurations: threeNaps,
			WakeWindows:  minutes(45, 45, 45),
		}},
		{MinMonths: 2, MaxMonths: 2, Profile: AgeProfile{
			IdealSleep:   hours(15.5),
			NapDurations: []time.Duration{hm(1, 0), hm(1, 15), hm(1, 15), hm(1, 15), hm(0, 30)},
			WakeWindows:  minutes(75, 75, 75, 75, 90),
		}},
		{MinMonths: 3, MaxMonths: 3, Profile: AgeProfile{
			IdealSleep:   hours(15),
			NapDurations: []time.Duration{hm(1, 15), hm(1, 30), hm(1, 30), hm(0, 30)},
			WakeWindows:  minutes(75, 90, 105, 120),
		}},
		standard(4, 6, 14.5),
		standard(7, 9, 14),
		standard(10, 12, 13.5),
		standard(13, 18, 13),
		standard(19, 24, 12.5),
		standard(25, 36, 12),
		standard(37, 48, 11.5),
		standard(49, Unbounded, fallbackIdealHours),
	}}
}

// TableFromConfig builds a table from configured brackets. With no brackets
// configured the default table is returned.
func TableFromConfig(brackets []config.BracketConfig) (Table, error) {
	if len(brackets) == 0 {
		return DefaultTable(), nil
	}
	t := Table{Brackets: make([]Bracket, 0, len(brackets))}
	for _, bc := range brackets {
		max := bc.MaxMonths
		if max < 0 {
			max = Unbounded
		}
		naps := make([]time.Duration, len(bc.Naps))
		for i, m := range bc.Naps {
			naps[i] = time.Duration(m) * time.Minute
		}
		t.Brackets = append(t.Brackets, Bracket{
			MinMonths: bc.MinMonths,
			MaxMonths: max,
			Profile: AgeProfile{
				IdealSleep:   hours(bc.IdealHours),
				NapDurations: naps,
				WakeWindows:  minutes(bc.WakeWindows...),
			},
		})
	}
	if err := t.Validate(); err != nil {
		return Table{}, err
	}
	return t, nil
}

func hm(h, m int) time.Duration {
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute
}

func hours(h float64) time.Duration {
	return time.Duration(h * float64(time.Hour)).Round(time.Minute)
}

func minutes(ms ...int) []time.Duration {
	out := make([]time.Duration, len(ms))
	for i, m := range ms {
		out[i] = time.Duration(m) * time.Minute
	}
	return out
}
