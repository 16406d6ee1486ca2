// Package summary builds weekly sleep summaries.
package summary

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/javiermolinar/mellow/internal/config"
	"github.com/javiermolinar/mellow/internal/dateutil"
	"github.com/javiermolinar/mellow/internal/llm"
	"github.com/javiermolinar/mellow/internal/schedule"
	"github.com/javiermolinar/mellow/internal/sleep"
)

// targetSlack is how far below the ideal a day may fall and still count as
// on target.
const targetSlack = 30 * time.Minute

// WeekSummary holds one kid's week of sleep and optional insight.
type WeekSummary struct {
	Start       time.Time
	End         time.Time
	Kid         *sleep.Kid
	AgeInMonths int
	Ideal       time.Duration
	Days        []sleep.DaySummary
	Stats       WeekStats
	Insight     *llm.Insight
}

// WeekStats aggregates the tracked days of a week.
type WeekStats struct {
	TrackedDays  int
	DaysOnTarget int
	Naps         int
	AvgNap       time.Duration
	AvgNight     time.Duration
	AvgTotal     time.Duration
}

// Gap returns how far the average day falls short of ideal. Negative means
// the kid slept more than recommended.
func (s WeekStats) Gap(ideal time.Duration) time.Duration {
	if s.TrackedDays == 0 {
		return 0
	}
	return ideal - s.AvgTotal
}

// Reviewer produces an insight for a week.
type Reviewer interface {
	ReviewWeek(ctx context.Context, data llm.WeekData) (*llm.Insight, error)
}

// BuildWeekSummaryOptions configures the repository-backed summary builder.
type BuildWeekSummaryOptions struct {
	WeekStart      time.Time
	Now            time.Time
	Table          schedule.Table
	IncludeInsight bool
	LLM            config.LLMConfig
	Reviewer       Reviewer // overrides the client built from LLM
}

// SummarizeWeek groups sessions into the Monday-Sunday week containing
// weekStart and compares each day against the kid's ideal sleep.
func SummarizeWeek(weekStart time.Time, kid *sleep.Kid, sessions []*sleep.Session, table schedule.Table, now time.Time) *WeekSummary {
	start, end := dateutil.WeekRange(weekStart)
	age := kid.AgeInMonths(end)
	profile, _ := table.Lookup(age)

	days := sleep.Summarize(sessions, start, end, now)
	return &WeekSummary{
		Start:       start,
		End:         end,
		Kid:         kid,
		AgeInMonths: age,
		Ideal:       profile.IdealSleep,
		Days:        days,
		Stats:       computeStats(days, profile.IdealSleep),
	}
}

func computeStats(days []sleep.DaySummary, ideal time.Duration) WeekStats {
	var stats WeekStats
	var nap, night time.Duration
	for _, d := range days {
		if d.Total() == 0 {
			continue
		}
		stats.TrackedDays++
		stats.Naps += d.NapCount
		nap += d.NapTime
		night += d.NightTime
		if d.Total() >= ideal-targetSlack {
			stats.DaysOnTarget++
		}
	}
	if stats.TrackedDays > 0 {
		n := time.Duration(stats.TrackedDays)
		stats.AvgNap = nap / n
		stats.AvgNight = night / n
		stats.AvgTotal = (nap + night) / n
	}
	return stats
}

// BuildWeekSummary loads the kid's sessions for the requested week and
// optionally asks the configured model for insight.
func BuildWeekSummary(ctx context.Context, repo sleep.Repository, kid *sleep.Kid, opts BuildWeekSummaryOptions) (*WeekSummary, error) {
	if kid == nil {
		return nil, sleep.ErrNoKidSelected
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	weekStart := opts.WeekStart
	if weekStart.IsZero() {
		weekStart = now
	}
	table := opts.Table
	if len(table.Brackets) == 0 {
		table = schedule.DefaultTable()
	}

	start, end := dateutil.WeekRange(weekStart)
	sessions, err := repo.ListSessionsByRange(ctx, kid.ID, start, dateutil.AddDays(end, 1))
	if err != nil {
		return nil, fmt.Errorf("fetching sessions: %w", err)
	}

	summary := SummarizeWeek(start, kid, sessions, table, now)
	if !opts.IncludeInsight || summary.Stats.TrackedDays == 0 {
		return summary, nil
	}

	reviewer := opts.Reviewer
	if reviewer == nil {
		if opts.LLM.Model == "" {
			return nil, errors.New("model is required for insight")
		}
		client, err := llm.NewClient(ctx, opts.LLM)
		if err != nil {
			return nil, fmt.Errorf("creating LLM client: %w", err)
		}
		reviewer = llm.NewCoach(client)
	}

	insight, err := reviewer.ReviewWeek(ctx, llm.WeekData{
		KidName:     kid.Name,
		AgeInMonths: summary.AgeInMonths,
		Ideal:       summary.Ideal,
		Days:        summary.Days,
	})
	if err != nil {
		return nil, fmt.Errorf("evaluating week: %w", err)
	}
	summary.Insight = insight
	return summary, nil
}
