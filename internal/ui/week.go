package ui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/mellow/internal/dateutil"
	"github.com/javiermolinar/mellow/internal/schedule"
	"github.com/javiermolinar/mellow/internal/sleep"
	"github.com/javiermolinar/mellow/internal/summary"
)

func (a *App) weekCmd() *cobra.Command {
	var date string
	var model string
	var insight bool
	var noColor bool

	cmd := &cobra.Command{
		Use:   "week",
		Short: "Summarize a week of sleep",
		Long: `Show Monday through Sunday with nap and night totals per day against
the recommended sleep for the kid's age. With --insight, a language model
reviews the week and suggests adjustments.`,
		Example: `  mellow week
  mellow week --date=-7 --insight`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if noColor || !isTerminal() {
				DisableColor()
			}
			kid, err := a.selectedKid(cmd.Context())
			if err != nil {
				return err
			}
			weekStart, err := dateutil.ParseRelativeDate(date, a.clock.Now())
			if err != nil {
				return err
			}
			week, err := a.buildWeek(cmd.Context(), kid, weekStart, insight, model)
			if err != nil {
				return err
			}

			printWeek(a.out, week)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Any day of the week to show (default: today)")
	cmd.Flags().BoolVar(&insight, "insight", false, "Ask the configured LLM for a review")
	cmd.Flags().StringVar(&model, "model", "", "LLM model to use (default from config)")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable color output")
	return cmd
}

// buildWeek summarizes the week containing date, overriding the configured
// model when model is set.
func (a *App) buildWeek(ctx context.Context, kid *sleep.Kid, date time.Time, insight bool, model string) (*summary.WeekSummary, error) {
	table, err := schedule.TableFromConfig(a.config.Schedule.Brackets)
	if err != nil {
		return nil, err
	}
	llmCfg := a.config.LLM
	if model != "" {
		llmCfg.Model = model
	}
	week, err := summary.BuildWeekSummary(ctx, a.repo, kid, summary.BuildWeekSummaryOptions{
		WeekStart:      date,
		Now:            a.clock.Now(),
		Table:          table,
		IncludeInsight: insight,
		LLM:            llmCfg,
	})
	if err != nil {
		return nil, fmt.Errorf("building week summary: %w", err)
	}
	return week, nil
}

func printWeek(w io.Writer, week *summary.WeekSummary) {
	header := fmt.Sprintf("WEEK: %s - %s", week.Start.Format("Mon Jan 2"), week.End.Format("Mon Jan 2, 2006"))
	fmt.Fprintf(w, "\n  %s  %s\n", formatHeader(header), formatMuted(week.Kid.Name))
	fmt.Fprintln(w, strings.Repeat("─", 64))

	if week.Stats.TrackedDays == 0 {
		fmt.Fprintln(w, "  No sleep recorded this week.")
		fmt.Fprintln(w)
		return
	}

	fmt.Fprintf(w, "  %-10s %5s %8s %8s %8s\n", "", "naps", "nap", "night", "total")
	for _, d := range week.Days {
		if d.Total() == 0 {
			fmt.Fprintf(w, "  %-10s %s\n", d.Date.Format("Mon Jan 2"), formatMuted("—"))
			continue
		}
		fmt.Fprintf(w, "  %-10s %5d %8s %8s %8s  %s\n",
			d.Date.Format("Mon Jan 2"),
			d.NapCount,
			FormatDuration(d.NapTime),
			FormatDuration(d.NightTime),
			FormatDuration(d.Total()),
			SleepBar(d.Total(), week.Ideal, 10))
	}

	s := week.Stats
	fmt.Fprintln(w, strings.Repeat("─", 64))
	fmt.Fprintf(w, "  Average: %s (nap %s, night %s)  |  Ideal: %s\n",
		formatStats(FormatDuration(s.AvgTotal)), FormatDuration(s.AvgNap), FormatDuration(s.AvgNight), FormatDuration(week.Ideal))
	fmt.Fprintf(w, "  On target: %d of %d days  |  Naps: %d\n", s.DaysOnTarget, s.TrackedDays, s.Naps)
	if gap := s.Gap(week.Ideal); gap > 0 {
		fmt.Fprintf(w, "  %s\n", formatWarn(fmt.Sprintf("Short by %s a day on average", FormatDuration(gap))))
	}

	if week.Insight != nil {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "  %s\n", formatHeader("INSIGHT"))
		fmt.Fprintln(w, strings.Repeat("─", 64))
		PrintInsight(w, week.Insight, min(termWidth(), 72))
	}
	fmt.Fprintln(w)
}
