package ui

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/mellow/internal/dateutil"
	"github.com/javiermolinar/mellow/internal/schedule"
	"github.com/javiermolinar/mellow/internal/sleep"
)

func (a *App) showCmd() *cobra.Command {
	var date string
	var window bool
	var noColor bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show a day's sleep and what comes next",
		Long: `Display the recorded sessions of a day together with the projected naps
and bedtime. Use --window to see every day the projection covers.`,
		Example: `  mellow show
  mellow show --date=yesterday
  mellow show --window`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if noColor || !isTerminal() {
				DisableColor()
			}
			kid, err := a.selectedKid(cmd.Context())
			if err != nil {
				return err
			}
			now := a.clock.Now()
			day, err := dateutil.ParseRelativeDate(date, now)
			if err != nil {
				return err
			}
			st, err := a.tracker.SelectDate(cmd.Context(), day)
			if err != nil {
				return err
			}

			fmt.Fprintf(a.out, "\n  %s  %s\n\n",
				formatHeader(kid.Name),
				formatMuted(fmt.Sprintf("%s · %s", kid.AgeFormatted(now), day.Format("Monday, January 2, 2006"))))

			tl := st.Day()
			if window {
				tl = st.Timeline
			}
			if len(tl) == 0 {
				fmt.Fprintln(a.out, "  Nothing recorded or scheduled.")
				return nil
			}
			PrintTimeline(a.out, tl, now)

			recorded := dayTotal(st.Day().Real(), now)
			profile, _ := a.profile(st.AgeInMonths)
			fmt.Fprintln(a.out)
			fmt.Fprintf(a.out, "  Slept: %s  %s\n", FormatDuration(recorded), SleepBar(recorded, profile.IdealSleep, 20))
			fmt.Fprintf(a.out, "  %s\n\n", formatMuted(fmt.Sprintf("%dh tracked · %d days logged", st.HoursTracked, st.DayStreak)))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Day to show (YYYY-MM-DD, yesterday, -1, default: today)")
	cmd.Flags().BoolVarP(&window, "window", "w", false, "Show every projected day")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable color output")
	return cmd
}

func (a *App) profile(age int) (schedule.AgeProfile, bool) {
	table, err := schedule.TableFromConfig(a.config.Schedule.Brackets)
	if err != nil {
		table = schedule.DefaultTable()
	}
	return table.Lookup(age)
}

func dayTotal(tl sleep.Timeline, now time.Time) time.Duration {
	var total time.Duration
	for _, e := range tl {
		total += e.Duration(now)
	}
	return total
}
