package ui

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/mellow/internal/dateutil"
)

func (a *App) scheduleCmd() *cobra.Command {
	var age int
	var wake, date string

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Print the ideal day for an age",
		Long: `Print the naps and night the sleep table suggests for a child of the
given age in months, starting from a wake-up time. No kid or database is
needed.`,
		Example: `  mellow schedule --age=3 --wake=07:00
  mellow schedule --age=10`,
		RunE: func(_ *cobra.Command, _ []string) error {
			gen, err := a.newGenerator()
			if err != nil {
				return err
			}
			day, err := dateutil.ParseRelativeDate(date, a.clock.Now())
			if err != nil {
				return err
			}
			var wakeUp *time.Time
			if wake != "" {
				t, err := dateutil.ParseDateTime(wake, day)
				if err != nil {
					return err
				}
				wakeUp = &t
			}
			items, err := gen.Generate(age, wakeUp, day)
			if err != nil {
				return err
			}

			profile, _ := gen.Table().Lookup(age)
			fmt.Fprintf(a.out, "\n  %s  %s\n\n",
				formatHeader(fmt.Sprintf("%d months", max(age, 0))),
				formatMuted(fmt.Sprintf("%s of sleep, %d naps", FormatDuration(profile.IdealSleep), len(profile.NapDurations))))
			fmt.Fprintf(a.out, "  Wake up %s\n", dateutil.FormatClock(gen.Anchor(wakeUp, day)))
			PrintScheduled(a.out, items)
			fmt.Fprintln(a.out)
			return nil
		},
	}

	cmd.Flags().IntVar(&age, "age", 0, "Age in months (required)")
	cmd.Flags().StringVar(&wake, "wake", "", "Wake-up time (HH:MM, default from config)")
	cmd.Flags().StringVar(&date, "date", "", "Day (YYYY-MM-DD, default: today)")
	_ = cmd.MarkFlagRequired("age")
	return cmd
}
