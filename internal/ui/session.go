package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/mellow/internal/dateutil"
	"github.com/javiermolinar/mellow/internal/schedule"
	"github.com/javiermolinar/mellow/internal/sleep"
)

// sessionFlags are shared by log and edit.
type sessionFlags struct {
	date  string
	start string
	end   string
	typ   string
}

func (f *sessionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.date, "date", "", "Day the times refer to (YYYY-MM-DD, yesterday, -1, default: today)")
	cmd.Flags().StringVar(&f.start, "start", "", `Start ("HH:MM" or "YYYY-MM-DD HH:MM")`)
	cmd.Flags().StringVar(&f.end, "end", "", `End ("HH:MM" or "YYYY-MM-DD HH:MM"), empty while still asleep`)
	cmd.Flags().StringVar(&f.typ, "type", "", "nap or night (default: by length)")
}

// sessionType parses the type flag. Empty leaves classification to the
// session length.
func (f *sessionFlags) sessionType() (sleep.SessionType, error) {
	if f.typ == "" {
		return "", nil
	}
	return sleep.ParseType(strings.ToLower(f.typ))
}

// parseTimes resolves start and end against the --date day. A bare end
// clock at or before the start clock rolls over to the next day.
func parseTimes(day time.Time, startStr, endStr string) (start, end *time.Time, err error) {
	if startStr != "" {
		s, err := dateutil.ParseDateTime(startStr, day)
		if err != nil {
			return nil, nil, fmt.Errorf("start: %w", err)
		}
		start = &s
	}
	if endStr != "" {
		endDay := day
		if start != nil {
			endDay = dateutil.TruncateToDay(*start)
		}
		e, err := dateutil.ParseDateTime(endStr, endDay)
		if err != nil {
			return nil, nil, fmt.Errorf("end: %w", err)
		}
		if start != nil && !e.After(*start) && !strings.Contains(strings.TrimSpace(endStr), " ") {
			e = dateutil.AddDays(e, 1)
		}
		end = &e
	}
	return start, end, nil
}

func (a *App) logCmd() *cobra.Command {
	var f sessionFlags

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Record a past nap or night",
		Example: `  mellow log --start=13:10 --end=14:25
  mellow log --date=yesterday --start=19:45 --end=06:50 --type=night`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := a.selectedKid(cmd.Context()); err != nil {
				return err
			}
			day, err := dateutil.ParseRelativeDate(f.date, a.clock.Now())
			if err != nil {
				return err
			}
			start, end, err := parseTimes(day, f.start, f.end)
			if err != nil {
				return err
			}
			typ, err := f.sessionType()
			if err != nil {
				return err
			}
			s, err := a.tracker.CreateSession(cmd.Context(), start, end, typ)
			if err != nil {
				return fmt.Errorf("recording session: %w", err)
			}
			fmt.Fprintf(a.out, "Recorded %s %s\n", formatMuted(s.ID[:shortIDLen]), describeSession(s, a.clock.Now()))
			return nil
		},
	}
	f.register(cmd)
	_ = cmd.MarkFlagRequired("start")
	return cmd
}

func (a *App) startCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start a sleep session now",
		RunE: func(cmd *cobra.Command, _ []string) error {
			kid, err := a.selectedKid(cmd.Context())
			if err != nil {
				return err
			}
			s, err := a.tracker.StartSession(cmd.Context())
			if err != nil {
				if errors.Is(err, sleep.ErrSessionInProgress) {
					return fmt.Errorf("%s is already asleep: %w", kid.Name, err)
				}
				return err
			}
			fmt.Fprintf(a.out, "%s fell asleep at %s\n", kid.Name, dateutil.FormatClock(s.Start))
			return nil
		},
	}
}

func (a *App) stopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "End the running sleep session now",
		RunE: func(cmd *cobra.Command, _ []string) error {
			kid, err := a.selectedKid(cmd.Context())
			if err != nil {
				return err
			}
			s, err := a.tracker.EndSession(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s woke up: %s\n", kid.Name, describeSession(s, a.clock.Now()))
			return nil
		},
	}
}

func (a *App) editCmd() *cobra.Command {
	var f sessionFlags

	cmd := &cobra.Command{
		Use:   "edit [session id]",
		Short: "Change a recorded session",
		Long: `Change the start, end or type of a recorded session. Flags left out keep
their current value. IDs may be shortened to the prefix 'show' prints.`,
		Example: `  mellow edit 3f2a9c1e --end=15:05`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := a.findSession(ctx, args[0])
			if err != nil {
				return err
			}
			day := dateutil.TruncateToDay(s.Start)
			if f.date != "" {
				if day, err = dateutil.ParseRelativeDate(f.date, a.clock.Now()); err != nil {
					return err
				}
			}
			start, end, err := parseTimes(day, f.start, f.end)
			if err != nil {
				return err
			}
			if start == nil {
				start = &s.Start
			}
			if end == nil {
				end = s.End
			}
			typ, err := f.sessionType()
			if err != nil {
				return err
			}
			updated, err := a.tracker.UpdateSession(ctx, s.ID, start, end, typ)
			if err != nil {
				return fmt.Errorf("updating session: %w", err)
			}
			fmt.Fprintf(a.out, "Updated %s %s\n", formatMuted(updated.ID[:shortIDLen]), describeSession(updated, a.clock.Now()))
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func (a *App) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [session id]",
		Short: "Delete a recorded session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := a.findSession(ctx, args[0])
			if err != nil {
				return err
			}
			if _, err := a.tracker.DeleteSession(ctx, s.ID); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Deleted %s\n", describeSession(s, a.clock.Now()))
			return nil
		},
	}
}

// findSession resolves a full or shortened session ID of the selected kid.
func (a *App) findSession(ctx context.Context, ref string) (*sleep.Session, error) {
	if schedule.IsScheduledID(ref) {
		return nil, fmt.Errorf("%s: scheduled entries cannot be changed", ref)
	}
	kid, err := a.selectedKid(ctx)
	if err != nil {
		return nil, err
	}
	sessions, err := a.repo.ListSessions(ctx, kid.ID)
	if err != nil {
		return nil, err
	}
	var match *sleep.Session
	for _, s := range sessions {
		if s.ID == ref {
			return s, nil
		}
		if strings.HasPrefix(s.ID, ref) {
			if match != nil {
				return nil, fmt.Errorf("session %q is ambiguous", ref)
			}
			match = s
		}
	}
	if match == nil {
		return nil, fmt.Errorf("%w: %s", sleep.ErrSessionNotFound, ref)
	}
	return match, nil
}

func describeSession(s *sleep.Session, now time.Time) string {
	end := "now"
	if s.End != nil {
		end = dateutil.FormatClock(*s.End)
	}
	return fmt.Sprintf("%s %s %s-%s (%s)",
		s.Type.Label(),
		s.Start.Format("Mon Jan 2"),
		dateutil.FormatClock(s.Start),
		end,
		FormatDuration(s.Duration(now)))
}
