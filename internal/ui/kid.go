package ui

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/mellow/internal/dateutil"
	"github.com/javiermolinar/mellow/internal/sleep"
)

func (a *App) kidCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kid",
		Short: "Manage kids",
	}
	cmd.AddCommand(a.kidAddCmd(), a.kidListCmd(), a.kidSelectCmd(), a.kidEditCmd())
	return cmd
}

func (a *App) kidAddCmd() *cobra.Command {
	var born, sleepTime, wakeTime string

	cmd := &cobra.Command{
		Use:   "add [name]",
		Short: "Add a kid and select it",
		Long: `Add a kid. Last night is recorded from the usual bedtime and wake-up
so the first day already has an anchor.`,
		Example: `  mellow kid add Ada --born=2024-05-06
  mellow kid add Ada --born=2024-05-06 --sleep=19:30 --wake=06:45`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dob, err := dateutil.ParseDate(born)
			if err != nil {
				return err
			}
			if err := a.ensureTracker(cmd.Context()); err != nil {
				return err
			}
			kid, err := a.tracker.CreateKid(cmd.Context(), args[0], dob, sleepTime, wakeTime)
			if err != nil {
				return fmt.Errorf("adding kid: %w", err)
			}
			fmt.Fprintf(a.out, "Added %s (%s), usual night %s-%s\n",
				kid.Name, kid.AgeFormatted(a.clock.Now()), kid.SleepTime, kid.WakeTime)
			return nil
		},
	}

	cmd.Flags().StringVar(&born, "born", "", "Date of birth (YYYY-MM-DD, required)")
	cmd.Flags().StringVar(&sleepTime, "sleep", sleep.DefaultSleepTime, "Usual bedtime (HH:MM)")
	cmd.Flags().StringVar(&wakeTime, "wake", sleep.DefaultWakeTime, "Usual wake-up (HH:MM)")
	_ = cmd.MarkFlagRequired("born")
	return cmd
}

func (a *App) kidListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List kids",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.ensureTracker(cmd.Context()); err != nil {
				return err
			}
			st := a.tracker.Snapshot()
			if len(st.Kids) == 0 {
				fmt.Fprintln(a.out, "No kids yet. Add one with 'mellow kid add'.")
				return nil
			}
			now := a.clock.Now()
			for _, k := range st.Kids {
				marker := " "
				if st.Kid != nil && st.Kid.ID == k.ID {
					marker = "*"
				}
				fmt.Fprintf(a.out, "%s %s  %-12s %s  born %s\n",
					marker, formatMuted(k.ID[:min(len(k.ID), shortIDLen)]), k.Name,
					k.AgeFormatted(now), dateutil.FormatDate(k.DateOfBirth))
			}
			return nil
		},
	}
}

func (a *App) kidSelectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "select [name or id]",
		Short: "Select the kid other commands act on",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ensureTracker(cmd.Context()); err != nil {
				return err
			}
			kid, err := findKid(a.tracker.Snapshot().Kids, args[0])
			if err != nil {
				return err
			}
			if _, err := a.tracker.SelectKid(cmd.Context(), kid.ID); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Selected %s\n", kid.Name)
			return nil
		},
	}
}

func (a *App) kidEditCmd() *cobra.Command {
	var name, born, sleepTime, wakeTime string

	cmd := &cobra.Command{
		Use:     "edit [name or id]",
		Short:   "Edit a kid's profile",
		Example: `  mellow kid edit Ada --wake=07:00`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ensureTracker(cmd.Context()); err != nil {
				return err
			}
			found, err := findKid(a.tracker.Snapshot().Kids, args[0])
			if err != nil {
				return err
			}
			kid := *found
			if name != "" {
				if kid.Name = strings.TrimSpace(name); kid.Name == "" {
					return sleep.ErrEmptyName
				}
			}
			if born != "" {
				if kid.DateOfBirth, err = dateutil.ParseDate(born); err != nil {
					return err
				}
			}
			for _, c := range []struct {
				value string
				dst   *string
			}{{sleepTime, &kid.SleepTime}, {wakeTime, &kid.WakeTime}} {
				if c.value == "" {
					continue
				}
				if _, _, err := dateutil.ParseClock(c.value); err != nil {
					return err
				}
				*c.dst = c.value
			}
			if _, err := a.tracker.UpdateKid(cmd.Context(), &kid); err != nil {
				return fmt.Errorf("updating kid: %w", err)
			}
			fmt.Fprintf(a.out, "Updated %s\n", kid.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVar(&born, "born", "", "Date of birth (YYYY-MM-DD)")
	cmd.Flags().StringVar(&sleepTime, "sleep", "", "Usual bedtime (HH:MM)")
	cmd.Flags().StringVar(&wakeTime, "wake", "", "Usual wake-up (HH:MM)")
	return cmd
}

// findKid matches a kid by case-insensitive name or ID prefix.
func findKid(kids []*sleep.Kid, ref string) (*sleep.Kid, error) {
	ref = strings.TrimSpace(ref)
	var match *sleep.Kid
	for _, k := range kids {
		if strings.EqualFold(k.Name, ref) || k.ID == ref {
			return k, nil
		}
		if len(ref) >= 4 && strings.HasPrefix(k.ID, ref) {
			if match != nil {
				return nil, fmt.Errorf("kid %q is ambiguous", ref)
			}
			match = k
		}
	}
	if match == nil {
		return nil, fmt.Errorf("%w: %s", sleep.ErrKidNotFound, ref)
	}
	return match, nil
}
