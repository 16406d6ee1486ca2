package ui

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/mellow/internal/dateutil"
)

func (a *App) statusCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Print the running sleep session",
		Long: `Print the running session from the status file written on start and
stop. It does not open the database, so it is cheap enough for shell
prompts and status bars.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			st, ok, err := a.status.Read()
			if err != nil {
				return err
			}
			if asJSON {
				if !ok {
					fmt.Fprintln(a.out, "{}")
					return nil
				}
				enc := json.NewEncoder(a.out)
				return enc.Encode(st)
			}
			if !ok {
				fmt.Fprintln(a.out, "awake")
				return nil
			}
			fmt.Fprintf(a.out, "%s · %s since %s (%s)\n",
				st.Name, st.Type, dateutil.FormatClock(st.StartDate), FormatDuration(st.Elapsed(a.clock.Now())))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the raw status JSON")
	return cmd
}
