package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/mellow/internal/config"
	"github.com/javiermolinar/mellow/internal/llm"
	"github.com/javiermolinar/mellow/internal/schedule"
	"github.com/javiermolinar/mellow/internal/tui/theme"
)

func (a *App) configCmd() *cobra.Command {
	var showTable bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "View or edit configuration",
		Long: `Interactive configuration management.

If no config file exists, creates one with default values.
Otherwise, displays current config and allows editing.`,
		Example: `  mellow config
  mellow config --table`,
		RunE: func(_ *cobra.Command, _ []string) error {
			if showTable {
				table, err := schedule.TableFromConfig(a.config.Schedule.Brackets)
				if err != nil {
					return err
				}
				printTable(a.out, table)
				return nil
			}
			return runConfigInteractive(os.Stdin, a.out, config.DefaultConfigPath())
		},
	}

	cmd.Flags().BoolVar(&showTable, "table", false, "Print the sleep table in use")
	return cmd
}

func runConfigInteractive(in io.Reader, out io.Writer, configPath string) error {
	fmt.Fprintf(out, "Config file: %s\n\n", configPath)

	cfg, err := config.LoadFrom(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		fmt.Fprintln(out, "No config file found. Creating with default values...")
		if err := cfg.SaveTo(configPath); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		fmt.Fprintf(out, "Created %s\n\n", configPath)
	}

	printConfig(out, cfg)

	reader := bufio.NewReader(in)
	if !promptYesNo(reader, out, "\nWould you like to edit the configuration?") {
		return nil
	}

	cfg.Schedule.DefaultWakeTime = promptValue(reader, out, "Default wake-up (HH:MM)", cfg.Schedule.DefaultWakeTime)
	cfg.Schedule.WindowDays = promptInt(reader, out, "Days projected around the selected day", cfg.Schedule.WindowDays)
	cfg.Schedule.MiddayHour = promptInt(reader, out, "Hour a night must end by", cfg.Schedule.MiddayHour)
	cfg.LLM.Provider = promptValue(reader, out, "LLM provider", cfg.LLM.Provider)
	cfg.LLM.Model = promptValue(reader, out, "LLM model", cfg.LLM.Model)
	cfg.LLM.BaseURL = promptValue(reader, out, "LLM base URL (Ollama/LM Studio)", cfg.LLM.BaseURL)
	cfg.Storage.DBPath = promptValue(reader, out, "Database path", cfg.Storage.DBPath)
	cfg.Storage.WidgetPath = promptValue(reader, out, "Status file path", cfg.Storage.WidgetPath)
	cfg.UI.Theme = promptTheme(reader, out, cfg.UI.Theme)
	cfg.Log.Level = promptValue(reader, out, "Log level", cfg.Log.Level)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, ok := llm.ProviderName(cfg.LLM.Provider); !ok {
		return fmt.Errorf("invalid config: unknown LLM provider %q (want one of %s)",
			cfg.LLM.Provider, strings.Join(llm.Providers(), ", "))
	}
	if err := cfg.SaveTo(configPath); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Fprintln(out, "\nConfiguration saved!")
	return nil
}

func printConfig(out io.Writer, cfg *config.Config) {
	fmt.Fprintln(out, "Current configuration:")
	fmt.Fprintln(out, "──────────────────────")
	fmt.Fprintln(out, "[schedule]")
	fmt.Fprintf(out, "  default_wake_time = %s\n", cfg.Schedule.DefaultWakeTime)
	fmt.Fprintf(out, "  window_days       = %d\n", cfg.Schedule.WindowDays)
	fmt.Fprintf(out, "  midday_hour       = %d\n", cfg.Schedule.MiddayHour)
	if n := len(cfg.Schedule.Brackets); n > 0 {
		fmt.Fprintf(out, "  brackets          = %d custom\n", n)
	}
	fmt.Fprintln(out, "\n[llm]")
	fmt.Fprintf(out, "  provider          = %s\n", cfg.LLM.Provider)
	fmt.Fprintf(out, "  model             = %s\n", cfg.LLM.Model)
	fmt.Fprintf(out, "  base_url          = %s\n", cfg.LLM.BaseURL)
	fmt.Fprintln(out, "\n[storage]")
	fmt.Fprintf(out, "  db_path           = %s\n", cfg.Storage.DBPath)
	fmt.Fprintf(out, "  widget_path       = %s\n", cfg.Storage.WidgetPath)
	fmt.Fprintln(out, "\n[ui]")
	fmt.Fprintf(out, "  theme             = %s\n", cfg.UI.Theme)
	fmt.Fprintln(out, "\n[log]")
	fmt.Fprintf(out, "  level             = %s\n", cfg.Log.Level)
	if cfg.Log.File != "" {
		fmt.Fprintf(out, "  file              = %s\n", cfg.Log.File)
	}
}

func printTable(out io.Writer, table schedule.Table) {
	fmt.Fprintf(out, "  %-9s %6s  %-28s %s\n", "months", "ideal", "naps", "wake windows")
	for _, b := range table.Brackets {
		months := fmt.Sprintf("%d-%d", b.MinMonths, b.MaxMonths)
		if b.MaxMonths == schedule.Unbounded {
			months = fmt.Sprintf("%d+", b.MinMonths)
		}
		fmt.Fprintf(out, "  %-9s %6s  %-28s %s\n",
			months,
			FormatDuration(b.Profile.IdealSleep),
			joinDurations(b.Profile.NapDurations),
			formatMuted(joinDurations(b.Profile.WakeWindows)))
	}
}

func joinDurations(ds []time.Duration) string {
	parts := make([]string, len(ds))
	for i, d := range ds {
		parts[i] = FormatDuration(d)
	}
	return strings.Join(parts, " ")
}

func promptYesNo(reader *bufio.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N]: ", question)
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(strings.ToLower(input))
	return input == "y" || input == "yes"
}

func promptValue(reader *bufio.Reader, out io.Writer, label, current string) string {
	if current == "" {
		fmt.Fprintf(out, "  %s: ", label)
	} else {
		fmt.Fprintf(out, "  %s [%s]: ", label, current)
	}
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" {
		return current
	}
	return input
}

func promptInt(reader *bufio.Reader, out io.Writer, label string, current int) int {
	for {
		value := promptValue(reader, out, label, strconv.Itoa(current))
		n, err := strconv.Atoi(value)
		if err == nil {
			return n
		}
		fmt.Fprintf(out, "  Not a number: %q\n", value)
	}
}

func promptTheme(reader *bufio.Reader, out io.Writer, current string) string {
	options := strings.Join(theme.Available(), ", ")
	label := fmt.Sprintf("UI theme (%s)", options)
	for {
		value := strings.ToLower(promptValue(reader, out, label, current))
		if theme.IsAvailable(value) {
			return value
		}
		fmt.Fprintf(out, "  Invalid theme %q. Available: %s\n", value, options)
	}
}
