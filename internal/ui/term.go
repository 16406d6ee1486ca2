package ui

import (
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// Color definitions for consistent styling across the UI.
var (
	// Naps: cyan
	colorNap = color.New(color.FgCyan)

	// Nights: bold blue
	colorNight = color.New(color.FgBlue, color.Bold)

	// Projected entries: faint, they are only a suggestion
	colorScheduled = color.New(color.FgWhite, color.Faint)

	// Running session: green so it stands out
	colorRunning = color.New(color.FgGreen, color.Bold)

	colorInsight = color.New(color.FgYellow)
	colorHeader  = color.New(color.Bold)
	colorStats   = color.New(color.FgGreen)
	colorWarn    = color.New(color.FgRed)
	colorMuted   = color.New(color.FgWhite, color.Faint)
)

// termWidth returns the terminal width, or a default if detection fails.
func termWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

// isTerminal reports whether stdout is attached to a terminal.
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// DisableColor disables all color output.
func DisableColor() {
	color.NoColor = true
}

func formatHeader(s string) string  { return colorHeader.Sprint(s) }
func formatInsight(s string) string { return colorInsight.Sprint(s) }
func formatStats(s string) string   { return colorStats.Sprint(s) }
func formatWarn(s string) string    { return colorWarn.Sprint(s) }
func formatMuted(s string) string   { return colorMuted.Sprint(s) }
