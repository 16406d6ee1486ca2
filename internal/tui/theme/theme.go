// Package theme provides color themes for the day view.
package theme

import (
	"embed"
	"fmt"
	"slices"
	"strings"

	"github.com/muesli/termenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed embedded/*.toml
var embeddedThemes embed.FS

// Auto selects a dark or light theme from the terminal background.
const Auto = "auto"

const (
	defaultDark  = "mocha"
	defaultLight = "latte"
)

// Theme holds all colors for a day view theme.
type Theme struct {
	Name        string `toml:"name"`
	Bg          string `toml:"bg"`           // Base background
	BgHighlight string `toml:"bg_highlight"` // Entry rows, subtle highlight
	BgSelection string `toml:"bg_selection"` // Cursor row
	Fg          string `toml:"fg"`           // Primary foreground
	FgMuted     string `toml:"fg_muted"`     // Scheduled entries, hints
	Accent      string `toml:"accent"`       // Title, borders
	Night       string `toml:"night"`        // Nighttime sleep
	Nap         string `toml:"nap"`          // Naps
	Running     string `toml:"running"`      // Session in progress
	Warning     string `toml:"warning"`      // Errors, confirmations

	// Panel palette for the week overlay (can override base theme values)
	PanelBg     string `toml:"panel_bg"`
	PanelBorder string `toml:"panel_border"`
}

// Load loads a theme by name from embedded files.
// Unknown names fall back to mocha.
func Load(name string) (*Theme, error) {
	if name == "" {
		name = defaultDark
	}
	name = strings.ToLower(name)

	data, err := embeddedThemes.ReadFile("embedded/" + name + ".toml")
	if err != nil {
		if name != defaultDark {
			return Load(defaultDark)
		}
		return nil, fmt.Errorf("loading theme %q: %w", name, err)
	}

	var t Theme
	if err := toml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing theme %q: %w", name, err)
	}
	t.applyDefaults()

	return &t, nil
}

// Detect resolves "auto" against the terminal background and loads the
// resulting theme.
func Detect(name string) (*Theme, error) {
	if strings.EqualFold(name, Auto) {
		name = Resolve(name, termenv.HasDarkBackground())
	}
	return Load(name)
}

// Resolve maps "auto" to a concrete theme name.
func Resolve(name string, darkBackground bool) string {
	if !strings.EqualFold(name, Auto) {
		return name
	}
	if darkBackground {
		return defaultDark
	}
	return defaultLight
}

func (t *Theme) applyDefaults() {
	t.PanelBg = coalesce(t.PanelBg, t.BgHighlight, t.Bg)
	t.PanelBorder = coalesce(t.PanelBorder, t.Accent)
	t.Running = coalesce(t.Running, t.Warning, t.Accent)
}

func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Available returns a list of available theme names.
func Available() []string {
	return []string{"mocha", "macchiato", "frappe", "latte", "light"}
}

// IsAvailable reports whether a theme name is available. "auto" counts.
func IsAvailable(name string) bool {
	name = strings.ToLower(name)
	return name == Auto || slices.Contains(Available(), name)
}
