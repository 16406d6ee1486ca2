package theme

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// Palette holds precomputed colors derived from a Theme.
type Palette struct {
	Bg          lipgloss.Color
	BgHighlight lipgloss.Color
	BgSelection lipgloss.Color
	Fg          lipgloss.Color
	FgMuted     lipgloss.Color
	Accent      lipgloss.Color
	Night       lipgloss.Color
	Nap         lipgloss.Color
	Running     lipgloss.Color
	Warning     lipgloss.Color

	// Bar fills for recorded and scheduled entries.
	NightBg          lipgloss.Color
	NapBg            lipgloss.Color
	NightScheduledBg lipgloss.Color
	NapScheduledBg   lipgloss.Color

	TextOnAccent  lipgloss.Color
	TextOnRunning lipgloss.Color
	TextOnNight   lipgloss.Color
	TextOnNap     lipgloss.Color

	Panel PanelColors
}

// PanelColors holds the week overlay colors.
type PanelColors struct {
	Bg     lipgloss.Color
	Border lipgloss.AdaptiveColor
	Text   lipgloss.AdaptiveColor
	Muted  lipgloss.AdaptiveColor
}

// NewPalette derives a Palette from the provided Theme.
func NewPalette(t *Theme) *Palette {
	if t == nil {
		t, _ = Load(defaultDark)
	}

	light := luminance(t.Bg) > 0.55
	nightBg := barShade(t.Night, t.Bg, light, false)
	napBg := barShade(t.Nap, t.Bg, light, false)

	return &Palette{
		Bg:          lipgloss.Color(t.Bg),
		BgHighlight: lipgloss.Color(t.BgHighlight),
		BgSelection: lipgloss.Color(t.BgSelection),
		Fg:          lipgloss.Color(t.Fg),
		FgMuted:     lipgloss.Color(t.FgMuted),
		Accent:      lipgloss.Color(t.Accent),
		Night:       lipgloss.Color(t.Night),
		Nap:         lipgloss.Color(t.Nap),
		Running:     lipgloss.Color(t.Running),
		Warning:     lipgloss.Color(t.Warning),

		NightBg:          lipgloss.Color(nightBg),
		NapBg:            lipgloss.Color(napBg),
		NightScheduledBg: lipgloss.Color(barShade(t.Night, t.Bg, light, true)),
		NapScheduledBg:   lipgloss.Color(barShade(t.Nap, t.Bg, light, true)),

		TextOnAccent:  lipgloss.Color(readableOn(t.Accent, t.Bg, t.Fg)),
		TextOnRunning: lipgloss.Color(readableOn(t.Running, t.Bg, t.Fg)),
		TextOnNight:   lipgloss.Color(readableOn(nightBg, t.Bg, t.Fg)),
		TextOnNap:     lipgloss.Color(readableOn(napBg, t.Bg, t.Fg)),

		Panel: PanelColors{
			Bg:     lipgloss.Color(coalesce(t.PanelBg, t.BgHighlight, t.Bg)),
			Border: fixed(coalesce(t.PanelBorder, t.Accent)),
			Text:   fixed(t.Fg),
			Muted:  fixed(t.FgMuted),
		},
	}
}

func fixed(hex string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Dark: hex, Light: hex}
}

// barShade is the strip and row fill for an entry color. Light themes wash
// the color out towards the background, dark themes dim it.
func barShade(accent, bg string, light, scheduled bool) string {
	switch {
	case light && scheduled:
		return mix(accent, bg, 0.88)
	case light:
		return mix(accent, bg, 0.75)
	case scheduled:
		return dim(accent, 0.30, 30)
	default:
		return dim(accent, 0.50, 40)
	}
}

// dim scales every channel by factor and keeps it at or above floor (0-255).
func dim(hex string, factor float64, floor uint8) string {
	c, err := colorful.Hex(hex)
	if err != nil {
		return hex
	}
	f := float64(floor) / 255
	return colorful.Color{
		R: max(c.R*factor, f),
		G: max(c.G*factor, f),
		B: max(c.B*factor, f),
	}.Clamped().Hex()
}

// mix moves a towards b by ratio in RGB space.
func mix(a, b string, ratio float64) string {
	ca, errA := colorful.Hex(a)
	cb, errB := colorful.Hex(b)
	if errA != nil || errB != nil {
		return a
	}
	return ca.BlendRgb(cb, min(max(ratio, 0), 1)).Clamped().Hex()
}

// readableOn picks whichever text color contrasts more with bg.
func readableOn(bg, lightText, darkText string) string {
	if contrast(bg, lightText) >= contrast(bg, darkText) {
		return lightText
	}
	return darkText
}

func contrast(a, b string) float64 {
	la, lb := luminance(a), luminance(b)
	if la < lb {
		la, lb = lb, la
	}
	return (la + 0.05) / (lb + 0.05)
}

// luminance is the WCAG relative luminance; unparseable colors count as black.
func luminance(hex string) float64 {
	c, err := colorful.Hex(hex)
	if err != nil {
		return 0
	}
	r, g, b := c.LinearRgb()
	return 0.2126*r + 0.7152*g + 0.0722*b
}
