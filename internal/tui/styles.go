package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/javiermolinar/mellow/internal/tui/theme"
	"github.com/javiermolinar/mellow/internal/tui/view"
)

// Styles holds all lipgloss styles for the day view, derived from a theme.
type Styles struct {
	palette *theme.Palette

	Base   lipgloss.Style
	Title  lipgloss.Style
	Header lipgloss.Style
	Muted  lipgloss.Style
	Rule   lipgloss.Style

	// Timeline rows
	Row          lipgloss.Style
	RowSelected  lipgloss.Style
	Night        lipgloss.Style
	Nap          lipgloss.Style
	Scheduled    lipgloss.Style
	Running      lipgloss.Style
	RunningBadge lipgloss.Style

	// Day strip cells
	StripEmpty          lipgloss.Style
	StripNap            lipgloss.Style
	StripNight          lipgloss.Style
	StripNapScheduled   lipgloss.Style
	StripNightScheduled lipgloss.Style
	StripRunning        lipgloss.Style

	BarFilled lipgloss.Style
	BarEmpty  lipgloss.Style

	Status  lipgloss.Style
	Error   lipgloss.Style
	Help    lipgloss.Style
	HelpKey lipgloss.Style
	Prompt  lipgloss.Style

	Panel      lipgloss.Style
	PanelTitle lipgloss.Style
	PanelText  lipgloss.Style
	PanelMuted lipgloss.Style
}

// NewStyles builds styles from t.
func NewStyles(t *theme.Theme) *Styles {
	p := theme.NewPalette(t)
	base := lipgloss.NewStyle().Background(p.Bg).Foreground(p.Fg)

	return &Styles{
		palette: p,

		Base:   base,
		Title:  base.Bold(true).Foreground(p.Accent),
		Header: base.Bold(true),
		Muted:  base.Foreground(p.FgMuted),
		Rule:   base.Foreground(p.BgSelection),

		Row:          base,
		RowSelected:  lipgloss.NewStyle().Background(p.BgSelection).Foreground(p.Fg).Bold(true),
		Night:        base.Foreground(p.Night),
		Nap:          base.Foreground(p.Nap),
		Scheduled:    base.Foreground(p.FgMuted).Italic(true),
		Running:      base.Foreground(p.Running).Bold(true),
		RunningBadge: lipgloss.NewStyle().Background(p.Running).Foreground(p.TextOnRunning).Bold(true).Padding(0, 1),

		StripEmpty:          base.Foreground(p.BgSelection),
		StripNap:            base.Foreground(p.Nap),
		StripNight:          base.Foreground(p.Night),
		StripNapScheduled:   base.Foreground(p.NapScheduledBg),
		StripNightScheduled: base.Foreground(p.NightScheduledBg),
		StripRunning:        base.Foreground(p.Running),

		BarFilled: base.Foreground(p.Accent),
		BarEmpty:  base.Foreground(p.BgSelection),

		Status:  base.Foreground(p.Accent),
		Error:   base.Foreground(p.Warning).Bold(true),
		Help:    base.Foreground(p.FgMuted),
		HelpKey: base.Foreground(p.Fg).Bold(true),
		Prompt:  base.Foreground(p.Accent).Bold(true),

		Panel: lipgloss.NewStyle().
			Background(p.Panel.Bg).
			Foreground(p.Panel.Text).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Panel.Border).
			BorderBackground(p.Panel.Bg).
			Padding(1, 2),
		PanelTitle: lipgloss.NewStyle().Background(p.Panel.Bg).Foreground(p.Accent).Bold(true),
		PanelText:  lipgloss.NewStyle().Background(p.Panel.Bg).Foreground(p.Panel.Text),
		PanelMuted: lipgloss.NewStyle().Background(p.Panel.Bg).Foreground(p.Panel.Muted),
	}
}

// Strip returns the style of one day strip cell.
func (s *Styles) Strip(k view.CellKind) lipgloss.Style {
	switch k {
	case view.CellNap:
		return s.StripNap
	case view.CellNight:
		return s.StripNight
	case view.CellNapScheduled:
		return s.StripNapScheduled
	case view.CellNightScheduled:
		return s.StripNightScheduled
	case view.CellRunning:
		return s.StripRunning
	default:
		return s.StripEmpty
	}
}

// Bg returns the theme background.
func (s *Styles) Bg() lipgloss.Color {
	return s.palette.Bg
}

// PanelBg returns the week panel background.
func (s *Styles) PanelBg() lipgloss.Color {
	return s.palette.Panel.Bg
}
