package theme

import (
	"testing"

	"github.com/lucasb-eyer/go-colorful"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name      string
		themeName string
		wantName  string
	}{
		{name: "load mocha theme", themeName: "mocha", wantName: "mocha"},
		{name: "load macchiato theme", themeName: "macchiato", wantName: "macchiato"},
		{name: "load frappe theme", themeName: "frappe", wantName: "frappe"},
		{name: "load latte theme", themeName: "latte", wantName: "latte"},
		{name: "load light theme", themeName: "light", wantName: "light"},
		{name: "case insensitive", themeName: "Latte", wantName: "latte"},
		{name: "empty name defaults to mocha", themeName: "", wantName: "mocha"},
		{name: "invalid theme falls back to mocha", themeName: "nonexistent", wantName: "mocha"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			theme, err := Load(tt.themeName)
			if err != nil {
				t.Fatalf("Load(%q) unexpected error: %v", tt.themeName, err)
			}
			if theme.Name != tt.wantName {
				t.Errorf("Load(%q).Name = %q, want %q", tt.themeName, theme.Name, tt.wantName)
			}
		})
	}
}

func TestLoad_ThemeColors(t *testing.T) {
	for _, name := range Available() {
		theme, err := Load(name)
		if err != nil {
			t.Fatalf("Load(%s) unexpected error: %v", name, err)
		}

		colors := map[string]string{
			"Bg":          theme.Bg,
			"BgHighlight": theme.BgHighlight,
			"BgSelection": theme.BgSelection,
			"Fg":          theme.Fg,
			"FgMuted":     theme.FgMuted,
			"Accent":      theme.Accent,
			"Night":       theme.Night,
			"Nap":         theme.Nap,
			"Running":     theme.Running,
			"Warning":     theme.Warning,
			"PanelBg":     theme.PanelBg,
			"PanelBorder": theme.PanelBorder,
		}

		for field, hex := range colors {
			if _, err := colorful.Hex(hex); err != nil {
				t.Errorf("%s.%s = %q is not a hex color: %v", name, field, hex, err)
			}
		}
	}
}

func TestLoad_PanelDefaults(t *testing.T) {
	theme, err := Load("mocha")
	if err != nil {
		t.Fatalf("Load(mocha) unexpected error: %v", err)
	}
	if theme.PanelBg != theme.BgHighlight {
		t.Errorf("PanelBg = %q, want %q", theme.PanelBg, theme.BgHighlight)
	}
	if theme.PanelBorder != theme.Accent {
		t.Errorf("PanelBorder = %q, want %q", theme.PanelBorder, theme.Accent)
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name  string
		theme string
		dark  bool
		want  string
	}{
		{name: "auto on dark", theme: "auto", dark: true, want: "mocha"},
		{name: "auto on light", theme: "AUTO", dark: false, want: "latte"},
		{name: "explicit wins", theme: "frappe", dark: false, want: "frappe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(tt.theme, tt.dark); got != tt.want {
				t.Errorf("Resolve(%q, %t) = %q, want %q", tt.theme, tt.dark, got, tt.want)
			}
		})
	}
}

func TestAvailable(t *testing.T) {
	available := Available()

	expected := []string{"mocha", "macchiato", "frappe", "latte", "light"}
	if len(available) != len(expected) {
		t.Fatalf("Available() returned %d themes, want %d", len(available), len(expected))
	}
	for i, want := range expected {
		if available[i] != want {
			t.Errorf("Available()[%d] = %q, want %q", i, available[i], want)
		}
	}
}

func TestIsAvailable(t *testing.T) {
	tests := []struct {
		name     string
		theme    string
		expected bool
	}{
		{name: "exact match", theme: "mocha", expected: true},
		{name: "case insensitive", theme: "Mocha", expected: true},
		{name: "auto", theme: "auto", expected: true},
		{name: "missing theme", theme: "unknown", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsAvailable(tt.theme); got != tt.expected {
				t.Errorf("IsAvailable(%q) = %t, want %t", tt.theme, got, tt.expected)
			}
		})
	}
}
