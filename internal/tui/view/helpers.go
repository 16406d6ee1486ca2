package view

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// PlaceBox renders content in a lipgloss.Place box with background fill.
func PlaceBox(w, h int, vAlign lipgloss.Position, content string, bg lipgloss.Color) string {
	placed := lipgloss.Place(
		w,
		h,
		lipgloss.Left,
		vAlign,
		content,
		lipgloss.WithWhitespaceBackground(bg),
	)
	return PadLinesWithBackground(placed, w, h, bg)
}

// PadLinesWithBackground pads content to width/height with a background color.
func PadLinesWithBackground(content string, width, height int, bg lipgloss.Color) string {
	if width <= 0 || height <= 0 {
		return content
	}
	lines := strings.Split(content, "\n")
	paddingStyle := lipgloss.NewStyle().Background(bg)
	for len(lines) < height {
		lines = append(lines, "")
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for i, line := range lines {
		lineWidth := lipgloss.Width(line)
		if lineWidth >= width {
			continue
		}
		lines[i] = line + paddingStyle.Render(strings.Repeat(" ", width-lineWidth))
	}
	return strings.Join(lines, "\n")
}

// Overlay centers panel over base and returns the combined frame.
func Overlay(base, panel string, width, height int, panelBg lipgloss.Color) string {
	panelLines := strings.Split(panel, "\n")
	panelWidth := 0
	for _, line := range panelLines {
		panelWidth = max(panelWidth, lipgloss.Width(line))
	}
	if panelWidth == 0 || width <= 0 || height <= 0 {
		return base
	}
	panelWidth = min(panelWidth, width)

	top := max(0, (height-len(panelLines))/2)
	left := max(0, (width-panelWidth)/2)

	bgSeq := BackgroundSeq(panelBg)
	for i, line := range panelLines {
		lineWidth := lipgloss.Width(line)
		if lineWidth > panelWidth {
			line = ansi.Cut(line, 0, panelWidth)
		} else if lineWidth < panelWidth {
			line += lipgloss.NewStyle().Background(panelBg).Render(strings.Repeat(" ", panelWidth-lineWidth))
		}
		if bgSeq != "" {
			line = strings.ReplaceAll(line, ansi.ResetStyle, ansi.ResetStyle+bgSeq)
		}
		panelLines[i] = line + ansi.ResetStyle
	}

	baseLines := strings.Split(PadLinesWithBackground(base, width, height, lipgloss.Color("")), "\n")
	lines := make([]string, 0, height)
	for row := 0; row < height; row++ {
		baseLine := ""
		if row < len(baseLines) {
			baseLine = baseLines[row]
		}
		if row < top || row >= top+len(panelLines) {
			lines = append(lines, baseLine)
			continue
		}
		leftSlice := ansi.Cut(baseLine, 0, left)
		rightSlice := ansi.Cut(baseLine, left+panelWidth, width)
		lines = append(lines, leftSlice+panelLines[row-top]+rightSlice)
	}
	return strings.Join(lines, "\n")
}

// BackgroundSeq returns the background escape sequence for a hex color.
func BackgroundSeq(bg lipgloss.Color) string {
	if bg == "" {
		return ""
	}
	return ansi.Style{}.BackgroundColor(ansi.HexColor(string(bg))).String()
}
