package view

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// CellKind is what one column of the day strip shows.
type CellKind int

const (
	CellEmpty CellKind = iota
	CellNapScheduled
	CellNightScheduled
	CellNap
	CellNight
	CellRunning
)

// Segment is one sleep interval drawn on the strip.
type Segment struct {
	Start     time.Time
	End       time.Time
	Night     bool
	Scheduled bool
	Running   bool
}

func (s Segment) kind() CellKind {
	switch {
	case s.Running:
		return CellRunning
	case s.Scheduled && s.Night:
		return CellNightScheduled
	case s.Scheduled:
		return CellNapScheduled
	case s.Night:
		return CellNight
	default:
		return CellNap
	}
}

// StripCells splits the 24 hours from midnight of day into width columns
// and reports what covers the middle of each one. Recorded sleep wins over
// scheduled sleep.
func StripCells(day time.Time, segs []Segment, width int) []CellKind {
	if width <= 0 {
		return nil
	}
	y, m, d := day.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, day.Location())
	next := midnight.AddDate(0, 0, 1)
	cell := next.Sub(midnight) / time.Duration(width)

	cells := make([]CellKind, width)
	for i := range cells {
		mid := midnight.Add(cell*time.Duration(i) + cell/2)
		for _, s := range segs {
			if mid.Before(s.Start) || !mid.Before(s.End) {
				continue
			}
			cells[i] = max(cells[i], s.kind())
		}
	}
	return cells
}

// RenderStrip draws cells with one styled block per column.
func RenderStrip(cells []CellKind, style func(CellKind) lipgloss.Style) string {
	var b strings.Builder
	for i := 0; i < len(cells); {
		j := i
		for j < len(cells) && cells[j] == cells[i] {
			j++
		}
		glyph := "█"
		if cells[i] == CellEmpty {
			glyph = "·"
		}
		b.WriteString(style(cells[i]).Render(strings.Repeat(glyph, j-i)))
		i = j
	}
	return b.String()
}

// StripAxis returns hour labels aligned to a strip of width columns.
func StripAxis(width int) string {
	if width <= 0 {
		return ""
	}
	axis := []rune(strings.Repeat(" ", width))
	for _, h := range []int{0, 6, 12, 18} {
		pos := h * width / 24
		label := []rune(twoDigits(h))
		if pos+len(label) > width {
			continue
		}
		copy(axis[pos:], label)
	}
	return string(axis)
}

// Bar returns how many of width columns are filled for part of whole.
func Bar(part, whole time.Duration, width int) (filled int) {
	if whole <= 0 || width <= 0 {
		return 0
	}
	filled = int(int64(width) * int64(part) / int64(whole))
	return min(max(filled, 0), width)
}

func twoDigits(n int) string {
	return string([]byte{byte('0' + n/10), byte('0' + n%10)})
}
