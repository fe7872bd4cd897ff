package ui

import (
	"fmt"
	"strings"
)

// ANSI256 color codes matching the Ayu palette.
const (
	colorAccent = 74  // blue
	colorMuted  = 245 // medium gray
	colorToday  = 209 // orange
)

// Palette styles text, or leaves it alone when disabled.
type Palette struct {
	Enabled bool
}

func (p Palette) paint(code int, s string) string {
	if !p.Enabled {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", code, s)
}

// Accent returns s in the accent (blue) color.
func (p Palette) Accent(s string) string { return p.paint(colorAccent, s) }

// Muted returns s in the muted (gray) color.
func (p Palette) Muted(s string) string { return p.paint(colorMuted, s) }

// Today returns s in the color used for the today marker.
func (p Palette) Today(s string) string { return p.paint(colorToday, s) }

// Bar draws a task spanning [col, col+width) on a track of columns cells,
// clipped to the track. Cells before column 0 or past the end are dropped
// and marked with an arrow at the edge.
func Bar(col, width, columns int) string {
	if columns <= 0 {
		return ""
	}
	cells := []rune(strings.Repeat("·", columns))
	from, to := max(col, 0), min(col+width, columns)
	for i := from; i < to; i++ {
		cells[i] = '█'
	}
	if col < 0 && col+width > 0 {
		cells[0] = '◀'
	}
	if col+width > columns && col < columns {
		cells[columns-1] = '▶'
	}
	return string(cells)
}
