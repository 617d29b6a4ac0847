package levels

import (
	"strings"
	"unicode/utf8"

	"github.com/matzehuels/partree/pkg/core/tree"
)

// DefaultCellWidth is the width of a grid cell in text output.
const DefaultCellWidth = 3

// EmptyMessage is rendered in place of a grid when the tree is absent.
const EmptyMessage = "Empty tree"

// Center pads s with spaces to width runes, placing the extra space on the
// right when the padding is odd. Values at least width runes long are
// returned unchanged.
func Center(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	left := (width - n) / 2
	right := width - n - left
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", right)
}

// Lines renders each grid row as one line of centered cells.
// A cellWidth below 1 uses DefaultCellWidth.
func Lines(g Grid, cellWidth int) []string {
	if cellWidth < 1 {
		cellWidth = DefaultCellWidth
	}
	lines := make([]string, len(g.Rows))
	for d, row := range g.Rows {
		var b strings.Builder
		b.Grow(len(row) * cellWidth)
		for _, cell := range row {
			b.WriteString(Center(cell, cellWidth))
		}
		lines[d] = b.String()
	}
	return lines
}

// Format renders g as newline separated lines, top level first, or
// EmptyMessage for an empty grid.
func Format(g Grid, cellWidth int) string {
	if g.IsEmpty() {
		return EmptyMessage
	}
	return strings.Join(Lines(g, cellWidth), "\n")
}

// Render lays out root and formats it with DefaultCellWidth.
func Render(root *tree.Node) string {
	return Format(Layout(root), DefaultCellWidth)
}
