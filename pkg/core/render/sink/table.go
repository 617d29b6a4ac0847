package sink

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/partree/pkg/core/levels"
	"github.com/matzehuels/partree/pkg/core/tree"
)

// TableOption configures [RenderTable].
type TableOption func(*tableRenderer)

type tableRenderer struct {
	depthColumn   bool
	columnHeaders bool
	plain         bool
	cellWidth     int
}

// WithDepthColumn prefixes every row with its depth.
func WithDepthColumn() TableOption { return func(r *tableRenderer) { r.depthColumn = true } }

// WithColumnHeaders adds a header row numbering the grid columns.
func WithColumnHeaders() TableOption { return func(r *tableRenderer) { r.columnHeaders = true } }

// WithPlain disables colors; borders are still drawn.
func WithPlain() TableOption { return func(r *tableRenderer) { r.plain = true } }

// WithTableCellWidth sets the minimum width of every grid cell.
func WithTableCellWidth(w int) TableOption { return func(r *tableRenderer) { r.cellWidth = w } }

var (
	tableBorderColor   = lipgloss.Color("240") // dim gray
	tableHeaderColor   = lipgloss.Color("245") // gray
	tableOperatorColor = lipgloss.Color("36")  // teal
	tableOperandColor  = lipgloss.Color("255") // bright white
)

// RenderTable renders g as a bordered table, one table row per tree level.
func RenderTable(g levels.Grid, opts ...TableOption) string {
	r := tableRenderer{cellWidth: levels.DefaultCellWidth}
	for _, opt := range opts {
		opt(&r)
	}
	if g.IsEmpty() {
		return levels.EmptyMessage
	}

	offset := 0
	if r.depthColumn {
		offset = 1
	}

	rows := make([][]string, len(g.Rows))
	for d, row := range g.Rows {
		cells := make([]string, 0, len(row)+offset)
		if r.depthColumn {
			cells = append(cells, strconv.Itoa(d))
		}
		rows[d] = append(cells, row...)
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Align(lipgloss.Center).Width(r.cellWidth)
			if row == -1 {
				if r.plain {
					return base
				}
				return base.Foreground(tableHeaderColor).Bold(true)
			}
			if r.plain {
				return base
			}
			if col < offset {
				return base.Foreground(tableHeaderColor)
			}
			if row >= 0 && row < len(g.Rows) && isOperator(g.Rows[row][col-offset]) {
				return base.Foreground(tableOperatorColor).Bold(true)
			}
			return base.Foreground(tableOperandColor)
		})

	if !r.plain {
		t = t.BorderStyle(lipgloss.NewStyle().Foreground(tableBorderColor))
	}
	if r.columnHeaders {
		headers := make([]string, 0, g.Width+offset)
		if r.depthColumn {
			headers = append(headers, "depth")
		}
		for i := 0; i < g.Width; i++ {
			headers = append(headers, strconv.Itoa(i))
		}
		t = t.Headers(headers...)
	}

	return t.Render()
}

func isOperator(s string) bool {
	return len(s) == 1 && strings.Contains(tree.Operators, s)
}
