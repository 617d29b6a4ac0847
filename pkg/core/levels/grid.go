package levels

import "github.com/matzehuels/partree/pkg/core/tree"

// Blank is the content of an unoccupied grid cell.
const Blank = " "

// Grid is a laid out tree: one row per level, Width cells per row.
type Grid struct {
	Width int        `json:"width"`
	Rows  [][]string `json:"rows"`
}

// IsEmpty reports whether the grid has no rows (the tree was absent).
func (g Grid) IsEmpty() bool {
	return len(g.Rows) == 0
}

// Placement is the grid position assigned to a node.
type Placement struct {
	Node  *tree.Node
	Depth int
	Index int // position within the level, placeholders included
	Col   int
}

// MaxDepth is the deepest tree a grid can be laid out for. Trees built from
// expressions of at most 4096 bytes stay far below it; trees read back from
// saved documents are checked against it.
const MaxDepth = 16

// Width returns the grid width for a tree with n levels: 2^(n-1).
func Width(n int) int {
	if n <= 0 {
		return 0
	}
	return 1 << (n - 1)
}

// Place computes the column of every real node in lv.
//
// A level never holds more than 2^depth entries, so every column is inside
// [0, Width(len(lv))).
func Place(lv Levels) []Placement {
	width := Width(len(lv))
	var out []Placement
	for d, level := range lv {
		spacing := width >> d
		for i, n := range level {
			if n == nil {
				continue
			}
			out = append(out, Placement{
				Node:  n,
				Depth: d,
				Index: i,
				Col:   i*spacing + spacing/2,
			})
		}
	}
	return out
}

// LayoutLevels fills a grid from already collected levels.
func LayoutLevels(lv Levels) Grid {
	if len(lv) == 0 {
		return Grid{}
	}
	g := Grid{Width: Width(len(lv)), Rows: make([][]string, len(lv))}
	for d := range g.Rows {
		row := make([]string, g.Width)
		for i := range row {
			row[i] = Blank
		}
		g.Rows[d] = row
	}
	for _, p := range Place(lv) {
		g.Rows[p.Depth][p.Col] = p.Node.Data
	}
	return g
}

// Layout collects root's levels and lays them out. A nil root yields an
// empty grid.
func Layout(root *tree.Node) Grid {
	return LayoutLevels(Collect(root))
}
