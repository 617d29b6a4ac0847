// Package sink provides output formats for laid out expression trees.
//
// # Overview
//
// A "sink" turns a [levels.Grid] (and, for structured formats, the tree it
// came from) into bytes ready to print or store:
//
//   - Text: the plain grid, one centered fixed-width cell per column
//   - Table: the grid inside a lipgloss table with a rounded border
//   - JSON: the nested tree, its level buckets and the grid
//
// Graphviz output lives in the sibling package nodelink.
//
// # Usage
//
//	root, _ := tree.Build("1+2+3")
//	g := levels.Layout(root)
//
//	text := sink.RenderText(g)
//	table := sink.RenderTable(g, sink.WithDepthColumn())
//	data, err := sink.RenderJSON(root, sink.WithJSONExpression("1+2+3"))
//
// All sinks render an absent tree as [levels.EmptyMessage] (JSON uses a null
// tree instead).
package sink
