// Package nodelink renders expression trees as node-link diagrams using Graphviz.
//
// Where the level grid places every node in a fixed text column, nodelink
// hands layout to Graphviz's hierarchical "dot" engine:
//
//	Grid:     tree → levels.Layout() → Grid → levels.Format() → text
//	Nodelink: tree → ToDOT() → DOT → RenderSVG() → SVG
//
// The DOT source is a useful artifact in its own right; it can be saved and
// processed with the external Graphviz tools.
//
// # DOT Format
//
// [ToDOT] assigns node IDs n0, n1, ... in pre-order and emits edges parent
// first, left child before right. The graph sets ordering=out so Graphviz
// keeps left operands on the left. Operators are drawn as circles, operands
// as rounded boxes.
//
// # Conversion
//
// [Convert] turns SVG into PDF or PNG by shelling out to rsvg-convert (from
// librsvg). SVG itself is rendered in-process by
// [github.com/goccy/go-graphviz].
package nodelink
