package sink

import (
	"encoding/json"
	"fmt"

	"github.com/matzehuels/partree/pkg/core/levels"
	"github.com/matzehuels/partree/pkg/core/tree"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	expression string
	value      string
	cellWidth  int
	indent     bool
}

// WithJSONExpression records the source expression in the output.
func WithJSONExpression(expr string) JSONOption { return func(r *jsonRenderer) { r.expression = expr } }

// WithJSONValue records the evaluation result in the output.
func WithJSONValue(v string) JSONOption { return func(r *jsonRenderer) { r.value = v } }

// WithJSONLines includes the formatted text lines, using the given cell width.
func WithJSONLines(cellWidth int) JSONOption {
	return func(r *jsonRenderer) { r.cellWidth = cellWidth }
}

// WithJSONIndent pretty-prints the output.
func WithJSONIndent() JSONOption { return func(r *jsonRenderer) { r.indent = true } }

type jsonOutput struct {
	Expression string       `json:"expression,omitempty"`
	Tree       *jsonNode    `json:"expression_tree"`
	Levels     [][]*string  `json:"levels"`
	Grid       [][]string   `json:"grid"`
	Width      int          `json:"width"`
	Depth      int          `json:"depth"`
	Lines      []string     `json:"lines,omitempty"`
	Value      string       `json:"value,omitempty"`
	Stats      jsonTreeInfo `json:"stats"`
}

type jsonNode struct {
	Data  string    `json:"data"`
	Left  *jsonNode `json:"left,omitempty"`
	Right *jsonNode `json:"right,omitempty"`
}

type jsonTreeInfo struct {
	Nodes     int `json:"nodes"`
	Leaves    int `json:"leaves"`
	Operators int `json:"operators"`
}

// RenderJSON encodes root, its levels and its grid layout. Placeholder slots
// in levels are encoded as null.
func RenderJSON(root *tree.Node, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	lv := levels.Collect(root)
	g := levels.LayoutLevels(lv)

	out := jsonOutput{
		Expression: r.expression,
		Tree:       toJSONNode(root),
		Levels:     levelSlots(lv),
		Grid:       g.Rows,
		Width:      g.Width,
		Depth:      tree.Depth(root),
		Value:      r.value,
	}
	if out.Grid == nil {
		out.Grid = [][]string{}
	}
	if r.cellWidth > 0 && !g.IsEmpty() {
		out.Lines = levels.Lines(g, r.cellWidth)
	}
	if root != nil {
		size, leaves := tree.Size(root), tree.LeafCount(root)
		out.Stats = jsonTreeInfo{Nodes: size, Leaves: leaves, Operators: size - leaves}
	}

	if r.indent {
		return json.MarshalIndent(out, "", "  ")
	}
	return json.Marshal(out)
}

// ParseJSONTree decodes the expression_tree of a document produced by
// [RenderJSON] back into nodes. Trees deeper than [levels.MaxDepth] are
// rejected.
func ParseJSONTree(data []byte) (*tree.Node, error) {
	var doc struct {
		Tree *jsonNode `json:"expression_tree"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if d := jsonDepth(doc.Tree); d > levels.MaxDepth {
		return nil, fmt.Errorf("expression_tree is %d levels deep (max %d)", d, levels.MaxDepth)
	}
	return fromJSONNode(doc.Tree), nil
}

// jsonDepth mirrors [tree.Depth] for undecoded nodes.
func jsonDepth(n *jsonNode) int {
	if n == nil {
		return -1
	}
	return 1 + max(jsonDepth(n.Left), jsonDepth(n.Right))
}

func toJSONNode(n *tree.Node) *jsonNode {
	if n == nil {
		return nil
	}
	return &jsonNode{Data: n.Data, Left: toJSONNode(n.Left), Right: toJSONNode(n.Right)}
}

func fromJSONNode(n *jsonNode) *tree.Node {
	if n == nil {
		return nil
	}
	return &tree.Node{Data: n.Data, Left: fromJSONNode(n.Left), Right: fromJSONNode(n.Right)}
}

func levelSlots(lv levels.Levels) [][]*string {
	out := make([][]*string, len(lv))
	for d, level := range lv {
		out[d] = make([]*string, len(level))
		for i, n := range level {
			if n != nil {
				s := n.Data
				out[d][i] = &s
			}
		}
	}
	return out
}
