package levels

import "github.com/matzehuels/partree/pkg/core/tree"

// Levels holds the tree's visited positions bucketed by depth, root first.
// A nil entry is an absent child of a real node one level up.
type Levels [][]*tree.Node

// Collect buckets the positions under root by depth in pre-order.
//
// Levels that contain only placeholders are dropped, so the result has
// exactly tree.Depth(root)+1 levels. A nil root yields nil.
func Collect(root *tree.Node) Levels {
	if root == nil {
		return nil
	}
	lv := collect(nil, root, 0)
	for len(lv) > 0 && !lv.hasNode(len(lv)-1) {
		lv = lv[:len(lv)-1]
	}
	return lv
}

func collect(lv Levels, n *tree.Node, depth int) Levels {
	if len(lv) <= depth {
		lv = append(lv, nil)
	}
	lv[depth] = append(lv[depth], n)
	if n != nil {
		lv = collect(lv, n.Left, depth+1)
		lv = collect(lv, n.Right, depth+1)
	}
	return lv
}

func (lv Levels) hasNode(depth int) bool {
	for _, n := range lv[depth] {
		if n != nil {
			return true
		}
	}
	return false
}

// Data returns the node data of each level, with "" for placeholders.
func (lv Levels) Data() [][]string {
	out := make([][]string, len(lv))
	for d, level := range lv {
		out[d] = make([]string, len(level))
		for i, n := range level {
			if n != nil {
				out[d][i] = n.Data
			}
		}
	}
	return out
}
