package tree

import "strings"

// Node is a vertex of an expression tree.
//
// Each node exclusively owns its children. Leaves come from operand tokens;
// every operator node built by [Build] has both children set.
type Node struct {
	Data  string
	Left  *Node
	Right *Node
}

// NewNode returns a childless node holding data.
func NewNode(data string) *Node {
	return &Node{Data: data}
}

// IsLeaf reports whether n has no children.
func (n *Node) IsLeaf() bool {
	return n.Left == nil && n.Right == nil
}

// LeafCount returns the number of leaves under n, including n itself.
// A nil node has no leaves.
func LeafCount(n *Node) int {
	if n == nil {
		return 0
	}
	if n.IsLeaf() {
		return 1
	}
	return LeafCount(n.Left) + LeafCount(n.Right)
}

// Size returns the number of nodes under n, including n itself.
func Size(n *Node) int {
	if n == nil {
		return 0
	}
	return 1 + Size(n.Left) + Size(n.Right)
}

// Depth returns the depth of the deepest node under n, with n at depth 0.
// A nil node has depth -1.
func Depth(n *Node) int {
	if n == nil {
		return -1
	}
	return 1 + max(Depth(n.Left), Depth(n.Right))
}

// Walk visits n and its descendants in pre-order, passing each node's depth
// relative to n. Walk stops descending into a subtree when fn returns false.
func Walk(n *Node, fn func(n *Node, depth int) bool) {
	walk(n, 0, fn)
}

func walk(n *Node, depth int, fn func(*Node, int) bool) {
	if n == nil || !fn(n, depth) {
		return
	}
	walk(n.Left, depth+1, fn)
	walk(n.Right, depth+1, fn)
}

// String renders the tree as fully parenthesized infix, e.g. "((1+2)+(3+4))".
func (n *Node) String() string {
	if n == nil {
		return ""
	}
	var b strings.Builder
	n.writeInfix(&b)
	return b.String()
}

func (n *Node) writeInfix(b *strings.Builder) {
	if n.IsLeaf() {
		b.WriteString(n.Data)
		return
	}
	b.WriteByte('(')
	if n.Left != nil {
		n.Left.writeInfix(b)
	}
	b.WriteString(n.Data)
	if n.Right != nil {
		n.Right.writeInfix(b)
	}
	b.WriteByte(')')
}
