// Package levels lays out an expression tree as a fixed-width text grid.
//
// # Overview
//
// Rendering happens in three steps:
//
//  1. [Collect] walks the tree in pre-order and buckets every visited
//     position by depth. Both children of every real node are visited, so a
//     leaf contributes two absent placeholders (nil) one level below it.
//     Placeholders keep the index of later entries aligned with the slot they
//     would occupy in a complete binary tree.
//  2. [Layout] sizes the grid for a complete binary tree of the same height,
//     maxWidth = 2^(levels-1) cells, and places the i-th entry of depth d at
//     column i*spacing + spacing/2 where spacing = maxWidth / 2^d.
//  3. [Format] centers each cell in a fixed-width field (3 characters by
//     default) and joins the cells of a row with no separator.
//
// Positions come from traversal index, not from parent geometry. For trees
// built by [github.com/matzehuels/partree/pkg/core/tree.Build] this always
// puts a node between its children, because shallow leaves only occur at
// the right edge of the tree.
//
// # Example
//
//	root, _ := tree.Build("1+2+3+4")
//	fmt.Println(levels.Render(root))
//
// prints
//
//	      +
//	   +     +
//	1  2  3  4
//
// (each line keeps its trailing blanks).
//
// An absent root renders as [EmptyMessage].
package levels
