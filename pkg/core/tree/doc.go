// Package tree builds binary expression trees by pairwise folding.
//
// # Overview
//
// A flat infix expression such as "1+2+3+4" is split into two token streams:
// operands (identifiers and numbers) and operators (+ - * /). The operands are
// then folded level by level: adjacent pairs (0,1), (2,3), ... are joined
// under the next unused operator, in the order the operators appeared. An
// unpaired trailing element is carried into the next round unchanged. Rounds
// repeat until a single root remains.
//
// The resulting shape depends only on the operand count, never on operator
// semantics:
//
//	"1+2+3+4"  ->        +₃
//	                   /    \
//	                 +₁      +₂
//	                /  \    /  \
//	               1    2  3    4
//
// The tree is therefore not an evaluation tree. The operator placed over a
// pair is not necessarily the one that stood between those operands in the
// source text. Numeric evaluation of the original string lives in package
// [github.com/matzehuels/partree/pkg/eval].
//
// # Usage
//
//	root, err := tree.Build("a + b * c")
//	if err != nil {
//	    var inv *tree.InvalidExpressionError
//	    if errors.As(err, &inv) {
//	        // operand/operator count mismatch
//	    }
//	}
//	fmt.Println(root) // ((a+b)*c)
//
// # Tokens
//
// Operands are the leftmost non-overlapping matches of `\w+|\d+\.?\d*` over
// the whitespace-stripped input. Because `\w+` is tried first, a decimal such
// as "3.14" yields the two operands "3" and "14"; the builder keeps that
// behavior and the expression then fails the count check.
//
// `\w` matches ASCII word characters only ([0-9A-Za-z_]). Non-ASCII letters
// are neither operands nor operators and are skipped like any other unknown
// rune, so "é+1" has one operand and one operator and fails validation, and
// "café" reads as the operand "caf".
package tree
