package tree

import "fmt"

// InvalidExpressionError reports an expression whose operator count is not
// exactly one less than its operand count.
type InvalidExpressionError struct {
	Operands  int
	Operators int
}

func (e *InvalidExpressionError) Error() string {
	return "invalid expression: mismatch between operands and operators"
}

// Detail describes the counts that failed validation.
func (e *InvalidExpressionError) Detail() string {
	return fmt.Sprintf("%d operands require %d operators, found %d", e.Operands, e.Operands-1, e.Operators)
}

// Build tokenizes expr and folds it into a tree. See the package
// documentation for the folding rules.
func Build(expr string) (*Node, error) {
	operands, operators := Tokenize(expr)
	return BuildTokens(operands, operators)
}

// BuildTokens folds already tokenized streams into a tree.
//
// It fails with *InvalidExpressionError unless
// len(operators) == len(operands)-1.
func BuildTokens(operands, operators []Token) (*Node, error) {
	if len(operands)-1 != len(operators) {
		return nil, &InvalidExpressionError{Operands: len(operands), Operators: len(operators)}
	}

	level := make([]*Node, len(operands))
	for i, t := range operands {
		level[i] = NewNode(t.Text)
	}

	next := 0
	for len(level) > 1 {
		level, next = fold(level, operators, next)
	}
	return level[0], nil
}

// fold performs one round: adjacent pairs are joined under consecutive
// operators starting at operators[next], and an odd tail is carried over.
// It returns the new level and the index of the next unused operator.
func fold(level []*Node, operators []Token, next int) ([]*Node, int) {
	out := make([]*Node, 0, (len(level)+1)/2)
	for i := 0; i+1 < len(level); i += 2 {
		op := NewNode(operators[next].Text)
		next++
		op.Left = level[i]
		op.Right = level[i+1]
		out = append(out, op)
	}
	if len(level)%2 == 1 {
		out = append(out, level[len(level)-1])
	}
	return out, next
}
