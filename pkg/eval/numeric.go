package eval

import (
	"fmt"
	"maps"
	"math/big"
	"slices"

	"github.com/zephyrtronium/expressions"
)

// Numeric evaluates expressions with arbitrary-precision floats.
type Numeric struct {
	// Precision in bits. Zero means [DefaultPrecision].
	Precision uint
	// Vars binds variable names to value expressions, each evaluated with
	// the same precision before expr.
	Vars map[string]string
}

// Evaluate returns the shortest decimal form of expr's value.
func (n Numeric) Evaluate(expr string) (out string, err error) {
	prec := n.Precision
	if prec == 0 {
		prec = DefaultPrecision
	}

	defer recoverError("evaluate", &err)
	opts := []expressions.ContextOption{expressions.Prec(prec)}
	for _, name := range slices.Sorted(maps.Keys(n.Vars)) {
		v, err := expressions.EvalString(n.Vars[name], expressions.Prec(prec))
		if err != nil {
			return "", fmt.Errorf("setting %s: %w", name, err)
		}
		opts = append(opts, expressions.SetVar(name, v))
	}

	r, err := expressions.EvalString(expr, opts...)
	if err != nil {
		return "", fmt.Errorf("evaluate: %w", err)
	}
	if r == nil {
		return "", fmt.Errorf("evaluate: no result")
	}
	return FormatFloat(r), nil
}

// FormatFloat formats f in the shortest form that reads back to the same
// value. Integers are printed in full.
func FormatFloat(f *big.Float) string {
	if f.IsInt() {
		return f.Text('f', 0)
	}
	return f.Text('g', -1)
}
