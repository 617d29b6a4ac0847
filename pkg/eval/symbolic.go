package eval

import (
	"fmt"
	"io"
	"strings"

	"github.com/Konstantin8105/sm"
)

// Symbolic simplifies expressions algebraically.
type Symbolic struct {
	// Trace receives the simplifier's intermediate steps. Nil discards them.
	Trace io.Writer
}

// Evaluate returns the simplified form of expr. Parse failures and panics
// inside the simplifier are reported as errors.
func (s Symbolic) Evaluate(expr string) (out string, err error) {
	if strings.TrimSpace(expr) == "" {
		return "", fmt.Errorf("simplify: empty expression")
	}
	w := s.Trace
	if w == nil {
		w = io.Discard
	}

	defer recoverError("simplify", &err)
	out, err = sm.Sexpr(w, expr)
	if err != nil {
		return "", fmt.Errorf("simplify: %w", err)
	}
	return out, nil
}
