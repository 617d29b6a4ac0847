package eval

import (
	"fmt"
	"strings"

	"github.com/matzehuels/partree/pkg/errors"
)

// Evaluator kinds accepted by [New].
const (
	KindSymbolic = "symbolic"
	KindNumeric  = "numeric"
	KindNone     = "none"
)

// Kinds lists every evaluator kind in display order.
var Kinds = []string{KindSymbolic, KindNumeric, KindNone}

// DefaultPrecision is the mantissa precision, in bits, of [Numeric].
const DefaultPrecision uint = 64

// Evaluator turns an expression into its displayed value.
type Evaluator interface {
	Evaluate(expr string) (string, error)
}

// Options configures evaluators built by [New].
type Options struct {
	// Precision is the numeric precision in bits. Zero means [DefaultPrecision].
	Precision uint
	// Vars binds variable names to value expressions for the numeric evaluator.
	Vars map[string]string
}

// New returns the evaluator for kind. An empty kind selects the symbolic
// evaluator.
func New(kind string, opts Options) (Evaluator, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", KindSymbolic:
		return Symbolic{}, nil
	case KindNumeric:
		for name := range opts.Vars {
			if err := errors.ValidateVarName(name); err != nil {
				return nil, err
			}
		}
		return Numeric{Precision: opts.Precision, Vars: opts.Vars}, nil
	case KindNone:
		return None{}, nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidEvaluator,
			"unknown evaluator %q (want one of %s)", kind, strings.Join(Kinds, ", "))
	}
}

// Describe evaluates expr and returns either the value or the error text.
// A nil evaluator yields "".
func Describe(ev Evaluator, expr string) string {
	if ev == nil {
		return ""
	}
	v, err := ev.Evaluate(expr)
	if err != nil {
		return err.Error()
	}
	return v
}

// None is an evaluator that never produces a value.
type None struct{}

// Evaluate returns "".
func (None) Evaluate(string) (string, error) { return "", nil }

func recoverError(name string, err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("%s: %v", name, r)
	}
}
