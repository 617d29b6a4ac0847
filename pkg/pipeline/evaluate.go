package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/matzehuels/partree/pkg/cache"
	"github.com/matzehuels/partree/pkg/errors"
	"github.com/matzehuels/partree/pkg/eval"
	"github.com/matzehuels/partree/pkg/observability"
)

// Evaluation is the outcome of the evaluate stage. A failed evaluation still
// has a Value: the failure's text.
type Evaluation struct {
	Value string
	Err   error
}

// Evaluate computes the displayed value of the expression in opts. Evaluator
// failures are returned inside the Evaluation, never as a stage error.
func Evaluate(ctx context.Context, ev eval.Evaluator, opts Options) Evaluation {
	start := time.Now()
	v, err := ev.Evaluate(opts.Expression)
	observability.Pipeline().OnEvaluate(ctx, opts.Evaluator, time.Since(start), err)
	if err != nil {
		return Evaluation{Value: err.Error(), Err: errors.Wrap(errors.ErrCodeEvaluation, err, "%s", err.Error())}
	}
	return Evaluation{Value: v}
}

// NewEvaluator builds the evaluator selected by opts.
func NewEvaluator(opts Options) (eval.Evaluator, error) {
	return eval.New(opts.Evaluator, eval.Options{Precision: opts.Precision, Vars: opts.Vars})
}

// cachedEval is the cache record of an evaluation.
type cachedEval struct {
	Value  string `json:"value"`
	Failed bool   `json:"failed,omitempty"`
}

// EvaluateWithCacheInfo evaluates with caching and returns cache hit info.
// The runner's Evaluator, when set, replaces the one selected by opts and
// bypasses the cache.
func (r *Runner) EvaluateWithCacheInfo(ctx context.Context, opts Options) (Evaluation, bool, error) {
	if err := opts.ValidateForEvaluate(); err != nil {
		return Evaluation{}, false, err
	}
	if r.Evaluator != nil {
		return Evaluate(ctx, r.Evaluator, opts), false, nil
	}
	if opts.Evaluator == eval.KindNone {
		return Evaluation{}, false, nil
	}

	ev, err := NewEvaluator(opts)
	if err != nil {
		return Evaluation{}, false, err
	}

	cacheKey := r.Keyer.EvalKey(strings.TrimSpace(opts.Expression), opts.EvalKeyOpts())
	if !opts.Refresh {
		var rec cachedEval
		if r.getJSON(ctx, cacheKey, "eval", &rec) {
			res := Evaluation{Value: rec.Value}
			if rec.Failed {
				res.Err = errors.New(errors.ErrCodeEvaluation, "%s", rec.Value)
			}
			return res, true, nil
		}
	}

	res := Evaluate(ctx, ev, opts)
	r.setJSON(ctx, cacheKey, "eval", cachedEval{Value: res.Value, Failed: res.Err != nil}, cache.TTLEval)
	return res, false, nil
}
