package pipeline

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/partree/pkg/cache"
	"github.com/matzehuels/partree/pkg/core/levels"
	"github.com/matzehuels/partree/pkg/core/tree"
	"github.com/matzehuels/partree/pkg/errors"
	"github.com/matzehuels/partree/pkg/eval"
	"github.com/matzehuels/partree/pkg/observability"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"text", false},
		{"table", false},
		{"json", false},
		{"dot", false},
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) code = %s", tt.format, errors.GetCode(err))
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "text"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}
	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestValidateEvaluator(t *testing.T) {
	for _, kind := range []string{"", "symbolic", "numeric", "none"} {
		if err := ValidateEvaluator(kind); err != nil {
			t.Errorf("ValidateEvaluator(%q) error: %v", kind, err)
		}
	}
	if err := ValidateEvaluator("maxima"); !errors.Is(err, errors.ErrCodeInvalidEvaluator) {
		t.Errorf("ValidateEvaluator(maxima) = %v", err)
	}
}

func TestValidateAndSetDefaults(t *testing.T) {
	opts := Options{Expression: "1+2"}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error: %v", err)
	}
	if opts.Evaluator != DefaultEvaluator {
		t.Errorf("Evaluator = %q, want %q", opts.Evaluator, DefaultEvaluator)
	}
	if opts.Precision != eval.DefaultPrecision {
		t.Errorf("Precision = %d, want %d", opts.Precision, eval.DefaultPrecision)
	}
	if opts.CellWidth != DefaultCellWidth {
		t.Errorf("CellWidth = %d, want %d", opts.CellWidth, DefaultCellWidth)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatText {
		t.Errorf("Formats = %v, want [text]", opts.Formats)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discard logger")
	}

	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"bad format", Options{Expression: "1", Formats: []string{"gif"}}, errors.ErrCodeInvalidFormat},
		{"bad evaluator", Options{Expression: "1", Evaluator: "maxima"}, errors.ErrCodeInvalidEvaluator},
		{"bad cell width", Options{Expression: "1", CellWidth: 99}, errors.ErrCodeInvalidInput},
		{"bad var", Options{Expression: "1", Vars: map[string]string{"1x": "2"}}, errors.ErrCodeInvalidInput},
		{"control char", Options{Expression: "1\x07+2"}, errors.ErrCodeInvalidExpression},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if !errors.Is(err, tt.code) {
				t.Errorf("ValidateAndSetDefaults() = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestExecute(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	res, err := r.Execute(context.Background(), Options{
		Expression: "1 + 2 + 3 + 4",
		Formats:    []string{FormatText, FormatJSON, FormatDOT, FormatTable},
		Evaluator:  eval.KindNumeric,
	})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	if got := res.Root.String(); got != "((1+2)+(3+4))" {
		t.Errorf("Root = %s", got)
	}
	if res.Value != "10" || res.EvalErr != nil {
		t.Errorf("Value = %q (err %v), want 10", res.Value, res.EvalErr)
	}
	if res.Stats.Nodes != 7 || res.Stats.Leaves != 4 || res.Stats.Depth != 2 || res.Stats.Width != 4 {
		t.Errorf("Stats = %+v", res.Stats)
	}

	wantText := levels.Format(res.Grid, DefaultCellWidth)
	if string(res.Artifacts[FormatText]) != wantText {
		t.Errorf("text artifact = %q, want %q", res.Artifacts[FormatText], wantText)
	}
	if len(res.Lines) != 3 {
		t.Errorf("Lines = %q, want 3 lines", res.Lines)
	}
	if !strings.Contains(string(res.Artifacts[FormatJSON]), `"value": "10"`) {
		t.Errorf("json artifact missing value:\n%s", res.Artifacts[FormatJSON])
	}
	if got := strings.Count(string(res.Artifacts[FormatDOT]), " -> "); got != 6 {
		t.Errorf("dot artifact has %d edges, want 6", got)
	}
	if !strings.Contains(string(res.Artifacts[FormatTable]), "╭") {
		t.Errorf("table artifact missing border:\n%s", res.Artifacts[FormatTable])
	}
}

func TestExecuteInvalidExpression(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	for _, expr := range []string{"2+", "", "+", "1,2"} {
		_, err := r.Execute(context.Background(), Options{Expression: expr})
		if !errors.Is(err, errors.ErrCodeInvalidExpression) {
			t.Errorf("Execute(%q) error = %v, want %s", expr, err, errors.ErrCodeInvalidExpression)
			continue
		}
		if got := errors.UserMessage(err); got != "invalid expression: mismatch between operands and operators" {
			t.Errorf("Execute(%q) message = %q", expr, got)
		}
	}
}

func TestExecuteEvaluationFailureIsNotFatal(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	res, err := r.Execute(context.Background(), Options{Expression: "x+1", Evaluator: eval.KindNumeric})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if !strings.Contains(res.Value, "undefined variable") {
		t.Errorf("Value = %q, want the evaluator's error text", res.Value)
	}
	if !errors.Is(res.EvalErr, errors.ErrCodeEvaluation) {
		t.Errorf("EvalErr = %v, want %s", res.EvalErr, errors.ErrCodeEvaluation)
	}
	if len(res.Lines) != 2 {
		t.Errorf("tree should still render, got %q", res.Lines)
	}
}

func TestExecuteNoneEvaluator(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	res, err := r.Execute(context.Background(), Options{Expression: "a*b", Evaluator: eval.KindNone})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if res.Value != "" {
		t.Errorf("Value = %q, want empty", res.Value)
	}
}

type stubEvaluator struct{ calls int }

func (s *stubEvaluator) Evaluate(expr string) (string, error) {
	s.calls++
	return "stub:" + expr, nil
}

func TestRunnerEvaluatorOverride(t *testing.T) {
	stub := &stubEvaluator{}
	r := NewRunner(nil, nil, nil)
	r.Evaluator = stub

	res, err := r.Execute(context.Background(), Options{Expression: "1+2", Evaluator: eval.KindNone})
	if err != nil {
		t.Fatal(err)
	}
	if res.Value != "stub:1+2" || stub.calls != 1 {
		t.Errorf("Value = %q, calls = %d", res.Value, stub.calls)
	}
}

func TestEvaluateCache(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(c, nil, nil)
	ctx := context.Background()
	opts := Options{Expression: "6*7", Evaluator: eval.KindNumeric}

	first, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheInfo.EvalHit {
		t.Error("first run should miss the cache")
	}

	second, err := r.Execute(ctx, Options{Expression: "6*7", Evaluator: eval.KindNumeric})
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheInfo.EvalHit || second.Value != "42" {
		t.Errorf("second run: hit %v, value %q", second.CacheInfo.EvalHit, second.Value)
	}

	refreshed, err := r.Execute(ctx, Options{Expression: "6*7", Evaluator: eval.KindNumeric, Refresh: true})
	if err != nil {
		t.Fatal(err)
	}
	if refreshed.CacheInfo.EvalHit {
		t.Error("Refresh should bypass the cache")
	}
}

func TestRenderCache(t *testing.T) {
	ctx := context.Background()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(c, nil, nil)

	root, err := tree.Build("a+b")
	if err != nil {
		t.Fatal(err)
	}
	opts := Options{Expression: "a+b", Formats: []string{FormatSVG, FormatText}}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	key := r.Keyer.ArtifactKey(TreeHash(root), opts.ArtifactKeyOpts(FormatSVG))
	if err := c.Set(ctx, key, []byte("<svg>cached</svg>"), time.Hour); err != nil {
		t.Fatal(err)
	}

	res, err := r.Execute(ctx, Options{Expression: " a + b ", Formats: []string{FormatSVG, FormatText}, Evaluator: eval.KindNone})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if !res.CacheInfo.RenderHit {
		t.Error("svg should come from cache")
	}
	if string(res.Artifacts[FormatSVG]) != "<svg>cached</svg>" {
		t.Errorf("svg artifact = %q", res.Artifacts[FormatSVG])
	}
	if len(res.Artifacts[FormatText]) == 0 {
		t.Error("text artifact should be rendered alongside cached formats")
	}
}

func TestTreeHash(t *testing.T) {
	a, _ := tree.Build("1+2*3")
	b, _ := tree.Build(" 1 + 2 * 3 ")
	c, _ := tree.Build("1+2-3")
	if TreeHash(a) != TreeHash(b) {
		t.Error("whitespace should not change the tree hash")
	}
	if TreeHash(a) == TreeHash(c) {
		t.Error("different operators should change the tree hash")
	}
	if TreeHash(nil) == "" {
		t.Error("TreeHash(nil) should still be a hash")
	}
}

type countingHooks struct {
	observability.NoopPipelineHooks
	mu     sync.Mutex
	events []string
}

func (h *countingHooks) record(e string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, e)
}

func (h *countingHooks) OnBuildComplete(_ context.Context, _ string, _ int, _ time.Duration, err error) {
	if err != nil {
		h.record("build-error")
		return
	}
	h.record("build")
}
func (h *countingHooks) OnLayoutComplete(context.Context, int, time.Duration) { h.record("layout") }
func (h *countingHooks) OnEvaluate(context.Context, string, time.Duration, error) {
	h.record("evaluate")
}
func (h *countingHooks) OnRenderComplete(context.Context, []string, time.Duration, error) {
	h.record("render")
}

func TestExecuteFiresHooks(t *testing.T) {
	hooks := &countingHooks{}
	observability.SetPipelineHooks(hooks)
	t.Cleanup(observability.Reset)

	r := NewRunner(nil, nil, nil)
	if _, err := r.Execute(context.Background(), Options{Expression: "1+2", Evaluator: eval.KindNumeric}); err != nil {
		t.Fatal(err)
	}
	_, _ = r.Execute(context.Background(), Options{Expression: "1+"})

	want := []string{"build", "layout", "evaluate", "render", "build-error"}
	if strings.Join(hooks.events, ",") != strings.Join(want, ",") {
		t.Errorf("events = %v, want %v", hooks.events, want)
	}
}

// flakyCache fails the first call to Get and Set with a retryable error.
type flakyCache struct {
	cache.Cache
	getFails, setFails int
}

func (f *flakyCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if f.getFails > 0 {
		f.getFails--
		return nil, false, cache.Retryable(cache.ErrUnavailable)
	}
	return f.Cache.Get(ctx, key)
}

func (f *flakyCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if f.setFails > 0 {
		f.setFails--
		return cache.Retryable(cache.ErrUnavailable)
	}
	return f.Cache.Set(ctx, key, data, ttl)
}

func TestRunnerRetriesTransientCacheErrors(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	flaky := &flakyCache{Cache: fc, getFails: 1, setFails: 1}
	r := NewRunner(flaky, nil, nil)

	ctx := context.Background()
	r.set(ctx, "k", "test", []byte("v"), time.Minute)
	data, hit := r.get(ctx, "k", "test")
	if !hit || string(data) != "v" {
		t.Errorf("get() = %q, %v after transient failures", data, hit)
	}
	if flaky.getFails != 0 || flaky.setFails != 0 {
		t.Error("transient failures should have been retried")
	}
}
