package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/partree/pkg/cache"
	"github.com/matzehuels/partree/pkg/core/levels"
	"github.com/matzehuels/partree/pkg/core/tree"
	"github.com/matzehuels/partree/pkg/eval"
	"github.com/matzehuels/partree/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger; it doesn't store
// pipeline results. Multiple goroutines can safely use the same Runner with
// different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// Evaluator, when set, is used for every run regardless of
	// Options.Evaluator, and its results are not cached.
	Evaluator eval.Evaluator
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete build → layout → evaluate → render pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	result := &Result{Expression: opts.Expression}

	// Stage 1: Build
	buildStart := time.Now()
	root, err := Build(ctx, opts.Expression)
	if err != nil {
		return nil, err
	}
	result.Root = root
	result.TreeHash = TreeHash(root)
	result.Stats.BuildTime = time.Since(buildStart)
	result.Stats.Nodes = tree.Size(root)
	result.Stats.Leaves = tree.LeafCount(root)
	result.Stats.Depth = tree.Depth(root)

	r.Logger.Debug("built tree",
		"tree", root.String(),
		"nodes", result.Stats.Nodes,
		"depth", result.Stats.Depth,
		"duration", result.Stats.BuildTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	result.Levels, result.Grid = Layout(ctx, root)
	result.Lines = levels.Lines(result.Grid, opts.CellWidth)
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.Width = result.Grid.Width

	// Stage 3: Evaluate
	evalStart := time.Now()
	ev, evalHit, err := r.EvaluateWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("evaluate: %w", err)
	}
	result.Value, result.EvalErr = ev.Value, ev.Err
	result.Stats.EvalTime = time.Since(evalStart)
	result.CacheInfo.EvalHit = evalHit

	r.Logger.Debug("evaluated expression",
		"evaluator", opts.Evaluator,
		"cached", evalHit,
		"failed", ev.Err != nil,
		"duration", result.Stats.EvalTime)

	// Stage 4: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, root, result.Grid, result.Value, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Debug("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// RenderWithCacheInfo generates artifacts, serving the Graphviz-backed
// formats from cache where possible. The hit flag is true only when at least
// one cached format was requested and all of them were found.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, root *tree.Node, g levels.Grid, value string, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	treeHash := TreeHash(root)
	artifacts := make(map[string][]byte, len(opts.Formats))
	var missing []string
	cachedRequested, cachedHits := 0, 0

	for _, format := range opts.Formats {
		if !IsCached(format) || opts.Refresh {
			missing = append(missing, format)
			continue
		}
		cachedRequested++
		key := r.Keyer.ArtifactKey(treeHash, opts.ArtifactKeyOpts(format))
		if data, hit := r.get(ctx, key, "artifact"); hit {
			artifacts[format] = data
			cachedHits++
			continue
		}
		missing = append(missing, format)
	}

	if len(missing) > 0 {
		sub := opts
		sub.Formats = missing
		rendered, err := Render(ctx, root, g, value, sub)
		if err != nil {
			hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
			return nil, false, err
		}
		for format, data := range rendered {
			artifacts[format] = data
			if IsCached(format) {
				r.set(ctx, r.Keyer.ArtifactKey(treeHash, opts.ArtifactKeyOpts(format)), "artifact", data, cache.TTLArtifact)
			}
		}
	}

	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), nil)
	return artifacts, cachedRequested > 0 && cachedHits == cachedRequested, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// get reads key from the cache, retrying transient failures. Backend errors
// are logged and treated as misses.
func (r *Runner) get(ctx context.Context, key, keyType string) ([]byte, bool) {
	var (
		data []byte
		hit  bool
	)
	err := cache.RetryWithBackoff(ctx, func() (err error) {
		data, hit, err = r.Cache.Get(ctx, key)
		return err
	})
	if err != nil {
		r.Logger.Warn("cache read failed", "type", keyType, "error", err)
		hit = false
	}
	if hit {
		observability.Cache().OnCacheHit(ctx, keyType)
	} else {
		observability.Cache().OnCacheMiss(ctx, keyType)
	}
	return data, hit
}

// set writes key to the cache. Backend errors are logged and ignored.
func (r *Runner) set(ctx context.Context, key, keyType string, data []byte, ttl time.Duration) {
	err := cache.RetryWithBackoff(ctx, func() error {
		return r.Cache.Set(ctx, key, data, ttl)
	})
	if err != nil {
		r.Logger.Warn("cache write failed", "type", keyType, "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

func (r *Runner) getJSON(ctx context.Context, key, keyType string, v any) bool {
	data, hit := r.get(ctx, key, keyType)
	if !hit {
		return false
	}
	return json.Unmarshal(data, v) == nil
}

func (r *Runner) setJSON(ctx context.Context, key, keyType string, v any, ttl time.Duration) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	r.set(ctx, key, keyType, data, ttl)
}
