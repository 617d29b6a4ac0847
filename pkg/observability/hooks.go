// Package observability lets the partree pipeline, cache and HTTP server
// report what they are doing without depending on a logging or metrics
// backend.
//
// Each area emits events through a small interface ([PipelineHooks],
// [CacheHooks], [ServerHooks]). Until a binary registers its own
// implementation the events go to no-ops. The CLI installs log-backed hooks
// when run with --verbose; the server keeps its own request log.
//
// Registration belongs in main:
//
//	observability.SetPipelineHooks(myHooks)
//	observability.SetCacheHooks(myHooks)
//
// Emitters fetch the current receiver for every event:
//
//	observability.Pipeline().OnBuildStart(ctx, expr)
//	root, err := tree.Build(expr)
//	observability.Pipeline().OnBuildComplete(ctx, expr, tree.Size(root), time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// PipelineHooks receives one event pair per pipeline stage.
type PipelineHooks interface {
	OnBuildStart(ctx context.Context, expr string)
	OnBuildComplete(ctx context.Context, expr string, nodeCount int, duration time.Duration, err error)

	// depth is the tree depth; width the resulting grid width in cells.
	OnLayoutStart(ctx context.Context, depth int)
	OnLayoutComplete(ctx context.Context, width int, duration time.Duration)

	OnRenderStart(ctx context.Context, formats []string)
	OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error)

	// OnEvaluate fires once per evaluation. err is the evaluator's failure,
	// which does not fail the run.
	OnEvaluate(ctx context.Context, evaluator string, duration time.Duration, err error)
}

// CacheHooks receives cache lookups and writes. keyType is "artifact" or
// "eval".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// ServerHooks receives HTTP API traffic. path is the route pattern, not the
// raw URL.
type ServerHooks interface {
	OnRequest(ctx context.Context, method, path string)
	OnResponse(ctx context.Context, method, path string, statusCode int, duration time.Duration)
}

// NoopPipelineHooks ignores every pipeline event. Embed it to implement only
// some of them.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnBuildStart(context.Context, string)                               {}
func (NoopPipelineHooks) OnBuildComplete(context.Context, string, int, time.Duration, error) {}
func (NoopPipelineHooks) OnLayoutStart(context.Context, int)                                 {}
func (NoopPipelineHooks) OnLayoutComplete(context.Context, int, time.Duration)               {}
func (NoopPipelineHooks) OnRenderStart(context.Context, []string)                            {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, []string, time.Duration, error)   {}
func (NoopPipelineHooks) OnEvaluate(context.Context, string, time.Duration, error)           {}

// NoopCacheHooks ignores every cache event.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopServerHooks ignores every server event.
type NoopServerHooks struct{}

func (NoopServerHooks) OnRequest(context.Context, string, string)                      {}
func (NoopServerHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// slot holds the registered receiver for one hook kind.
type slot[T any] struct {
	mu   sync.RWMutex
	def  T
	hook T
	set  bool
}

func (s *slot[T]) get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.set {
		return s.def
	}
	return s.hook
}

func (s *slot[T]) put(h T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hook, s.set = h, true
}

func (s *slot[T]) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	s.hook, s.set = zero, false
}

var (
	pipelineSlot = slot[PipelineHooks]{def: NoopPipelineHooks{}}
	cacheSlot    = slot[CacheHooks]{def: NoopCacheHooks{}}
	serverSlot   = slot[ServerHooks]{def: NoopServerHooks{}}
)

// SetPipelineHooks registers h for pipeline events. A nil h is ignored.
func SetPipelineHooks(h PipelineHooks) {
	if h != nil {
		pipelineSlot.put(h)
	}
}

// SetCacheHooks registers h for cache events. A nil h is ignored.
func SetCacheHooks(h CacheHooks) {
	if h != nil {
		cacheSlot.put(h)
	}
}

// SetServerHooks registers h for server events. A nil h is ignored.
func SetServerHooks(h ServerHooks) {
	if h != nil {
		serverSlot.put(h)
	}
}

// Pipeline returns the receiver for pipeline events.
func Pipeline() PipelineHooks { return pipelineSlot.get() }

// Cache returns the receiver for cache events.
func Cache() CacheHooks { return cacheSlot.get() }

// Server returns the receiver for server events.
func Server() ServerHooks { return serverSlot.get() }

// Reset drops all registered hooks. Tests call it in t.Cleanup.
func Reset() {
	pipelineSlot.reset()
	cacheSlot.reset()
	serverSlot.reset()
}
