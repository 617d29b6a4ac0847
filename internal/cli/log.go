package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/partree/pkg/observability"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time, rounded to the millisecond.
// Example output: "Rendered 3 artifacts (12ms)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// =============================================================================
// Log-backed hooks
// =============================================================================

// logHooks reports pipeline and cache events at debug level. It is
// installed by main when --verbose is set.
type logHooks struct {
	observability.NoopPipelineHooks
	logger *log.Logger
}

// InstallLogHooks routes pipeline and cache events to the CLI's logger.
func (c *CLI) InstallLogHooks() {
	h := &logHooks{logger: c.Logger.WithPrefix("hooks")}
	observability.SetPipelineHooks(h)
	observability.SetCacheHooks(h)
}

func (h *logHooks) OnBuildComplete(_ context.Context, expr string, nodes int, dur time.Duration, err error) {
	if err != nil {
		h.logger.Debug("build failed", "expr", expr, "error", err)
		return
	}
	h.logger.Debug("build", "nodes", nodes, "duration", dur)
}

func (h *logHooks) OnLayoutComplete(_ context.Context, width int, dur time.Duration) {
	h.logger.Debug("layout", "width", width, "duration", dur)
}

func (h *logHooks) OnEvaluate(_ context.Context, evaluator string, dur time.Duration, err error) {
	h.logger.Debug("evaluate", "evaluator", evaluator, "duration", dur, "failed", err != nil)
}

func (h *logHooks) OnRenderComplete(_ context.Context, formats []string, dur time.Duration, err error) {
	h.logger.Debug("render", "formats", formats, "duration", dur, "error", err)
}

func (h *logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}
