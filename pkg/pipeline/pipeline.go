// Package pipeline runs the build → layout → evaluate → render sequence
// shared by the REPL, the one-shot CLI commands, the TUI and the HTTP server.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Build: tokenize the expression and fold it into a parallel tree
//  2. Layout: collect the tree's levels and place them on the column grid
//  3. Evaluate: compute the displayed value with the configured evaluator
//  4. Render: produce the requested output formats
//
// Build and layout are pure and cheap; they run on every call. Evaluation
// and the Graphviz-backed formats (svg, png, pdf) go through the cache.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Expression: "1 + 2 * 3",
//	    Formats:    []string{pipeline.FormatText, pipeline.FormatSVG},
//	})
//	if err != nil {
//	    // errors.Is(err, errors.ErrCodeInvalidExpression) for malformed input
//	}
//	fmt.Println(string(result.Artifacts["text"]))
//	fmt.Println("Result:", result.Value)
package pipeline

import (
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/partree/pkg/cache"
	"github.com/matzehuels/partree/pkg/core/levels"
	"github.com/matzehuels/partree/pkg/core/tree"
	"github.com/matzehuels/partree/pkg/errors"
	"github.com/matzehuels/partree/pkg/eval"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, TUI and API
// =============================================================================

const (
	// DefaultCellWidth is the width of one grid cell in text output.
	DefaultCellWidth = levels.DefaultCellWidth

	// MaxCellWidth bounds CellWidth.
	MaxCellWidth = 32

	// DefaultEvaluator is the evaluator used when none is configured.
	DefaultEvaluator = eval.KindSymbolic

	// DefaultPNGScale is the resolution multiplier for PNG output.
	DefaultPNGScale = 2.0
)

// Format constants for output formats.
const (
	FormatText  = "text"
	FormatTable = "table"
	FormatJSON  = "json"
	FormatDOT   = "dot"
	FormatSVG   = "svg"
	FormatPNG   = "png"
	FormatPDF   = "pdf"
)

// Formats lists every supported format in display order.
var Formats = []string{FormatText, FormatTable, FormatJSON, FormatDOT, FormatSVG, FormatPNG, FormatPDF}

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatText:  true,
	FormatTable: true,
	FormatJSON:  true,
	FormatDOT:   true,
	FormatSVG:   true,
	FormatPNG:   true,
	FormatPDF:   true,
}

// cachedFormats are rendered through Graphviz or rsvg-convert and cached.
var cachedFormats = map[string]bool{
	FormatSVG: true,
	FormatPNG: true,
	FormatPDF: true,
}

// IsCached reports whether artifacts of format go through the cache.
func IsCached(format string) bool { return cachedFormats[format] }

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Build options
	Expression string `json:"expression"`

	// Render options
	Formats   []string `json:"formats,omitempty"`
	CellWidth int      `json:"cell_width,omitempty"`
	Detailed  bool     `json:"detailed,omitempty"` // depth in DOT labels
	Plain     bool     `json:"plain,omitempty"`    // uncolored table output
	Headers   bool     `json:"headers,omitempty"`  // column numbers above the table

	// Evaluate options
	Evaluator string            `json:"evaluator,omitempty"`
	Precision uint              `json:"precision,omitempty"`
	Vars      map[string]string `json:"vars,omitempty"`

	// Refresh bypasses cached results and overwrites them.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Expression is the input as given.
	Expression string

	// Root is the parallel tree.
	Root *tree.Node

	// TreeHash identifies the tree shape independently of input whitespace.
	TreeHash string

	// Levels holds the nodes and placeholders at each depth.
	Levels levels.Levels

	// Grid is the column layout of Levels.
	Grid levels.Grid

	// Lines is the grid formatted as text, one line per level.
	Lines []string

	// Value is the evaluator's result, or its error text. Empty when the
	// evaluator is "none".
	Value string

	// EvalErr is the evaluator's failure, already reflected in Value.
	EvalErr error

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Nodes      int
	Leaves     int
	Depth      int
	Width      int
	BuildTime  time.Duration
	LayoutTime time.Duration
	EvalTime   time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each cached stage.
type CacheInfo struct {
	EvalHit   bool // Whether the value came from cache
	RenderHit bool // Whether all cached formats came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: %s)", format, strings.Join(Formats, ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateEvaluator checks that an evaluator kind is valid. Empty selects
// the default.
func ValidateEvaluator(kind string) error {
	if kind == "" || slices.Contains(eval.Kinds, kind) {
		return nil
	}
	return errors.New(errors.ErrCodeInvalidEvaluator,
		"invalid evaluator: %q (must be one of: %s)", kind, strings.Join(eval.Kinds, ", "))
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks every field and applies defaults for the full
// pipeline. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForBuild(); err != nil {
		return err
	}
	if err := o.ValidateForEvaluate(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForBuild checks the expression for size and encoding. Whether it
// forms a tree is decided by the build stage.
func (o *Options) ValidateForBuild() error {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return errors.ValidateExpression(o.Expression)
}

// SetEvalDefaults sets default values for evaluation.
func (o *Options) SetEvalDefaults() {
	if o.Evaluator == "" {
		o.Evaluator = DefaultEvaluator
	}
	if o.Precision == 0 {
		o.Precision = eval.DefaultPrecision
	}
}

// ValidateForEvaluate validates and sets defaults for evaluation.
func (o *Options) ValidateForEvaluate() error {
	o.SetEvalDefaults()
	if err := ValidateEvaluator(o.Evaluator); err != nil {
		return err
	}
	for name := range o.Vars {
		if err := errors.ValidateVarName(name); err != nil {
			return err
		}
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatText}
	}
	if o.CellWidth == 0 {
		o.CellWidth = DefaultCellWidth
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if o.CellWidth < 1 || o.CellWidth > MaxCellWidth {
		return errors.New(errors.ErrCodeInvalidInput, "cell width must be between 1 and %d, got %d", MaxCellWidth, o.CellWidth)
	}
	return ValidateFormats(o.Formats)
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:    format,
		CellWidth: o.CellWidth,
		Detailed:  o.Detailed,
	}
}

// EvalKeyOpts returns cache key options for evaluation. Variables only
// affect the numeric evaluator.
func (o *Options) EvalKeyOpts() cache.EvalKeyOpts {
	k := cache.EvalKeyOpts{Evaluator: o.Evaluator}
	if o.Evaluator == eval.KindNumeric {
		k.Precision = o.Precision
		k.Vars = o.Vars
	}
	return k
}
