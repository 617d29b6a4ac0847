package cache

import (
	"maps"
	"slices"
)

// Keyer builds cache keys. Implementations must be deterministic.
type Keyer interface {
	// ArtifactKey identifies a rendered output of a tree.
	ArtifactKey(treeHash string, opts ArtifactKeyOpts) string
	// EvalKey identifies an evaluator result.
	EvalKey(expr string, opts EvalKeyOpts) string
}

// ArtifactKeyOpts lists every render option that changes an artifact.
type ArtifactKeyOpts struct {
	Format    string
	CellWidth int
	Detailed  bool
}

// EvalKeyOpts lists every evaluator option that changes a result.
type EvalKeyOpts struct {
	Evaluator string
	Precision uint
	Vars      map[string]string
}

// DefaultKeyer is the standard key layout.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ArtifactKey returns "artifact:<hash>".
func (DefaultKeyer) ArtifactKey(treeHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", treeHash, opts.Format, opts.CellWidth, opts.Detailed)
}

// EvalKey returns "eval:<hash>". Variables are hashed in name order.
func (DefaultKeyer) EvalKey(expr string, opts EvalKeyOpts) string {
	vars := make([][2]string, 0, len(opts.Vars))
	for _, name := range slices.Sorted(maps.Keys(opts.Vars)) {
		vars = append(vars, [2]string{name, opts.Vars[name]})
	}
	return hashKey("eval", expr, opts.Evaluator, opts.Precision, vars)
}

var _ Keyer = DefaultKeyer{}
