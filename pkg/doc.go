// Package pkg provides the core libraries for partree, which turns arithmetic
// expressions into parallel evaluation trees.
//
// # Overview
//
// An expression such as "1 + 2 + 3 + 4" is folded left to right into a binary
// tree, laid out level by level on a fixed-width grid, optionally evaluated,
// and rendered in one or more output formats. The pkg directory is organized
// into these areas:
//
//  1. [core] - Domain logic (tree building, level layout, rendering)
//  2. [eval] - Pluggable evaluators (symbolic, numeric, none)
//  3. [pipeline] - Orchestration (build → layout → evaluate → render)
//  4. [cache], [history] - Storage of rendered artifacts and past expressions
//  5. [config], [errors], [observability], [buildinfo] - Ambient support
//
// # Architecture
//
//	Expression text
//	      ↓
//	[core/tree] (tokenize and fold into a binary tree)
//	      ↓
//	[core/levels] (bucket by depth, place on a 2^(n-1) wide grid)
//	      ↓
//	[eval] (symbolic or numeric value, failures are not fatal)
//	      ↓
//	[core/render/sink] text, table, json
//	[core/render/nodelink] dot, svg, png, pdf
//
// # Quick Start
//
//	import (
//	    "context"
//	    "fmt"
//
//	    "github.com/matzehuels/partree/pkg/pipeline"
//	)
//
//	runner := pipeline.NewRunner(nil, nil, nil)
//	res, err := runner.Execute(context.Background(), pipeline.Options{
//	    Expression: "1 + 2 * 3",
//	    Formats:    []string{pipeline.FormatText},
//	    Evaluator:  "numeric",
//	})
//	if err != nil {
//	    return err
//	}
//	fmt.Print(string(res.Artifacts[pipeline.FormatText]))
//	fmt.Println("Result:", res.Value)
//
// # Error Handling
//
// Errors that reach a user carry a code from [errors]. Invalid expressions
// fail the run; evaluation failures do not, and their text becomes the
// result value.
//
// # Caching
//
// Graphviz-rendered artifacts and evaluation results are cached by a hash of
// the tree's structure. [cache.FileCache] serves the CLI, [cache.RedisCache]
// serves shared deployments, and [cache.NullCache] disables caching.
package pkg
