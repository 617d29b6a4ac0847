package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/partree/pkg/cache"
	"github.com/matzehuels/partree/pkg/core/levels"
	"github.com/matzehuels/partree/pkg/core/tree"
	"github.com/matzehuels/partree/pkg/errors"
	"github.com/matzehuels/partree/pkg/observability"
)

// Build folds expr into a parallel tree. Malformed input is reported as an
// [errors.ErrCodeInvalidExpression] error whose message is the builder's.
func Build(ctx context.Context, expr string) (*tree.Node, error) {
	hooks := observability.Pipeline()
	hooks.OnBuildStart(ctx, expr)
	start := time.Now()

	root, err := tree.Build(expr)
	if err != nil {
		err = errors.Wrap(errors.ErrCodeInvalidExpression, err, "%s", err.Error())
		hooks.OnBuildComplete(ctx, expr, 0, time.Since(start), err)
		return nil, err
	}

	hooks.OnBuildComplete(ctx, expr, tree.Size(root), time.Since(start), nil)
	return root, nil
}

// Layout collects the levels of root and places them on the grid.
func Layout(ctx context.Context, root *tree.Node) (levels.Levels, levels.Grid) {
	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, tree.Depth(root))
	start := time.Now()

	lv := levels.Collect(root)
	g := levels.LayoutLevels(lv)

	hooks.OnLayoutComplete(ctx, g.Width, time.Since(start))
	return lv, g
}

// TreeHash identifies the shape and labels of root. Inputs that differ only
// in whitespace hash the same.
func TreeHash(root *tree.Node) string {
	if root == nil {
		return cache.HashString("")
	}
	return cache.HashString(root.String())
}
