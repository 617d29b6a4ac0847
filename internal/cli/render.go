package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/partree/pkg/core/render/sink"
	"github.com/matzehuels/partree/pkg/core/tree"
	"github.com/matzehuels/partree/pkg/errors"
	"github.com/matzehuels/partree/pkg/pipeline"
)

// renderCommand creates the render command for re-rendering saved trees.
func (c *CLI) renderCommand() *cobra.Command {
	var o treeOpts

	cmd := &cobra.Command{
		Use:   "render <tree.json>",
		Short: "Render a tree saved with --format json",
		Long: `Render a tree saved with 'partree tree --format json' into other formats.

The tree is read back exactly as saved; the expression is not rebuilt or
re-evaluated, and the saved value is kept.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.baseOptions()
			if err := o.apply(&opts); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), cmd.OutOrStdout(), args[0], opts, o.output)
		},
	}

	o.register(cmd)
	return cmd
}

// savedTree is the part of a JSON artifact that is not the tree itself.
type savedTree struct {
	Expression string `json:"expression"`
	Value      string `json:"value"`
}

func (c *CLI) runRender(ctx context.Context, stdout io.Writer, input string, opts pipeline.Options, output string) error {
	logger := loggerFromContext(ctx)

	data, err := os.ReadFile(input)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "read %s", input)
	}
	root, err := sink.ParseJSONTree(data)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "parse %s: %v", input, err)
	}
	if root == nil {
		return errors.New(errors.ErrCodeInvalidInput, "%s has no expression_tree", input)
	}
	var meta savedTree
	_ = json.Unmarshal(data, &meta)
	opts.Expression = meta.Expression
	logger.Debug("loaded tree", "file", input, "tree", root.String())

	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	_, grid := pipeline.Layout(ctx, root)

	var spinner *Spinner
	if needsGraphviz(opts.Formats) {
		spinner = newSpinnerWithContext(ctx, "Rendering...")
		spinner.Start()
	}
	artifacts, cacheHit, err := runner.RenderWithCacheInfo(ctx, root, grid, meta.Value, opts)
	stopSpinner(spinner, err)
	if err != nil {
		return err
	}

	if output == "" && !(len(opts.Formats) == 1 && isTerminalFormat(opts.Formats[0])) {
		output = strings.TrimSuffix(input, filepath.Ext(input))
	}
	return writeArtifacts(stdout, artifactWriteParams{
		artifacts: artifacts,
		formats:   opts.Formats,
		output:    output,
		value:     meta.Value,
		showValue: meta.Value != "",
		nodes:     tree.Size(root),
		depth:     tree.Depth(root),
		cacheHit:  cacheHit,
	})
}
