package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/partree/pkg/errors"
	"github.com/matzehuels/partree/pkg/eval"
	"github.com/matzehuels/partree/pkg/history"
	"github.com/matzehuels/partree/pkg/pipeline"
)

// defaultBaseName names output files when --output is not given.
const defaultBaseName = "tree"

// treeOpts holds the flags shared by the tree and render commands.
type treeOpts struct {
	formats   string
	output    string
	noEval    bool
	cellWidth int
	detailed  bool
	headers   bool
	plain     bool
	refresh   bool
}

func (o *treeOpts) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.formats, "format", "f", "", "output format(s): "+strings.Join(pipeline.Formats, ", ")+" (comma-separated, default text)")
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().IntVar(&o.cellWidth, "cell-width", 0, "width of one grid cell in text output")
	cmd.Flags().BoolVar(&o.detailed, "detailed", false, "add depth to DOT labels and the table")
	cmd.Flags().BoolVar(&o.plain, "plain", false, "disable colors in table output")
	cmd.Flags().BoolVar(&o.headers, "headers", false, "number the grid columns in table output")
}

// treeCommand creates the one-shot tree command.
func (c *CLI) treeCommand() *cobra.Command {
	var o treeOpts

	cmd := &cobra.Command{
		Use:   "tree <expression>",
		Short: "Build and render the parallel tree of one expression",
		Long: `Build the parallel tree of an expression and render it.

Text and table output go to stdout unless --output is given. The Graphviz
formats (svg, png, pdf) are cached locally; png and pdf need rsvg-convert.

Examples:
  partree tree "1 + 2 * 3 - 4"
  partree tree "a*b+c" --format table --detailed
  partree tree "1+2+3+4" --format json,svg -o out/sum`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.baseOptions()
			opts.Expression = strings.Join(args, " ")
			if err := o.apply(&opts); err != nil {
				return err
			}
			return c.runTree(cmd.Context(), cmd.OutOrStdout(), opts, o.output)
		},
	}

	o.register(cmd)
	cmd.Flags().BoolVar(&o.noEval, "no-eval", false, "skip evaluation")
	cmd.Flags().BoolVar(&o.refresh, "refresh", false, "bypass cached results")
	return cmd
}

// apply copies the flags onto opts and validates the result.
func (o *treeOpts) apply(opts *pipeline.Options) error {
	opts.Formats = parseFormats(o.formats)
	if o.cellWidth != 0 {
		opts.CellWidth = o.cellWidth
	}
	opts.Detailed = o.detailed
	opts.Headers = o.headers
	opts.Plain = o.plain
	opts.Refresh = o.refresh
	if o.noEval {
		opts.Evaluator = eval.KindNone
	}
	if o.output != "" {
		if err := errors.ValidateOutputPath(o.output); err != nil {
			return err
		}
	}
	return opts.ValidateAndSetDefaults()
}

func (c *CLI) runTree(ctx context.Context, stdout io.Writer, opts pipeline.Options, output string) error {
	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	var spinner *Spinner
	if needsGraphviz(opts.Formats) {
		spinner = newSpinnerWithContext(ctx, "Rendering...")
		spinner.Start()
	}
	prog := newProgress(c.Logger)
	res, err := runner.Execute(ctx, opts)
	stopSpinner(spinner, err)
	c.recordHistory(ctx, opts.Expression, res, err)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Built tree with %d nodes", res.Stats.Nodes))

	return writeArtifacts(stdout, artifactWriteParams{
		artifacts: res.Artifacts,
		formats:   opts.Formats,
		output:    output,
		value:     res.Value,
		showValue: opts.Evaluator != eval.KindNone,
		nodes:     res.Stats.Nodes,
		depth:     res.Stats.Depth,
		cacheHit:  res.CacheInfo.RenderHit,
	})
}

// recordHistory stores a one-shot run. History failures are only logged.
func (c *CLI) recordHistory(ctx context.Context, expr string, res *pipeline.Result, runErr error) {
	store, err := c.newHistory(ctx)
	if err != nil {
		c.Logger.Debug("history disabled", "error", err)
		return
	}
	defer store.Close()

	e := history.NewEntry(expr, "", nil, "", runErr)
	if res != nil {
		e = history.NewEntry(expr, res.Root.String(), res.Lines, res.Value, nil)
	}
	if err := store.Add(ctx, e); err != nil {
		c.Logger.Debug("history write failed", "error", err)
	}
}

func stopSpinner(s *Spinner, err error) {
	switch {
	case s == nil:
	case err != nil && s.Cancelled():
		// interrupted; main reports the cancellation
		s.Stop()
	case err != nil:
		s.StopWithError("Render failed")
	default:
		s.Stop()
	}
}

func needsGraphviz(formats []string) bool {
	for _, f := range formats {
		if pipeline.IsCached(f) {
			return true
		}
	}
	return false
}

// =============================================================================
// Artifact Output
// =============================================================================

type artifactWriteParams struct {
	artifacts map[string][]byte
	formats   []string
	output    string
	value     string
	showValue bool
	nodes     int
	depth     int
	cacheHit  bool
}

// isTerminalFormat reports whether a format is printed to stdout when no
// output path is given.
func isTerminalFormat(format string) bool {
	switch format {
	case pipeline.FormatText, pipeline.FormatTable, pipeline.FormatJSON, pipeline.FormatDOT:
		return true
	}
	return false
}

// writeArtifacts prints or writes rendered artifacts. A single textual
// format without --output goes to stdout; everything else is written to
// files named after the output base path.
func writeArtifacts(stdout io.Writer, p artifactWriteParams) error {
	if len(p.formats) == 1 && p.output == "" && isTerminalFormat(p.formats[0]) {
		format := p.formats[0]
		data := p.artifacts[format]
		if _, err := stdout.Write(data); err != nil {
			return err
		}
		if len(data) > 0 && data[len(data)-1] != '\n' {
			fmt.Fprintln(stdout)
		}
		if p.showValue && (format == pipeline.FormatText || format == pipeline.FormatTable) {
			fmt.Fprintf(stdout, "Result: %s\n", p.value)
		}
		return nil
	}

	base := basePath(p.output)
	var written []string
	for _, format := range p.formats {
		path := base + "." + format
		if len(p.formats) == 1 && filepath.Ext(p.output) != "" {
			path = p.output
		}
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
		}
		if err := os.WriteFile(path, p.artifacts[format], 0644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
	}

	printSuccess("Rendered %d artifact(s)", len(written))
	printStats(p.nodes, p.depth, p.cacheHit)
	for _, path := range written {
		printFile(path)
	}
	if p.showValue {
		printKeyValue("Result", p.value)
	}
	for _, path := range written {
		if filepath.Ext(path) == "."+pipeline.FormatJSON {
			printNextStep("Render it again", "partree render "+path+" --format svg")
			break
		}
	}
	return nil
}

// basePath strips a known format extension from output, or returns the
// default base name.
func basePath(output string) string {
	if output == "" {
		return defaultBaseName
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}
