package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/partree/pkg/errors"
	"github.com/matzehuels/partree/pkg/eval"
	"github.com/matzehuels/partree/pkg/history"
	"github.com/matzehuels/partree/pkg/pipeline"
)

// exitCommand ends the read loop, compared case-insensitively.
const exitCommand = "exit"

// replCommand creates the repl command. The root command runs the same loop.
func (c *CLI) replCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Read expressions interactively and print their parallel trees",
		Long: `Read expressions line by line. Each line is folded into a parallel tree,
printed level by level, and evaluated. A malformed line prints an error and
the loop continues. Type 'exit' or send EOF (ctrl+d) to quit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runREPL(cmd.Context())
		},
	}
}

func (c *CLI) runREPL(ctx context.Context) error {
	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	store, err := c.newHistory(ctx)
	if err != nil {
		c.Logger.Warn("history disabled", "error", err)
		store = history.Nop{}
	}
	defer store.Close()

	r := &repl{
		in:      c.In,
		out:     c.Out,
		prompt:  c.cfg().Prompt,
		runner:  runner,
		base:    c.baseOptions(),
		history: store,
		logger:  c.Logger,
	}
	return r.run(ctx)
}

// repl is the read-evaluate-print loop.
type repl struct {
	in      io.Reader
	out     io.Writer
	prompt  string
	runner  *pipeline.Runner
	base    pipeline.Options
	history history.Store
	logger  *log.Logger
}

// run reads lines until "exit", EOF or cancellation. Malformed expressions,
// oversized lines included, never end the loop.
func (r *repl) run(ctx context.Context) error {
	br := bufio.NewReader(r.in)
	for {
		fmt.Fprint(r.out, r.prompt)
		line, err := br.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			fmt.Fprintln(r.out)
			if err != io.EOF {
				return fmt.Errorf("read input: %w", err)
			}
			return nil
		}
		line = strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r")
		if strings.EqualFold(strings.TrimSpace(line), exitCommand) {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		r.eval(ctx, line)
	}
}

// eval processes one line and prints the tree and result, or the error.
func (r *repl) eval(ctx context.Context, line string) {
	opts := r.base
	opts.Expression = line
	opts.Formats = []string{pipeline.FormatText}

	res, err := r.runner.Execute(ctx, opts)
	if err != nil {
		fmt.Fprintf(r.out, "Error: %s\n", errors.UserMessage(err))
		r.record(ctx, history.NewEntry(line, "", nil, "", err))
		return
	}

	fmt.Fprintln(r.out, "Parallel tree:")
	fmt.Fprintln(r.out, string(res.Artifacts[pipeline.FormatText]))
	if opts.Evaluator != eval.KindNone {
		fmt.Fprintf(r.out, "Result: %s\n", res.Value)
	}
	r.record(ctx, history.NewEntry(line, res.Root.String(), res.Lines, res.Value, nil))
}

func (r *repl) record(ctx context.Context, e *history.Entry) {
	if err := r.history.Add(ctx, e); err != nil {
		r.logger.Debug("history write failed", "error", err)
	}
}
