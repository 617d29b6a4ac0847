package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/partree/internal/server"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the tree API over HTTP",
		Long: `Serve the tree API over HTTP.

  POST /api/v1/trees     {"expression": "1+2*3", "formats": ["text", "svg"]}
  GET  /api/v1/history   ?limit=n
  GET  /healthz

Uses the configured cache and history backends.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = c.cfg().Server.Addr
			}
			return c.runServe(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string) error {
	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	store, err := c.newHistory(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	cfg := c.cfg()
	srv := server.New(server.Config{
		Runner:    runner,
		History:   store,
		Logger:    c.Logger,
		Evaluator: cfg.Evaluator,
		Precision: cfg.Precision,
		Vars:      cfg.Vars,
		CellWidth: cfg.CellWidth,
	})
	printInfo("Listening on %s", addr)
	return srv.ListenAndServe(ctx, addr)
}
