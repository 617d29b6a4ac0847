package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/partree/pkg/history"
)

// historyCommand creates the history command. Without a subcommand it lists.
func (c *CLI) historyCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show or clear previously entered expressions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runHistoryList(cmd, limit)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of entries to show")

	list := &cobra.Command{
		Use:   "list",
		Short: "List recent expressions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runHistoryList(cmd, limit)
		},
	}
	list.Flags().IntVarP(&limit, "limit", "n", 20, "number of entries to show")

	clear := &cobra.Command{
		Use:   "clear",
		Short: "Delete all history entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.newHistory(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()
			if err := store.Clear(cmd.Context()); err != nil {
				return fmt.Errorf("clear history: %w", err)
			}
			printSuccess("History cleared")
			return nil
		},
	}

	cmd.AddCommand(list, clear)
	return cmd
}

func (c *CLI) runHistoryList(cmd *cobra.Command, limit int) error {
	store, err := c.newHistory(cmd.Context())
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.List(cmd.Context(), limit)
	if err != nil {
		return fmt.Errorf("list history: %w", err)
	}
	if len(entries) == 0 {
		printInfo("History is empty")
		return nil
	}
	writeHistory(cmd.OutOrStdout(), entries)
	return nil
}

// writeHistory prints one line per entry: time, expression, and the result
// or the error.
func writeHistory(w io.Writer, entries []*history.Entry) {
	for _, e := range entries {
		ts := StyleDim.Render(e.CreatedAt.Local().Format("2006-01-02 15:04:05"))
		outcome := StyleValue.Render(e.Value)
		if e.Failed() {
			outcome = StyleError.Render("error: " + e.Error)
		}
		expr := strings.TrimSpace(e.Expression)
		fmt.Fprintf(w, "%s  %-30s %s %s\n", ts, expr, StyleDim.Render(iconArrow), outcome)
	}
}
