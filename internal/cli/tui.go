package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/partree/pkg/core/render/sink"
	"github.com/matzehuels/partree/pkg/errors"
	"github.com/matzehuels/partree/pkg/eval"
	"github.com/matzehuels/partree/pkg/history"
	"github.com/matzehuels/partree/pkg/pipeline"
)

var (
	tuiPromptStyle = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
	tuiInputStyle  = lipgloss.NewStyle().Foreground(colorWhite)
	tuiCursorStyle = lipgloss.NewStyle().Reverse(true)
	tuiResultStyle = lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
	tuiHelpStyle   = lipgloss.NewStyle().Foreground(colorDim)
)

// tuiCommand creates the tui command.
func (c *CLI) tuiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Interactive terminal UI",
		Long: `Type an expression and press enter to render its parallel tree as a
table with the evaluated result below. Up and down recall earlier
expressions; esc or ctrl+c quits.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTUI(cmd.Context())
		},
	}
}

func (c *CLI) runTUI(ctx context.Context) error {
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

	m := newTreeModel(ctx, runner, c.baseOptions(), store)
	_, err = tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen()).Run()
	return err
}

// =============================================================================
// TreeModel - expression input and tree display
// =============================================================================

// treeResultMsg carries the outcome of one pipeline run back to the model.
type treeResultMsg struct {
	expr   string
	result *pipeline.Result
	err    error
}

// TreeModel is the bubbletea model behind `partree tui`.
type TreeModel struct {
	ctx     context.Context
	runner  *pipeline.Runner
	base    pipeline.Options
	history history.Store

	input   []rune
	recall  []string // submitted expressions, oldest first
	recallI int      // index into recall while browsing, len(recall) otherwise
	busy    bool

	expr   string
	result *pipeline.Result
	err    error
}

func newTreeModel(ctx context.Context, runner *pipeline.Runner, base pipeline.Options, store history.Store) TreeModel {
	base.Formats = []string{pipeline.FormatText}
	return TreeModel{ctx: ctx, runner: runner, base: base, history: store}
}

func (m TreeModel) Init() tea.Cmd {
	return nil
}

func (m TreeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			line := strings.TrimSpace(string(m.input))
			if line == "" || m.busy {
				return m, nil
			}
			if strings.EqualFold(line, exitCommand) {
				return m, tea.Quit
			}
			m.recall = append(m.recall, line)
			m.recallI = len(m.recall)
			m.busy = true
			return m, m.run(line)
		case tea.KeyBackspace:
			if len(m.input) > 0 {
				m.input = m.input[:len(m.input)-1]
			}
		case tea.KeyCtrlU:
			m.input = nil
		case tea.KeyUp:
			if m.recallI > 0 {
				m.recallI--
				m.input = []rune(m.recall[m.recallI])
			}
		case tea.KeyDown:
			if m.recallI < len(m.recall)-1 {
				m.recallI++
				m.input = []rune(m.recall[m.recallI])
			} else {
				m.recallI = len(m.recall)
				m.input = nil
			}
		case tea.KeySpace:
			m.input = append(m.input, ' ')
		case tea.KeyRunes:
			m.input = append(m.input, msg.Runes...)
		}
	case treeResultMsg:
		m.busy = false
		m.expr, m.result, m.err = msg.expr, msg.result, msg.err
		m.input = nil
	}
	return m, nil
}

// run executes the pipeline off the update loop.
func (m TreeModel) run(expr string) tea.Cmd {
	opts := m.base
	opts.Expression = expr
	return func() tea.Msg {
		res, err := m.runner.Execute(m.ctx, opts)
		e := history.NewEntry(expr, "", nil, "", err)
		if err == nil {
			e = history.NewEntry(expr, res.Root.String(), res.Lines, res.Value, nil)
		}
		if err := m.history.Add(m.ctx, e); err != nil {
			m.runner.Logger.Debug("history write failed", "error", err)
		}
		return treeResultMsg{expr: expr, result: res, err: err}
	}
}

func (m TreeModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("partree"))
	b.WriteString("\n")
	b.WriteString(tuiHelpStyle.Render("⏎ render  ↑/↓ recall  ctrl+u clear  esc quit"))
	b.WriteString("\n\n")

	b.WriteString(tuiPromptStyle.Render("> "))
	b.WriteString(tuiInputStyle.Render(string(m.input)))
	b.WriteString(tuiCursorStyle.Render(" "))
	b.WriteString("\n\n")

	switch {
	case m.busy:
		b.WriteString(StyleDim.Render("Rendering..."))
	case m.err != nil:
		b.WriteString(StyleError.Render("Error: " + errors.UserMessage(m.err)))
	case m.result != nil:
		b.WriteString(StyleDim.Render(m.expr))
		b.WriteString("\n")
		b.WriteString(sink.RenderTable(m.result.Grid, sink.WithTableCellWidth(m.base.CellWidth)))
		b.WriteString("\n")
		if m.base.Evaluator != eval.KindNone {
			b.WriteString(tuiResultStyle.Render("Result: "))
			b.WriteString(m.result.Value)
			b.WriteString("\n")
		}
		b.WriteString(StyleDim.Render(fmt.Sprintf("%d nodes · depth %d · width %d",
			m.result.Stats.Nodes, m.result.Stats.Depth, m.result.Stats.Width)))
	}
	b.WriteString("\n")
	return b.String()
}
