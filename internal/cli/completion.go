package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/partree/pkg/eval"
	"github.com/matzehuels/partree/pkg/pipeline"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for partree.

Bash:
  $ source <(partree completion bash)

Zsh:
  $ partree completion zsh > "${fpath[1]}/_partree"

Fish:
  $ partree completion fish > ~/.config/fish/completions/partree.fish

PowerShell:
  PS> partree completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return fmt.Errorf("unsupported shell: %s", args[0])
		},
	}
}

// registerCompletions adds value completion for enumerated flags.
func registerCompletions(root *cobra.Command) {
	evaluators := func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return eval.Kinds, cobra.ShellCompDirectiveNoFileComp
	}
	formats := func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return pipeline.Formats, cobra.ShellCompDirectiveNoFileComp
	}
	_ = root.RegisterFlagCompletionFunc("evaluator", evaluators)
	for _, sub := range root.Commands() {
		if sub.Flags().Lookup("format") != nil {
			_ = sub.RegisterFlagCompletionFunc("format", formats)
		}
	}
}
