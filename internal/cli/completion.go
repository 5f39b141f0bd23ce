package cli

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stackpkg/pkg/spec"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for stackpkg.

To load completions:

Bash:
  $ source <(stackpkg completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ stackpkg completion bash > /etc/bash_completion.d/stackpkg
  # macOS:
  $ stackpkg completion bash > $(brew --prefix)/etc/bash_completion.d/stackpkg

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ stackpkg completion zsh > "${fpath[1]}/_stackpkg"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ stackpkg completion fish | source

  # To load completions for each session, execute once:
  $ stackpkg completion fish > ~/.config/fish/completions/stackpkg.fish

PowerShell:
  PS> stackpkg completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> stackpkg completion powershell > stackpkg.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}

	return cmd
}

// completeInstalled completes the names of installed packages.
func (c *CLI) completeInstalled(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	ctx := cmd.Context()
	cfg, err := c.loadConfig(ctx)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	store, closeStore, err := c.openStore(ctx, cfg)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	defer closeStore()
	set, err := store.Load(ctx)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return completionNames(set.All(), args, toComplete), cobra.ShellCompDirectiveNoFileComp
}

// completionNames returns the distinct names with prefix toComplete that
// are not already in args.
func completionNames(specs []*spec.Spec, args []string, toComplete string) []string {
	seen := make(map[string]bool, len(args))
	for _, a := range args {
		name, _, _ := strings.Cut(a, ":")
		seen[name] = true
	}
	var out []string
	for _, s := range specs {
		if seen[s.Name] || !strings.HasPrefix(s.Name, toComplete) {
			continue
		}
		seen[s.Name] = true
		out = append(out, s.Name)
	}
	return out
}
