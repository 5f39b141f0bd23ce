package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/stackpkg/pkg/buildinfo"
)

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	versionTemplate := buildinfo.Template()
	root := &cobra.Command{
		Use:          appName,
		Short:        "stackpkg installs packages and their dependencies",
		Long:         `stackpkg resolves version requirements against a local package cache and remote registries, then installs the result in dependency order.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return c.SetLogFormat(c.logFormat)
	}

	root.SetVersionTemplate(versionTemplate)
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/stackpkg/config.toml)")
	root.PersistentFlags().StringVar(&c.installDir, "install-dir", "", "install root (overrides config)")
	root.PersistentFlags().StringVar(&c.logFormat, "log-format", "text", "log output format: text, json or logfmt")

	root.AddCommand(c.installCommand())
	root.AddCommand(c.planCommand())
	root.AddCommand(c.uninstallCommand())
	root.AddCommand(c.listCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}
