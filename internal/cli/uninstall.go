package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stackpkg/pkg/install"
)

type uninstallFlags struct {
	all                bool
	ignoreDependencies bool
	executables        bool
	version            string
}

// uninstallCommand creates the uninstall command.
func (c *CLI) uninstallCommand() *cobra.Command {
	var flags uninstallFlags

	cmd := &cobra.Command{
		Use:   "uninstall NAME[:REQUIREMENT]...",
		Short: "Remove installed packages",
		Long: `Uninstall removes installed versions of the named packages. When several
versions match, pass --all or pick them interactively.

A version that another installed package still depends on is kept unless
--ignore-dependencies is given.`,
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: c.completeInstalled,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runUninstall(cmd.Context(), args, flags)
		},
	}

	cmd.Flags().BoolVarP(&flags.all, "all", "a", false, "remove every matching version")
	cmd.Flags().BoolVarP(&flags.ignoreDependencies, "ignore-dependencies", "I", false, "remove even if other packages depend on it")
	cmd.Flags().BoolVarP(&flags.executables, "executables", "x", false, "remove executable wrappers without asking")
	cmd.Flags().StringVar(&flags.version, "version", "", "version requirement for a single package")

	return cmd
}

func (c *CLI) runUninstall(ctx context.Context, args []string, flags uninstallFlags) error {
	reqs, err := parseRequests(args, flags.version)
	if err != nil {
		return err
	}
	cfg, err := c.loadConfig(ctx)
	if err != nil {
		return err
	}
	store, closeStore, err := c.openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	unlock, err := install.Lock(ctx, cfg.InstallDir, install.DefaultLockTimeout)
	if err != nil {
		return err
	}
	defer unlock()

	u := install.NewUninstaller(install.Layout{InstallDir: cfg.InstallDir, BinDir: cfg.BinDir}, store, c.Logger)
	opts := uninstallOptions(flags, isInteractive())
	for _, r := range reqs {
		removed, err := u.Uninstall(ctx, r.Name, r.Requirement, opts)
		if err != nil {
			return err
		}
		for _, s := range removed {
			out.success("Uninstalled %s", s.FullName())
		}
	}
	return nil
}

func uninstallOptions(flags uninstallFlags, interactive bool) install.UninstallOptions {
	opts := install.UninstallOptions{
		All:                flags.all,
		IgnoreDependencies: flags.ignoreDependencies,
		Executables:        flags.executables || flags.all,
	}
	if interactive {
		opts.Choose = chooseVersions
	}
	return opts
}

