package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stackpkg/pkg/install"
	"github.com/matzehuels/stackpkg/pkg/resolve"
	"github.com/matzehuels/stackpkg/pkg/spec"
)

type installFlags struct {
	search     searchFlags
	version    string
	noWrappers bool
}

// installCommand creates the install command.
func (c *CLI) installCommand() *cobra.Command {
	var flags installFlags

	cmd := &cobra.Command{
		Use:   "install NAME[:REQUIREMENT]...",
		Short: "Install packages and their dependencies",
		Long: `Install resolves the requested packages against the local package cache
and the configured registries, then installs the plan in dependency order.

Requirements use the operators =, !=, >, <, >=, <= and ~>:

  stackpkg install rake
  stackpkg install "rake:~> 13.0" json
  stackpkg install ./build/mytool-1.0.pkg`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInstall(cmd.Context(), args, flags)
		},
	}

	flags.search.bind(cmd)
	cmd.Flags().StringVar(&flags.version, "version", "", "version requirement for a single package")
	cmd.Flags().BoolVar(&flags.noWrappers, "no-wrappers", false, "do not write executable wrappers")

	return cmd
}

func (c *CLI) runInstall(ctx context.Context, args []string, flags installFlags) error {
	reqs, err := parseRequests(args, flags.version)
	if err != nil {
		return err
	}
	s, err := c.newSession(ctx, &flags.search)
	if err != nil {
		return err
	}
	defer s.close()

	res, err := c.resolveWithSpinner(ctx, s.resolver, reqs)
	if err != nil {
		return err
	}
	printAdvisory(res)

	layout := s.layout()
	if flags.noWrappers || !s.cfg.Wrappers {
		layout.BinDir = ""
	}
	planner := install.NewPlanner(
		s.registry,
		install.NewFSInstaller(layout, s.store, c.Logger),
		s.snapshot,
		nil,
		install.Options{
			InstallDir:         s.cfg.InstallDir,
			Force:              flags.search.force,
			IgnoreDependencies: flags.search.ignoreDependencies,
			Development:        flags.search.developmentMode() != resolve.DevNone,
			Wrappers:           layout.BinDir != "",
			Logger:             c.Logger,
		},
	)

	prog := newProgress(c.Logger)
	done, err := planner.Execute(ctx, res)
	if err != nil {
		if len(done) > 0 {
			out.warning("Installed %d of %d packages before failing", len(done), len(res.Plan))
		}
		return err
	}
	prog.done(fmt.Sprintf("Installed %d packages", len(done)))
	printInstalled(done)
	return nil
}

// resolveWithSpinner runs a resolution behind a spinner.
func (c *CLI) resolveWithSpinner(ctx context.Context, r *resolve.Resolver, reqs []resolve.Request) (*resolve.Result, error) {
	spinner := newSpinnerWithContext(ctx, "Resolving dependencies...")
	spinner.Start()
	res, err := r.Resolve(ctx, reqs...)
	if err != nil {
		spinner.Stop()
		return nil, err
	}
	spinner.StopWithSuccess(fmt.Sprintf("Resolved %d packages", len(res.Plan)))
	return res, nil
}

func printAdvisory(res *resolve.Result) {
	for _, err := range res.Errors {
		out.warning("%v", err)
	}
}

func printInstalled(done []*spec.Spec) {
	if len(done) == 0 {
		out.info("Nothing to install")
		return
	}
	for _, s := range done {
		out.detail("%s", s.FullName())
	}
}
