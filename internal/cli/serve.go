package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/stackpkg/pkg/localcache"
	"github.com/matzehuels/stackpkg/pkg/server"
)

// serveCommand creates the registry server command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr string
		dir  string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a directory of package archives as a registry",
		Long: `Serve publishes every .pkg archive in a directory using the registry
protocol, so other machines can install from it with --source.

By default the local package cache is served.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if dir == "" {
				cfg, err := c.loadConfig(ctx)
				if err != nil {
					return err
				}
				dir = cfg.PackageCacheDir()
			}
			out.info("Serving %s on %s", dir, addr)
			return server.New(localcache.New(dir, c.Logger), c.Logger).ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "l", ":8808", "listen address")
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "archive directory (default: package cache)")

	return cmd
}
