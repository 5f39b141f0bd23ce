package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stackpkg/pkg/cache"
	"github.com/matzehuels/stackpkg/pkg/config"
)

// cacheCommand creates the metadata cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the registry metadata cache",
		Long: `Manage registry responses cached on disk.

Only the file backend keeps entries locally. With cache = "redis" the
entries expire in redis and these commands operate on the (unused) file
cache directory.`,
	}

	cmd.AddCommand(c.cacheInfoCommand())
	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// fileCache opens the file cache of the loaded configuration. It returns
// nil without error when the directory does not exist yet.
func (c *CLI) fileCache(cmd *cobra.Command) (*config.Config, *cache.FileCache, error) {
	cfg, err := c.loadConfig(cmd.Context())
	if err != nil {
		return nil, nil, err
	}
	dir := cfg.MetadataCacheDir()
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return cfg, nil, nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("open cache: %w", err)
	}
	return cfg, fc, nil
}

func (c *CLI) cacheInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show cache backend and usage",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, fc, err := c.fileCache(cmd)
			if err != nil {
				return err
			}
			var st cache.Stats
			if fc != nil {
				if st, err = fc.Stats(); err != nil {
					return err
				}
			}

			const width = 9
			out.keyValue("backend", string(cfg.Cache), width)
			out.keyValue("directory", cfg.MetadataCacheDir(), width)
			out.keyValue("ttl", cfg.CacheTTL.String(), width)
			out.keyValue("entries", fmt.Sprintf("%d (%d expired)", st.Entries, st.Expired), width)
			out.keyValue("size", formatBytes(st.Bytes), width)
			return nil
		},
	}
}

func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear all cached registry responses",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, fc, err := c.fileCache(cmd)
			if err != nil {
				return err
			}
			if fc == nil {
				out.info("Cache is empty")
				return nil
			}
			count, err := fc.Clear()
			if err != nil {
				return err
			}

			out.success("Cleared %d cached entries", count)
			out.detail("Directory: %s", fc.Dir())
			if cfg.Cache != config.CacheFile {
				out.detail("The %s backend expires entries on its own", cfg.Cache)
			}
			return nil
		},
	}
}

func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			out.line(cfg.MetadataCacheDir())
			return nil
		},
	}
}

// formatBytes renders n with a binary unit suffix.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
