package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kubetopo/pkg/cache"
)

// cacheCommand groups maintenance of the local file cache. Redis and
// MongoDB entries carry their own TTL and are not touched.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and clean the local layout cache",
		Long: `Inspect and clean the local layout cache in ~/.cache/kubetopo
($XDG_CACHE_HOME/kubetopo when set). Remote caches expire on their own.`,
	}
	cmd.AddCommand(
		c.cacheMaintainCommand("clear", "Remove all cached layouts and renders", (*cache.FileCache).Clear, "Cleared %d cached entries"),
		c.cacheMaintainCommand("prune", "Remove expired and unreadable entries", (*cache.FileCache).Prune, "Pruned %d stale entries"),
		c.cachePathCommand(),
	)
	return cmd
}

// cacheMaintainCommand builds a subcommand that runs op on the local cache
// and reports how many entries it removed.
func (c *CLI) cacheMaintainCommand(use, short string, op func(*cache.FileCache) (int, error), report string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := cacheDir()
			if err != nil {
				return fmt.Errorf("locate cache: %w", err)
			}
			if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
				printInfo("Cache is empty")
				return nil
			}

			fc, err := cache.NewFileCache(dir)
			if err != nil {
				return fmt.Errorf("open cache: %w", err)
			}
			n, err := op(fc)
			if err != nil {
				return fmt.Errorf("%s cache: %w", use, err)
			}
			printSuccess(report, n)
			printDetail("Directory: %s", fc.Dir())
			return nil
		},
	}
}

func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := cacheDir()
			if err != nil {
				return fmt.Errorf("locate cache: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}
