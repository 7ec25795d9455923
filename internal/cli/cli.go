// Package cli implements the kubetopo command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/kubetopo/pkg/buildinfo"
	"github.com/matzehuels/kubetopo/pkg/cache"
	"github.com/matzehuels/kubetopo/pkg/errors"
	"github.com/matzehuels/kubetopo/pkg/layout"
	"github.com/matzehuels/kubetopo/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "kubetopo"

	// envCache selects the cache backend when --cache is not given.
	envCache = "KUBETOPO_CACHE"

	// envCacheNamespace scopes cache keys when --cache-namespace is not given.
	envCacheNamespace = "KUBETOPO_CACHE_NAMESPACE"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance logging to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
// The persistent --verbose and --log-format flags apply to every subcommand.
func (c *CLI) RootCommand() *cobra.Command {
	var (
		verbose   bool
		logFormat string
	)

	root := &cobra.Command{
		Use:   appName,
		Short: "kubetopo lays out Kubernetes topology graphs",
		Long: `kubetopo turns a Kubernetes topology graph (hosts, services, workloads, pods,
containers) into a positioned diagram. Pods fold into their controllers,
services into the workloads they front, connected parts are laid out with
Graphviz fdp and everything else is tiled on a grid.`,
		Version:      buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				c.SetLogLevel(LogDebug)
			}
			if err := setLogFormat(c.Logger, logFormat); err != nil {
				return err
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format: text, json, logfmt")
	completeValues(root, "log-format", "text", "json", "logfmt")

	root.AddCommand(
		c.layoutCommand(),
		c.renderCommand(),
		c.serveCommand(),
		c.cacheCommand(),
		c.completionCommand(),
	)
	return root
}

// =============================================================================
// Shared Flags
// =============================================================================

// runFlags are the flags every command that runs the pipeline accepts.
type runFlags struct {
	configPath string
	cacheURL   string
	namespace  string
	noCache    bool
	opts       pipeline.Options
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.configPath, "config", "c", "", "layout config file (TOML)")
	cmd.Flags().StringVar(&f.cacheURL, "cache", "", "cache location: directory, redis://, mongodb:// (default: $"+envCache+" or ~/.cache/"+appName+")")
	cmd.Flags().StringVar(&f.namespace, "cache-namespace", "", "prefix for cache keys when sharing a backend (default: $"+envCacheNamespace+")")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVar(&f.opts.Primitive, "primitive", pipeline.DefaultPrimitive, "layout primitive for connected parts: fdp, grid")
	cmd.Flags().IntVar(&f.opts.MaxNodes, "max-nodes", pipeline.DefaultMaxNodes, "reject graphs with more nodes")
	cmd.Flags().BoolVar(&f.opts.Refresh, "refresh", false, "recompute even when a cached layout exists")
	registerRunCompletions(cmd)
}

// options returns the pipeline options with the config file applied.
func (f *runFlags) options(logger *log.Logger) (pipeline.Options, error) {
	opts := f.opts
	if f.configPath != "" {
		cfg, err := layout.LoadConfig(f.configPath)
		if err != nil {
			return opts, err
		}
		opts.Config = cfg
	}
	opts.Logger = logger
	return opts, nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner backed by the selected cache.
func (c *CLI) newRunner(ctx context.Context, f *runFlags) (*pipeline.Runner, error) {
	cc, err := openCache(ctx, f)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cc, cacheKeyer(f), c.Logger), nil
}

// cacheKeyer scopes keys by --cache-namespace or its environment variable.
func cacheKeyer(f *runFlags) cache.Keyer {
	ns := f.namespace
	if ns == "" {
		ns = os.Getenv(envCacheNamespace)
	}
	return cache.NewNamespacedKeyer(ns)
}

// openCache resolves --no-cache, --cache, the environment and the default
// directory, in that order.
func openCache(ctx context.Context, f *runFlags) (cache.Cache, error) {
	if f.noCache {
		return cache.NewNullCache(), nil
	}
	location := f.cacheURL
	if location == "" {
		location = os.Getenv(envCache)
	}
	if location == "" {
		dir, err := cacheDir()
		if err != nil {
			printWarning("No cache directory (%v), caching disabled", err)
			return cache.NewNullCache(), nil
		}
		location = dir
	}
	c, err := cache.Open(ctx, location)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeCacheUnavailable, err, "open cache")
	}
	return c, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/kubetopo/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	return strings.Split(s, ",")
}
