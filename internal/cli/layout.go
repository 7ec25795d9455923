package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kubetopo/pkg/diagram"
	"github.com/matzehuels/kubetopo/pkg/topology"
)

// layoutCommand creates the layout command for positioning a topology graph.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output string
		quiet  bool
		flags  runFlags
	)

	cmd := &cobra.Command{
		Use:   "layout [graph.json | -]",
		Short: "Compute positions for a topology graph",
		Long: `Compute positions for a topology graph.

The input is a JSON document with "nodes" (uid, type, name, namespace and an
optional "dragged" position) and "edges" (source, target). The output is a
diagram (<input>.layout.json, or stdin.layout.json when reading "-") that the
render command turns into SVG, PNG or PDF.

Results are cached by graph content and layout config; use --refresh to
recompute or --no-cache to bypass the cache.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], output, quiet, &flags)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "do not print the section summary")
	flags.register(cmd)

	return cmd
}

// runLayout loads the graph, lays it out and writes the diagram.
func (c *CLI) runLayout(ctx context.Context, input, output string, quiet bool, flags *runFlags) error {
	logger := loggerFromContext(ctx)

	g, err := topology.ReadGraphFile(input)
	if err != nil {
		return fmt.Errorf("load graph %s: %w", input, err)
	}
	opts, err := flags.options(logger)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	runner, err := c.newRunner(ctx, flags)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(logger)
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Laying out %d nodes...", g.NodeCount()))
	spinner.Start()

	d, cacheHit, err := runner.LayoutWithCacheInfo(ctx, g, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.StopWithSuccess(fmt.Sprintf("Laid out %d sections", len(d.Sections)))
	prog.done("layout computed", "sections", len(d.Sections), "cached", cacheHit)

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		outputPath = derivedPath(input, ".layout.json")
	}
	if err := diagram.WriteFile(d, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printFile(outputPath)
	printStats(g.NodeCount(), g.EdgeCount(), len(d.Nodes), cacheHit)
	if !quiet {
		printSections(d)
	}
	printNewline()
	printNextStep("Render", appName+" render "+outputPath)

	return nil
}

// derivedPath swaps the extension of input for suffix, dropping a previous
// ".layout" so layouts of layouts do not stack suffixes.
func derivedPath(input, suffix string) string {
	if input == topology.Stdin {
		return "stdin" + suffix
	}
	base := strings.TrimSuffix(input, filepath.Ext(input))
	base = strings.TrimSuffix(base, ".layout")
	return base + suffix
}
