package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kubetopo/pkg/diagram"
	"github.com/matzehuels/kubetopo/pkg/pipeline"
	"github.com/matzehuels/kubetopo/pkg/topology"
)

// renderCommand creates the render command for drawing diagrams.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		output     string
		formatsStr string
		flags      runFlags
	)

	cmd := &cobra.Command{
		Use:   "render [layout.json | graph.json | -]",
		Short: "Render a diagram to SVG, PNG or PDF",
		Long: `Render a diagram to SVG, PNG or PDF.

The input is either a diagram written by the layout command or a raw topology
graph, which is laid out first. Nodes are drawn at their computed positions
with one shape and color per resource type.

PNG and PDF conversion requires rsvg-convert on the PATH.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.opts.Formats = parseFormats(formatsStr)
			return c.runRender(cmd.Context(), args[0], output, &flags)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, pdf, json (comma-separated)")
	cmd.Flags().BoolVar(&flags.opts.Detailed, "detailed", false, "add qualified names and pod counts to node labels")
	cmd.Flags().Float64Var(&flags.opts.Scale, "scale", pipeline.DefaultScale, "PNG resolution multiplier")
	flags.register(cmd)
	completeValues(cmd, "format", pipeline.FormatSVG, pipeline.FormatPNG, pipeline.FormatPDF, pipeline.FormatJSON)

	return cmd
}

// runRender loads the input, lays it out when needed and writes one file
// per format.
func (c *CLI) runRender(ctx context.Context, input, output string, flags *runFlags) error {
	logger := loggerFromContext(ctx)

	opts, err := flags.options(logger)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := opts.ValidateForRender(); err != nil {
		return err
	}

	d, g, err := readInput(input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, flags)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Rendering...")
	spinner.Start()

	layoutHit := true
	if g != nil {
		d, layoutHit, err = runner.LayoutWithCacheInfo(ctx, g, opts)
		if err != nil {
			spinner.StopWithError("Layout failed")
			return fmt.Errorf("compute layout: %w", err)
		}
	}

	artifacts, renderHit, err := runner.RenderWithCacheInfo(ctx, d, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return fmt.Errorf("render: %w", err)
	}
	spinner.Stop()

	paths, err := writeArtifacts(artifacts, opts.Formats, input, output)
	if err != nil {
		return err
	}

	printSuccess("Rendered %d file(s)", len(paths))
	for _, p := range paths {
		printFile(p)
	}
	printStats(len(d.Nodes), len(d.Edges), len(d.Nodes), layoutHit && renderHit)
	return nil
}

// readInput reads a diagram or, when the file has no canvas size, a
// topology graph. Exactly one of the results is set on success.
func readInput(path string) (diagram.Diagram, *topology.Graph, error) {
	var (
		data []byte
		err  error
	)
	if path == topology.Stdin {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return diagram.Diagram{}, nil, fmt.Errorf("read %s: %w", path, err)
	}

	var probe struct {
		Width *float64 `json:"width"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return diagram.Diagram{}, nil, fmt.Errorf("parse %s: %w", path, err)
	}

	if probe.Width != nil {
		d, err := diagram.Unmarshal(data)
		if err != nil {
			return diagram.Diagram{}, nil, fmt.Errorf("load diagram %s: %w", path, err)
		}
		return d, nil, nil
	}
	g, err := topology.UnmarshalGraph(data)
	if err != nil {
		return diagram.Diagram{}, nil, fmt.Errorf("load graph %s: %w", path, err)
	}
	return diagram.Diagram{}, g, nil
}

// writeArtifacts writes each rendered format and returns the paths in
// format order. With one format, output names the file; with several it is
// the base path the extensions are appended to.
func writeArtifacts(artifacts map[string][]byte, formats []string, input, output string) ([]string, error) {
	paths := make([]string, 0, len(formats))
	for _, format := range formats {
		data, ok := artifacts[format]
		if !ok {
			return paths, fmt.Errorf("renderer produced no %s output", format)
		}
		path := artifactPath(input, output, format, len(formats) > 1)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func artifactPath(input, output, format string, multiple bool) string {
	switch {
	case output == "" && format == pipeline.FormatJSON:
		return derivedPath(input, ".layout.json")
	case output == "":
		return derivedPath(input, "."+format)
	case multiple:
		return output + "." + format
	default:
		return output
	}
}
