package pipeline

import (
	"context"
	stderrors "errors"

	"github.com/matzehuels/kubetopo/pkg/diagram"
	"github.com/matzehuels/kubetopo/pkg/errors"
	"github.com/matzehuels/kubetopo/pkg/render"
	"github.com/matzehuels/kubetopo/pkg/render/nodelink"
)

// RenderFromDiagram draws d in every requested format. The SVG is rendered
// once and converted for PNG and PDF.
func RenderFromDiagram(ctx context.Context, d diagram.Diagram, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	var svg []byte
	svgOnce := func() ([]byte, error) {
		if svg != nil {
			return svg, nil
		}
		dot := nodelink.ToDOT(d, nodelink.Options{
			Detailed: opts.Detailed,
			NodeSize: opts.Config.NodeSize,
		})
		out, err := nodelink.RenderSVG(ctx, dot)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "render svg")
		}
		svg = out
		return svg, nil
	}

	for _, format := range opts.Formats {
		switch format {
		case FormatJSON:
			data, err := diagram.Marshal(d)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode diagram")
			}
			artifacts[format] = data
		case FormatSVG:
			out, err := svgOnce()
			if err != nil {
				return nil, err
			}
			artifacts[format] = out
		case FormatPNG:
			out, err := svgOnce()
			if err != nil {
				return nil, err
			}
			png, err := render.ToPNG(ctx, out, opts.Scale)
			if err != nil {
				return nil, convertError(err, format)
			}
			artifacts[format] = png
		case FormatPDF:
			out, err := svgOnce()
			if err != nil {
				return nil, err
			}
			pdf, err := render.ToPDF(ctx, out)
			if err != nil {
				return nil, convertError(err, format)
			}
			artifacts[format] = pdf
		}
	}
	return artifacts, nil
}

// convertError marks a missing converter as unsupported rather than failed.
func convertError(err error, format string) error {
	if stderrors.Is(err, render.ErrNoConverter) {
		return errors.Wrap(errors.ErrCodeUnsupported, err, "%s output is not available on this host", format)
	}
	return errors.Wrap(errors.ErrCodeRenderFailed, err, "convert to %s", format)
}
