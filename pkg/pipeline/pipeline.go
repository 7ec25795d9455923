// Package pipeline provides the layout pipeline shared by the CLI and the
// API server.
//
// # Architecture
//
// The pipeline consists of two stages:
//
//  1. Layout: group, partition and place a topology graph, producing a
//     [diagram.Diagram]
//  2. Render: draw the diagram in the requested formats (SVG, PNG, PDF, JSON)
//
// Both stages are cached. The layout key hashes the graph and the effective
// layout configuration; the artifact key hashes the diagram and the render
// options.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, graph, pipeline.Options{
//	    Formats: []string{"svg"},
//	})
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	d, err := runner.Layout(ctx, graph, opts)
//	artifacts, err := runner.Render(ctx, d, opts)
package pipeline

import (
	"encoding/json"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/kubetopo/pkg/cache"
	"github.com/matzehuels/kubetopo/pkg/diagram"
	"github.com/matzehuels/kubetopo/pkg/errors"
	"github.com/matzehuels/kubetopo/pkg/layout"
	"github.com/matzehuels/kubetopo/pkg/topology"
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
}

// Force section primitives.
const (
	PrimitiveFDP  = layout.PrimitiveFDP
	PrimitiveGrid = layout.PrimitiveGrid
)

// DefaultPrimitive lays out connected components with Graphviz fdp.
const DefaultPrimitive = PrimitiveFDP

// DefaultScale is the PNG resolution multiplier.
const DefaultScale = 2.0

// DefaultMaxNodes bounds graphs accepted by the pipeline.
const DefaultMaxNodes = 20000

// Options contains all configuration for the layout pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Layout options
	Config    layout.Config `json:"config"`
	Primitive string        `json:"primitive,omitempty"` // "fdp" or "grid"
	MaxNodes  int           `json:"max_nodes,omitempty"`
	Refresh   bool          `json:"refresh,omitempty"`

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Detailed bool     `json:"detailed,omitempty"`
	Scale    float64  `json:"scale,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID identifies this run in logs and API responses.
	RunID string

	// GraphHash is the content hash of the input graph.
	GraphHash string

	// Diagram is the laid out graph.
	Diagram diagram.Diagram

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount    int
	EdgeCount    int
	Surviving    int // nodes left after pods and services were absorbed
	SectionCount int
	LayoutTime   time.Duration
	RenderTime   time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the diagram came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: svg, png, pdf, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidatePrimitive checks that a force primitive name is valid.
func ValidatePrimitive(name string) error {
	if name != PrimitiveFDP && name != PrimitiveGrid {
		return errors.New(errors.ErrCodeInvalidPrimitive,
			"invalid primitive: %q (must be one of: fdp, grid)", name)
	}
	return nil
}

// ValidateGraph checks a graph received from outside the process.
func ValidateGraph(g *topology.Graph, maxNodes int) error {
	if g == nil {
		return errors.New(errors.ErrCodeInvalidGraph, "graph is required")
	}
	if maxNodes > 0 && g.NodeCount() > maxNodes {
		return errors.New(errors.ErrCodeTooLarge, "graph has %d nodes (max %d)", g.NodeCount(), maxNodes)
	}
	for _, n := range g.Nodes {
		if err := errors.ValidateUID(n.UID); err != nil {
			return err
		}
		if err := errors.ValidateType(n.Type); err != nil {
			return err
		}
	}
	if err := g.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidGraph, err, "invalid graph")
	}
	return nil
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	o.Config.SetDefaults()
	if o.Primitive == "" {
		o.Primitive = DefaultPrimitive
	}
	if o.MaxNodes == 0 {
		o.MaxNodes = DefaultMaxNodes
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if err := o.Config.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid layout config")
	}
	return ValidatePrimitive(o.Primitive)
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	o.Formats = normalizeFormats(o.Formats)
	if o.Scale <= 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	return ValidateFormats(o.Formats)
}

// ValidateAndSetDefaults validates and sets defaults for the full pipeline.
func (o *Options) ValidateAndSetDefaults() error {
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	return o.ValidateForRender()
}

// ConfigHash identifies the effective layout configuration.
func (o *Options) ConfigHash() string {
	data, _ := json.Marshal(o.Config)
	return cache.Hash(data)
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		ConfigHash: o.ConfigHash(),
		Primitive:  o.Primitive,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	opts := cache.ArtifactKeyOpts{Format: format}
	if format != FormatJSON {
		opts.Detailed = o.Detailed
	}
	if format == FormatPNG {
		opts.Scale = o.Scale
	}
	return opts
}

func normalizeFormats(formats []string) []string {
	out := make([]string, 0, len(formats))
	for _, f := range formats {
		f = strings.ToLower(strings.TrimSpace(f))
		if f != "" && !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out
}
