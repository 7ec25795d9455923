package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/kubetopo/pkg/cache"
	"github.com/matzehuels/kubetopo/pkg/diagram"
	"github.com/matzehuels/kubetopo/pkg/errors"
	"github.com/matzehuels/kubetopo/pkg/topology"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it so caching behaves the same everywhere.
//
// The Runner is stateless except for the cache and logger; it does not keep
// pipeline results. Multiple goroutines can safely share one Runner.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// A nil keyer means cache.NewDefaultKeyer.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs layout and render with caching.
func (r *Runner) Execute(ctx context.Context, g *topology.Graph, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{RunID: uuid.NewString()}
	logger := opts.Logger.With("run", result.RunID)
	if err := ValidateGraph(g, opts.MaxNodes); err != nil {
		return nil, err
	}
	result.GraphHash = graphHash(g)
	result.Stats.NodeCount = g.NodeCount()
	result.Stats.EdgeCount = g.EdgeCount()

	layoutStart := time.Now()
	d, layoutHit, err := r.LayoutWithCacheInfo(ctx, g, opts)
	if err != nil {
		return nil, err
	}
	result.Diagram = d
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.Surviving = len(d.Nodes)
	result.Stats.SectionCount = len(d.Sections)
	result.CacheInfo.LayoutHit = layoutHit

	logger.Info("computed layout",
		"nodes", result.Stats.NodeCount,
		"surviving", result.Stats.Surviving,
		"sections", result.Stats.SectionCount,
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)

	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, d, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// LayoutWithCacheInfo lays out g with caching and reports whether the
// diagram came from cache. Refresh skips the lookup but still stores the
// fresh diagram.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, g *topology.Graph, opts Options) (diagram.Diagram, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return diagram.Diagram{}, false, err
	}
	if err := ValidateGraph(g, opts.MaxNodes); err != nil {
		return diagram.Diagram{}, false, err
	}

	cacheKey := r.Keyer.LayoutKey(graphHash(g), opts.LayoutKeyOpts())

	if !opts.Refresh {
		data, hit, err := r.Cache.Get(ctx, cacheKey)
		switch {
		case err != nil:
			opts.Logger.Warn("layout cache lookup failed", "err", err)
		case hit:
			if cached, err := diagram.Unmarshal(data); err == nil {
				return cached, true, nil
			}
			// Unreadable entries are recomputed and overwritten.
		}
	}

	d, err := GenerateLayout(ctx, g, opts)
	if err != nil {
		return diagram.Diagram{}, false, err
	}

	if data, err := diagram.Marshal(d); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.LayoutTTL); err != nil {
			opts.Logger.Warn("layout cache write failed", "err", err)
		}
	}
	return d, false, nil
}

// Layout is LayoutWithCacheInfo without the cache hit info.
func (r *Runner) Layout(ctx context.Context, g *topology.Graph, opts Options) (diagram.Diagram, error) {
	d, _, err := r.LayoutWithCacheInfo(ctx, g, opts)
	return d, err
}

// RenderWithCacheInfo renders d with caching and reports whether every
// artifact came from cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, d diagram.Diagram, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	data, err := diagram.Marshal(d)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "serialize diagram for cache key")
	}
	diagramHash := cache.Hash(data)

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(diagramHash, opts.ArtifactKeyOpts(format))
		data, hit, err := r.Cache.Get(ctx, key)
		if err != nil || !hit {
			break
		}
		artifacts[format] = data
	}
	if len(artifacts) == len(opts.Formats) {
		return artifacts, true, nil
	}

	rendered, err := RenderFromDiagram(ctx, d, opts)
	if err != nil {
		return nil, false, err
	}
	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(diagramHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, cache.ArtifactTTL); err != nil {
			opts.Logger.Warn("artifact cache write failed", "format", format, "err", err)
		}
	}
	return rendered, false, nil
}

// Render is RenderWithCacheInfo without the cache hit info.
func (r *Runner) Render(ctx context.Context, d diagram.Diagram, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, d, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func graphHash(g *topology.Graph) string {
	data, _ := topology.MarshalGraph(g)
	return cache.Hash(data)
}
