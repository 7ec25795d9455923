// Package observability lets kubetopo report layout passes, cache traffic
// and API requests without depending on a metrics backend.
//
// Libraries emit events through the accessors:
//
//	observability.Layout().OnLayoutStart(ctx, nodeCount, sectionCount)
//	observability.Cache().OnCacheHit(ctx, "layout")
//
// Until a binary registers something, every event goes to a no-op. The prom
// subpackage implements all three hook sets on Prometheus collectors:
//
//	observability.Register(prom.New(prometheus.DefaultRegisterer))
package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// LayoutHooks receives events from the topology layout engine.
type LayoutHooks interface {
	// OnLayoutStart fires once the plan is built, before any section runs.
	OnLayoutStart(ctx context.Context, nodeCount, sectionCount int)

	// OnSectionComplete fires when one section's layout primitive returns.
	OnSectionComplete(ctx context.Context, kind string, nodeCount int, duration time.Duration, err error)

	// OnLayoutComplete fires after all sections finished and positions were written.
	OnLayoutComplete(ctx context.Context, duration time.Duration, err error)
}

// CacheHooks receives cache lookups and writes, labelled by key kind
// ("layout", "artifact").
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks receives one event per request served by the layout API. route
// is the matched pattern, not the raw path.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, route string, statusCode int, duration time.Duration)
}

type nop struct{}

func (nop) OnLayoutStart(context.Context, int, int)                              {}
func (nop) OnSectionComplete(context.Context, string, int, time.Duration, error) {}
func (nop) OnLayoutComplete(context.Context, time.Duration, error)               {}
func (nop) OnCacheHit(context.Context, string)                                   {}
func (nop) OnCacheMiss(context.Context, string)                                  {}
func (nop) OnCacheSet(context.Context, string, int)                              {}
func (nop) OnRequest(context.Context, string, string, int, time.Duration)        {}

// registry is replaced wholesale on every change, so readers never lock.
type registry struct {
	layout LayoutHooks
	cache  CacheHooks
	http   HTTPHooks
}

var (
	defaults = registry{nop{}, nop{}, nop{}}
	current  atomic.Pointer[registry]
)

func init() {
	Reset()
}

func update(fn func(r *registry)) {
	for {
		old := current.Load()
		next := *old
		fn(&next)
		if current.CompareAndSwap(old, &next) {
			return
		}
	}
}

// Register installs h for every hook set it implements and reports whether
// it implemented any.
func Register(h any) bool {
	l, isLayout := h.(LayoutHooks)
	c, isCache := h.(CacheHooks)
	x, isHTTP := h.(HTTPHooks)
	update(func(r *registry) {
		if isLayout {
			r.layout = l
		}
		if isCache {
			r.cache = c
		}
		if isHTTP {
			r.http = x
		}
	})
	return isLayout || isCache || isHTTP
}

// SetLayoutHooks installs h. Nil keeps the current hooks.
func SetLayoutHooks(h LayoutHooks) {
	if h != nil {
		update(func(r *registry) { r.layout = h })
	}
}

// SetCacheHooks installs h. Nil keeps the current hooks.
func SetCacheHooks(h CacheHooks) {
	if h != nil {
		update(func(r *registry) { r.cache = h })
	}
}

// SetHTTPHooks installs h. Nil keeps the current hooks.
func SetHTTPHooks(h HTTPHooks) {
	if h != nil {
		update(func(r *registry) { r.http = h })
	}
}

func Layout() LayoutHooks { return current.Load().layout }
func Cache() CacheHooks   { return current.Load().cache }
func HTTP() HTTPHooks     { return current.Load().http }

// Reset restores the no-op hooks. Tests call it in t.Cleanup.
func Reset() {
	r := defaults
	current.Store(&r)
}
