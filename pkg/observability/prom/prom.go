// Package prom implements the observability hooks on top of Prometheus.
//
// Register once at startup and expose the registry over HTTP:
//
//	observability.Register(prom.New(prometheus.DefaultRegisterer))
//	http.Handle("/metrics", promhttp.Handler())
package prom

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/matzehuels/kubetopo/pkg/observability"
)

const namespace = "kubetopo"

// Hooks records layout, cache and HTTP events as Prometheus metrics.
type Hooks struct {
	layouts       *prometheus.HistogramVec
	sections      *prometheus.HistogramVec
	sectionNodes  *prometheus.HistogramVec
	layoutNodes   prometheus.Histogram
	cacheLookups  *prometheus.CounterVec
	cacheBytes    *prometheus.CounterVec
	httpDurations *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
// It panics if a collector is already registered, like prometheus.MustRegister.
func New(reg prometheus.Registerer) *Hooks {
	h := &Hooks{
		layouts: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "layout",
			Name:      "duration_seconds",
			Help:      "Time from plan to final position writeback",
		}, []string{"result"}),
		sections: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "layout",
			Name:      "section_duration_seconds",
			Help:      "Layout primitive run time per section",
		}, []string{"kind", "result"}),
		sectionNodes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "layout",
			Name:      "section_nodes",
			Help:      "Number of nodes per laid out section",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}, []string{"kind"}),
		layoutNodes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "layout",
			Name:      "nodes",
			Help:      "Number of input nodes per layout pass",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Cache lookups by key type and outcome",
		}, []string{"key_type", "outcome"}),
		cacheBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "written_bytes_total",
			Help:      "Bytes written to the cache",
		}, []string{"key_type"}),
		httpDurations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "server",
			Name:      "http_handled_seconds",
			Help:      "Handled HTTP request latency",
		}, []string{"method", "route", "code"}),
	}
	reg.MustRegister(h.layouts, h.sections, h.sectionNodes, h.layoutNodes,
		h.cacheLookups, h.cacheBytes, h.httpDurations)
	return h
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (h *Hooks) OnLayoutStart(_ context.Context, nodeCount, _ int) {
	h.layoutNodes.Observe(float64(nodeCount))
}

func (h *Hooks) OnSectionComplete(_ context.Context, kind string, nodeCount int, d time.Duration, err error) {
	h.sections.WithLabelValues(kind, result(err)).Observe(d.Seconds())
	h.sectionNodes.WithLabelValues(kind).Observe(float64(nodeCount))
}

func (h *Hooks) OnLayoutComplete(_ context.Context, d time.Duration, err error) {
	h.layouts.WithLabelValues(result(err)).Observe(d.Seconds())
}

func (h *Hooks) OnCacheHit(_ context.Context, keyType string) {
	h.cacheLookups.WithLabelValues(keyType, "hit").Inc()
}

func (h *Hooks) OnCacheMiss(_ context.Context, keyType string) {
	h.cacheLookups.WithLabelValues(keyType, "miss").Inc()
}

func (h *Hooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (h *Hooks) OnRequest(_ context.Context, method, route string, code int, d time.Duration) {
	h.httpDurations.WithLabelValues(method, route, strconv.Itoa(code)).Observe(d.Seconds())
}

var (
	_ observability.LayoutHooks = (*Hooks)(nil)
	_ observability.CacheHooks  = (*Hooks)(nil)
	_ observability.HTTPHooks   = (*Hooks)(nil)
)
