package cache

import (
	"context"
	"time"
)

// Default lifetimes of cached entries.
const (
	LayoutTTL   = 24 * time.Hour
	ArtifactTTL = 7 * 24 * time.Hour
)

// Cache is a byte store with per-entry expiry. A miss is (nil, false, nil);
// errors are reserved for backend failures.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// LayoutKeyOpts are the inputs besides the graph that change a layout.
type LayoutKeyOpts struct {
	// ConfigHash identifies the effective layout configuration.
	ConfigHash string `json:"config"`

	// Primitive names the force layout primitive ("fdp", "grid").
	Primitive string `json:"primitive"`
}

// ArtifactKeyOpts are the inputs besides the layout that change a rendering.
type ArtifactKeyOpts struct {
	Format   string  `json:"format"`
	Detailed bool    `json:"detailed,omitempty"`
	Scale    float64 `json:"scale,omitempty"`
}

// NewNullCache returns a cache that stores nothing. Every Get misses.
func NewNullCache() Cache {
	return nopCache{}
}

type nopCache struct{}

func (nopCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (nopCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (nopCache) Delete(context.Context, string) error                     { return nil }
func (nopCache) Close() error                                             { return nil }
