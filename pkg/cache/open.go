package cache

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/matzehuels/kubetopo/pkg/observability"
)

// Open creates a cache from a location string:
//
//	""  or "none"                   no caching
//	"/some/dir" or "file:///dir"    FileCache
//	"redis://host:6379/0"           RedisCache
//	"mongodb://host:27017/db"       MongoCache (database from the path)
//
// The returned cache reports hits, misses and writes to the observability
// cache hooks.
func Open(ctx context.Context, location string) (Cache, error) {
	c, err := open(ctx, location)
	if err != nil {
		return nil, err
	}
	return WithHooks(c), nil
}

func open(ctx context.Context, location string) (Cache, error) {
	switch {
	case location == "" || location == "none":
		return NewNullCache(), nil
	case !strings.Contains(location, "://"):
		return openFile(location)
	}

	u, err := url.Parse(location)
	if err != nil {
		return nil, fmt.Errorf("parse cache location: %w", err)
	}
	switch u.Scheme {
	case "file":
		return openFile(u.Path)
	case "redis", "rediss":
		return NewRedisCache(ctx, location)
	case "mongodb", "mongodb+srv":
		return NewMongoCache(ctx, location, strings.Trim(u.Path, "/"), "")
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, u.Scheme)
	}
}

func openFile(dir string) (Cache, error) {
	fc, err := NewFileCache(dir)
	if err != nil {
		return nil, err
	}
	return fc, nil
}

// hooked reports cache traffic to observability.Cache().
type hooked struct {
	Cache
}

// WithHooks wraps c so every Get and Set is reported to the registered
// observability cache hooks.
func WithHooks(c Cache) Cache {
	if _, ok := c.(hooked); ok {
		return c
	}
	return hooked{c}
}

func (h hooked) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok, err := h.Cache.Get(ctx, key)
	if err != nil {
		return nil, false, err
	}
	if ok {
		observability.Cache().OnCacheHit(ctx, KeyType(key))
	} else {
		observability.Cache().OnCacheMiss(ctx, KeyType(key))
	}
	return data, ok, nil
}

func (h hooked) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := h.Cache.Set(ctx, key, data, ttl); err != nil {
		return err
	}
	observability.Cache().OnCacheSet(ctx, KeyType(key), len(data))
	return nil
}
