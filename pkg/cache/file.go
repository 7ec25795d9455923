package cache

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"time"
)

// FileCache stores entries as JSON files under dir/<kind>/<xx>/, where kind
// is the key's KeyType and xx the first byte of the key digest. Writes go
// through a temporary file and a rename, so concurrent CLI runs and a local
// server can share a directory.
type FileCache struct {
	dir string
}

// NewFileCache opens dir, creating it if needed.
func NewFileCache(dir string) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileCache{dir: dir}, nil
}

// Dir returns the cache directory.
func (c *FileCache) Dir() string { return c.dir }

type fileEntry struct {
	Key     string    `json:"key"`
	Data    []byte    `json:"data"`
	Expires time.Time `json:"expires,omitzero"`
}

func (e fileEntry) expired(now time.Time) bool {
	return !e.Expires.IsZero() && now.After(e.Expires)
}

func (c *FileCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	path := c.path(key)
	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, false, nil
	case err != nil:
		return nil, false, err
	}

	var e fileEntry
	if json.Unmarshal(raw, &e) != nil || e.Key != key || e.expired(time.Now()) {
		// Corrupt, colliding or stale: treat as a miss and drop it.
		_ = os.Remove(path)
		return nil, false, nil
	}
	return e.Data, true, nil
}

func (c *FileCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	e := fileEntry{Key: key, Data: data}
	if ttl > 0 {
		e.Expires = time.Now().Add(ttl)
	}
	raw, err := json.Marshal(e)
	if err != nil {
		return err
	}

	path := c.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (c *FileCache) Delete(ctx context.Context, key string) error {
	if err := os.Remove(c.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (c *FileCache) Close() error { return nil }

// Clear removes every entry and the directories holding them, returning the
// number of entries removed. Entries that cannot be removed are skipped.
func (c *FileCache) Clear() (int, error) {
	var (
		removed int
		dirs    []string
	)
	err := filepath.WalkDir(c.dir, func(path string, d fs.DirEntry, err error) error {
		switch {
		case err != nil || path == c.dir:
			return nil
		case d.IsDir():
			dirs = append(dirs, path)
		case filepath.Ext(path) == ".json":
			if os.Remove(path) == nil {
				removed++
			}
		}
		return nil
	})
	if err != nil {
		return removed, err
	}

	// Deepest first so shard directories go before their kind directory.
	slices.Reverse(dirs)
	for _, d := range dirs {
		_ = os.Remove(d)
	}
	return removed, nil
}

// Prune removes expired and unreadable entries, returning how many were
// removed.
func (c *FileCache) Prune() (int, error) {
	now := time.Now()
	removed := 0
	err := filepath.WalkDir(c.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		var e fileEntry
		if json.Unmarshal(raw, &e) == nil && !e.expired(now) {
			return nil
		}
		if os.Remove(path) == nil {
			removed++
		}
		return nil
	})
	return removed, err
}

func (c *FileCache) path(key string) string {
	digest := Hash([]byte(key))
	return filepath.Join(c.dir, KeyType(key), digest[:2], digest[2:]+".json")
}

var _ Cache = (*FileCache)(nil)
