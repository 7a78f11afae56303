package datastore

import (
	"context"

	"aqdash/internal/dataset"
)

// Source is a Cache bound to one CSV path.
type Source struct {
	cache *Cache
	path  string
}

func (c *Cache) Source(path string) Source {
	return Source{cache: c, path: path}
}

func (s Source) Path() string { return s.path }

// Dataset returns the cleaned dataset, loading it on first use.
func (s Source) Dataset(ctx context.Context) (dataset.Dataset, error) {
	return s.cache.Get(ctx, s.path)
}

// Reset drops the cached copy so the next call reloads from disk.
func (s Source) Reset() { s.cache.Reset(s.path) }
