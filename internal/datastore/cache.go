// Package datastore keeps the cleaned dataset in memory, keyed by file path.
package datastore

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"aqdash/internal/dataset"
)

// LoadFunc loads and cleans the dataset stored at path.
type LoadFunc func(path string) (dataset.Dataset, dataset.Report, error)

// LoadObserver is told about every load attempt.
type LoadObserver interface {
	ObserveLoad(path string, d time.Duration, rows int, err error)
}

// Cache memoizes one cleaned dataset per path until Reset.
// Failed loads are not cached.
type Cache struct {
	load     LoadFunc
	logger   *slog.Logger
	observer LoadObserver

	mu      sync.RWMutex
	entries map[string]dataset.Dataset
	gens    map[string]uint64 // per-key, bumped by Reset
	epoch   uint64            // bumped by ResetAll
	group   singleflight.Group
}

// Option configures a Cache.
type Option func(*Cache)

func WithLoadFunc(fn LoadFunc) Option    { return func(c *Cache) { c.load = fn } }
func WithLogger(l *slog.Logger) Option   { return func(c *Cache) { c.logger = l } }
func WithObserver(o LoadObserver) Option { return func(c *Cache) { c.observer = o } }

func NewCache(opts ...Option) *Cache {
	c := &Cache{
		logger:  slog.Default(),
		entries: make(map[string]dataset.Dataset),
		gens:    make(map[string]uint64),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.load == nil {
		c.load = c.loadAndClean
	}
	return c
}

// Get returns the cached dataset for path, loading it on first use.
// Concurrent callers for the same path share one load.
func (c *Cache) Get(ctx context.Context, path string) (dataset.Dataset, error) {
	key := cacheKey(path)

	c.mu.RLock()
	ds, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		return ds, nil
	}

	ch := c.group.DoChan(key, func() (any, error) {
		c.mu.RLock()
		ds, ok := c.entries[key]
		gen, epoch := c.gens[key], c.epoch
		c.mu.RUnlock()
		if ok {
			return ds, nil
		}

		start := time.Now()
		ds, rep, err := c.load(path)
		if c.observer != nil {
			c.observer.ObserveLoad(key, time.Since(start), ds.Len(), err)
		}
		if err != nil {
			c.logger.Error("dataset load failed", "path", path, "error", err)
			return dataset.Dataset{}, err
		}
		c.logger.Info("dataset loaded",
			"path", path,
			"report", rep,
			"duration_ms", time.Since(start).Milliseconds(),
		)

		c.mu.Lock()
		// A Reset during the load means ds may be stale.
		if c.gens[key] == gen && c.epoch == epoch {
			c.entries[key] = ds
		}
		c.mu.Unlock()
		return ds, nil
	})

	select {
	case <-ctx.Done():
		return dataset.Dataset{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return dataset.Dataset{}, res.Err
		}
		return res.Val.(dataset.Dataset), nil
	}
}

// Loaded reports whether path currently has a cached dataset.
func (c *Cache) Loaded(path string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.entries[cacheKey(path)]
	return ok
}

// Reset drops the cached dataset for path; the next Get reloads it.
func (c *Cache) Reset(path string) {
	key := cacheKey(path)
	c.mu.Lock()
	delete(c.entries, key)
	c.gens[key]++
	c.mu.Unlock()
	c.group.Forget(key)
	c.logger.Debug("dataset cache reset", "path", path)
}

// ResetAll drops every cached dataset.
func (c *Cache) ResetAll() {
	c.mu.Lock()
	for key := range c.entries {
		c.group.Forget(key)
	}
	c.entries = make(map[string]dataset.Dataset)
	c.epoch++
	c.mu.Unlock()
}

func (c *Cache) loadAndClean(path string) (dataset.Dataset, dataset.Report, error) {
	raw, err := dataset.Load(path)
	if err != nil {
		return dataset.Dataset{}, dataset.Report{}, err
	}
	ds, rep := dataset.Clean(raw, dataset.WithLogger(c.logger))
	for _, g := range rep.EmptyGroups {
		c.logger.Warn("column left missing for city", "city", g.City, "column", g.Column)
	}
	return ds, rep, nil
}

func cacheKey(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}
