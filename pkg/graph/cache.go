package graph

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/cristofima/maf-graphrag-series/pkg/logger"

	"github.com/fsnotify/fsnotify"
)

// LoadFunc builds a Bundle. Load is the production implementation.
type LoadFunc func(ctx context.Context, opts LoadOptions) (*Bundle, error)

// Cache memoises the Bundle of one output directory for callers that serve
// many queries. Failed loads are not cached, so the next call retries.
type Cache struct {
	opts LoadOptions
	load LoadFunc

	mu     sync.Mutex
	bundle *Bundle
}

// NewCache creates a cache that loads with Load.
func NewCache(opts LoadOptions) *Cache {
	return NewCacheWithLoader(opts, Load)
}

// NewCacheWithLoader creates a cache that builds bundles with load.
func NewCacheWithLoader(opts LoadOptions, load LoadFunc) *Cache {
	return &Cache{opts: opts, load: load}
}

// Dir returns the output directory served by the cache.
func (c *Cache) Dir() string {
	return c.opts.Dir
}

// Get returns the cached bundle, loading it on first use or after Invalidate.
func (c *Cache) Get(ctx context.Context) (*Bundle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.bundle != nil {
		return c.bundle, nil
	}

	b, err := c.load(ctx, c.opts)
	if err != nil {
		return nil, err
	}
	c.bundle = b
	return b, nil
}

// Invalidate drops the cached bundle. Bundles already handed out stay valid.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.bundle = nil
	c.mu.Unlock()
}

// Watch invalidates the cache whenever a parquet artifact in the output
// directory is created, written, renamed or removed. It blocks until ctx is
// done.
func (c *Cache) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create artifact watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(c.opts.Dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", c.opts.Dir, err)
	}
	logger.Info("Watching graph artifacts", "dir", c.opts.Dir)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !isArtifactEvent(ev) {
				continue
			}
			logger.Debug("Graph artifact changed, invalidating cache", "file", ev.Name, "op", ev.Op.String())
			c.Invalidate()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Artifact watcher error", "err", err)
		}
	}
}

func isArtifactEvent(ev fsnotify.Event) bool {
	if filepath.Ext(ev.Name) != ArtifactExt {
		return false
	}
	return ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write) || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename)
}
