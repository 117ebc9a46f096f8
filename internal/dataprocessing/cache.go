package dataprocessing

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Source yields the normalized views of one source file.
type Source interface {
	Dataset(ctx context.Context) (*Dataset, error)
}

// FileSource re-reads the file on every call.
type FileSource struct {
	Path   string
	Loader *Loader
}

// Dataset loads the file.
func (s FileSource) Dataset(ctx context.Context) (*Dataset, error) {
	return s.Loader.Load(ctx, s.Path)
}

// fileStamp identifies one version of the source file.
type fileStamp struct {
	modTime time.Time
	size    int64
}

type snapshot struct {
	stamp   fileStamp
	dataset *Dataset
}

// Cache keeps the last loaded Dataset of a file and reloads it when the
// file's modification time or size changes. Cached views are shared and
// must not be modified by callers.
type Cache struct {
	path   string
	loader *Loader
	logger *slog.Logger
	group  singleflight.Group

	mu      sync.RWMutex
	current *snapshot

	// OnHit and OnMiss are optional observers for cache metrics.
	OnHit  func(ctx context.Context)
	OnMiss func(ctx context.Context)
}

// NewCache creates a cache for the file at path.
func NewCache(path string, loader *Loader, logger *slog.Logger) *Cache {
	if loader == nil {
		loader = NewLoader(logger)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		path:   path,
		loader: loader,
		logger: logger.With(slog.String("component", "dataset_cache")),
	}
}

// Dataset returns the cached dataset, reloading it if the file changed.
func (c *Cache) Dataset(ctx context.Context) (*Dataset, error) {
	info, err := os.Stat(c.path)
	if err != nil {
		return nil, sourceError(c.path, "stat", err)
	}
	stamp := fileStamp{modTime: info.ModTime(), size: info.Size()}

	c.mu.RLock()
	snap := c.current
	c.mu.RUnlock()
	if snap != nil && snap.stamp == stamp {
		if c.OnHit != nil {
			c.OnHit(ctx)
		}
		return snap.dataset, nil
	}

	if c.OnMiss != nil {
		c.OnMiss(ctx)
	}

	// Callers that join an in-flight reload share its result and its log line.
	v, err, _ := c.group.Do(c.path, func() (interface{}, error) {
		ds, err := c.loader.Load(ctx, c.path)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.current = &snapshot{stamp: stamp, dataset: ds}
		c.mu.Unlock()

		c.logger.InfoContext(ctx, "dataset reloaded",
			slog.String("path", c.path),
			slog.Int64("size", stamp.size),
			slog.Time("mod_time", stamp.modTime))
		return ds, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Dataset), nil
}

// Invalidate drops the cached dataset.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.current = nil
	c.mu.Unlock()
}
