package artifact

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"fairFin/pkg/metrics"
)

// BundleLoader is the source a Cache fills from.
type BundleLoader interface {
	Load(ctx context.Context, version string) (*Bundle, error)
}

// Cache keeps loaded bundles for the life of the process. Loading happens
// outside the lock, so concurrent misses on one version may each load; the
// last one stored wins. Failed loads are not cached.
type Cache struct {
	loader BundleLoader

	mu      sync.RWMutex
	bundles map[string]*Bundle
}

func NewCache(loader BundleLoader) *Cache {
	return &Cache{loader: loader, bundles: make(map[string]*Bundle)}
}

func (c *Cache) Get(ctx context.Context, version string) (*Bundle, error) {
	c.mu.RLock()
	b, ok := c.bundles[version]
	c.mu.RUnlock()
	if ok {
		metrics.ArtifactCacheEvents.WithLabelValues("process", "hit").Inc()
		return b, nil
	}
	metrics.ArtifactCacheEvents.WithLabelValues("process", "miss").Inc()

	b, err := c.loader.Load(ctx, version)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.bundles[version] = b
	c.mu.Unlock()
	return b, nil
}

// Reload replaces the cached bundle for version with a fresh load. On
// failure the previous bundle stays in place.
func (c *Cache) Reload(ctx context.Context, version string) (*Bundle, error) {
	b, err := c.loader.Load(ctx, version)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.bundles[version] = b
	c.mu.Unlock()
	metrics.ArtifactCacheEvents.WithLabelValues("process", "reload").Inc()
	return b, nil
}

func (c *Cache) Invalidate(version string) {
	c.mu.Lock()
	delete(c.bundles, version)
	c.mu.Unlock()
	metrics.ArtifactCacheEvents.WithLabelValues("process", "invalidate").Inc()
}

// Loaded lists the bundles currently held, by version.
func (c *Cache) Loaded() []*Bundle {
	c.mu.RLock()
	out := make([]*Bundle, 0, len(c.bundles))
	for _, b := range c.bundles {
		out = append(out, b)
	}
	c.mu.RUnlock()

	slices.SortFunc(out, func(a, b *Bundle) int { return cmp.Compare(a.Version, b.Version) })
	return out
}
