package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fairFin/business/artifact"
	"fairFin/pkg/logger"
	"fairFin/pkg/metrics"

	"github.com/redis/go-redis/v9"
)

// ArtifactCache is a read-through Redis tier in front of another Store.
// Redis failures are logged and fall through to the backing store.
type ArtifactCache struct {
	client  *redis.Client
	backing artifact.Store
	ttl     time.Duration
}

var _ artifact.Store = (*ArtifactCache)(nil)

func NewArtifactCache(client *redis.Client, backing artifact.Store, ttl time.Duration) *ArtifactCache {
	return &ArtifactCache{
		client:  client,
		backing: backing,
		ttl:     ttl,
	}
}

func artifactKey(version, name string) string {
	// key format: "artifact:{version}:{name}"
	return fmt.Sprintf("artifact:%s:%s", version, name)
}

func (c *ArtifactCache) Get(ctx context.Context, version, name string) ([]byte, error) {
	key := artifactKey(version, name)

	val, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		metrics.ArtifactCacheEvents.WithLabelValues("redis", "hit").Inc()
		return val, nil
	case errors.Is(err, redis.Nil):
		metrics.ArtifactCacheEvents.WithLabelValues("redis", "miss").Inc()
	default:
		metrics.ArtifactCacheEvents.WithLabelValues("redis", "error").Inc()
		logger.FromContext(ctx).Warn("artifact cache read failed", "key", key, "error", err)
	}

	data, err := c.backing.Get(ctx, version, name)
	if err != nil {
		return nil, err
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		logger.FromContext(ctx).Warn("artifact cache write failed", "key", key, "error", err)
	}
	return data, nil
}

// Put writes to the backing store and drops the cached copy.
func (c *ArtifactCache) Put(ctx context.Context, version, name string, data []byte) error {
	if err := c.backing.Put(ctx, version, name, data); err != nil {
		return err
	}
	if err := c.client.Del(ctx, artifactKey(version, name)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cached artifact: %w", err)
	}
	return nil
}

// Invalidate drops every cached artifact of version.
func (c *ArtifactCache) Invalidate(ctx context.Context, version string) error {
	keys := make([]string, len(artifact.Names))
	for i, name := range artifact.Names {
		keys[i] = artifactKey(version, name)
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to invalidate artifacts: %w", err)
	}
	metrics.ArtifactCacheEvents.WithLabelValues("redis", "invalidate").Inc()
	return nil
}
