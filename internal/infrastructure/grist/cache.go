package grist

import (
	"context"
	"encoding/json"
	"time"

	"github.com/isell/backend/internal/domain/risk"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const snapshotCacheKey = "grist:catalog_snapshot"

// SnapshotCache is a read-through redis cache in front of a CatalogSource.
// Repeated dry-run quotes reuse one snapshot for the TTL instead of hitting
// the Grist API per request. Redis failures are non-fatal: the cache falls
// through to the underlying source and logs at debug level.
type SnapshotCache struct {
	source risk.CatalogSource
	redis  *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewSnapshotCache wraps a catalog source with redis caching.
func NewSnapshotCache(source risk.CatalogSource, client *redis.Client, ttl time.Duration, logger *zap.Logger) *SnapshotCache {
	return &SnapshotCache{
		source: source,
		redis:  client,
		ttl:    ttl,
		logger: logger.Named("grist_cache"),
	}
}

// Snapshot returns the cached snapshot when fresh, fetching and storing a new
// one otherwise.
func (c *SnapshotCache) Snapshot(ctx context.Context) (*risk.CatalogSnapshot, error) {
	if cached := c.load(ctx); cached != nil {
		return cached, nil
	}

	snapshot, err := c.source.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	c.store(ctx, snapshot)
	return snapshot, nil
}

func (c *SnapshotCache) load(ctx context.Context) *risk.CatalogSnapshot {
	payload, err := c.redis.Get(ctx, snapshotCacheKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Debug("Snapshot cache read failed", zap.Error(err))
		}
		return nil
	}

	var snapshot risk.CatalogSnapshot
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		c.logger.Debug("Snapshot cache entry corrupt, ignoring", zap.Error(err))
		return nil
	}
	return &snapshot
}

func (c *SnapshotCache) store(ctx context.Context, snapshot *risk.CatalogSnapshot) {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		c.logger.Debug("Snapshot cache encode failed", zap.Error(err))
		return
	}
	if err := c.redis.Set(ctx, snapshotCacheKey, payload, c.ttl).Err(); err != nil {
		c.logger.Debug("Snapshot cache write failed", zap.Error(err))
	}
}

// Ensure SnapshotCache implements risk.CatalogSource
var _ risk.CatalogSource = (*SnapshotCache)(nil)
