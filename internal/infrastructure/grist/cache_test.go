package grist

import (
	"context"
	"testing"
	"time"

	"github.com/isell/backend/internal/domain/risk"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubSource struct {
	snapshot *risk.CatalogSnapshot
	err      error
	calls    int
}

func (s *stubSource) Snapshot(ctx context.Context) (*risk.CatalogSnapshot, error) {
	s.calls++
	return s.snapshot, s.err
}

func TestSnapshotCache_FallsThroughWhenRedisUnavailable(t *testing.T) {
	// Port 1 is never listening; every redis operation fails fast.
	unavailable := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
	})

	source := &stubSource{snapshot: &risk.CatalogSnapshot{
		ProductPriceCategories: map[int64]int64{101: 5},
	}}
	cache := NewSnapshotCache(source, unavailable, time.Minute, zap.NewNop())

	snapshot, err := cache.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(5), snapshot.ProductPriceCategories[101])
	assert.Equal(t, 1, source.calls)

	// A second call goes back to the source since nothing could be cached.
	_, err = cache.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, source.calls)
}

func TestSnapshotCache_PropagatesSourceError(t *testing.T) {
	unavailable := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
	})

	source := &stubSource{err: context.DeadlineExceeded}
	cache := NewSnapshotCache(source, unavailable, time.Minute, zap.NewNop())

	_, err := cache.Snapshot(context.Background())
	assert.Error(t, err)
}
