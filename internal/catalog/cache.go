package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/angelmondragon/dronemart-backend/pkg/redis"
)

type snapshotStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CatalogKey() string
}

// SnapshotCache keeps the unsigned catalog rows in Redis for a short TTL.
type SnapshotCache struct {
	store snapshotStore
	ttl   time.Duration
}

// NewSnapshotCache returns nil when ttl is not positive, which disables
// caching for every caller.
func NewSnapshotCache(store snapshotStore, ttl time.Duration) *SnapshotCache {
	if store == nil || ttl <= 0 {
		return nil
	}
	return &SnapshotCache{store: store, ttl: ttl}
}

// Get returns the cached rows and whether there was a hit.
func (c *SnapshotCache) Get(ctx context.Context) ([]Row, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	raw, err := c.store.Get(ctx, c.store.CatalogKey())
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var rows []Row
	if err := json.Unmarshal([]byte(raw), &rows); err != nil {
		// a corrupt entry is treated as a miss and overwritten on the next Set
		return nil, false, nil
	}
	return rows, true, nil
}

func (c *SnapshotCache) Set(ctx context.Context, rows []Row) error {
	if c == nil {
		return nil
	}
	payload, err := json.Marshal(rows)
	if err != nil {
		return err
	}
	return c.store.Set(ctx, c.store.CatalogKey(), payload, c.ttl)
}

// Invalidate drops the snapshot after an admin write.
func (c *SnapshotCache) Invalidate(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.store.Del(ctx, c.store.CatalogKey())
}
