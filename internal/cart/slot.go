package cart

import (
	"context"
	"errors"
	"time"

	"github.com/angelmondragon/dronemart-backend/pkg/redis"
)

// DefaultSlotTTL keeps an idle cart around for thirty days.
const DefaultSlotTTL = 30 * 24 * time.Hour

// Slot is a single durable key holding one serialized cart. Read returns nil
// content when the slot is empty.
type Slot interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, content []byte) error
}

type slotStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	CartKey(cartID string) string
}

// RedisSlot stores the cart under dm:cart:<cartID>. Each write refreshes the TTL.
type RedisSlot struct {
	store slotStore
	key   string
	ttl   time.Duration
}

func NewRedisSlot(store slotStore, cartID string, ttl time.Duration) *RedisSlot {
	if ttl <= 0 {
		ttl = DefaultSlotTTL
	}
	return &RedisSlot{store: store, key: store.CartKey(cartID), ttl: ttl}
}

func (s *RedisSlot) Read(ctx context.Context) ([]byte, error) {
	raw, err := s.store.Get(ctx, s.key)
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []byte(raw), nil
}

func (s *RedisSlot) Write(ctx context.Context, content []byte) error {
	return s.store.Set(ctx, s.key, content, s.ttl)
}
