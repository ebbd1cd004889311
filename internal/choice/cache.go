package choice

import (
	"context"
	"strconv"
	"time"

	"lifeledger/internal/platform/redis"
)

const cacheKeyPrefix = "choice:price:"

// CachedStore is a read-through cache in front of a Store. Prices change
// rarely and are read on every make-choice call, so hits skip the backing
// store entirely. Writes go to the backing store first and then invalidate,
// never populate; the next read repopulates. Cache failures degrade to the
// backing store rather than failing the operation.
type CachedStore struct {
	store Store
	cache *redis.Client
	ttl   time.Duration
}

func NewCachedStore(store Store, cache *redis.Client, ttl time.Duration) *CachedStore {
	return &CachedStore{store: store, cache: cache, ttl: ttl}
}

func (s *CachedStore) Upsert(ctx context.Context, name string, price int64) error {
	if err := s.store.Upsert(ctx, name, price); err != nil {
		return err
	}
	s.cache.Del(ctx, cacheKeyPrefix+name)
	return nil
}

func (s *CachedStore) Delete(ctx context.Context, name string) error {
	if err := s.store.Delete(ctx, name); err != nil {
		return err
	}
	s.cache.Del(ctx, cacheKeyPrefix+name)
	return nil
}

func (s *CachedStore) Get(ctx context.Context, name string) (int64, error) {
	cached, err := s.cache.Get(ctx, cacheKeyPrefix+name).Result()
	if err == nil {
		if price, perr := strconv.ParseInt(cached, 10, 64); perr == nil {
			return price, nil
		}
	}

	price, err := s.store.Get(ctx, name)
	if err != nil {
		return 0, err
	}
	s.cache.Set(ctx, cacheKeyPrefix+name, strconv.FormatInt(price, 10), s.ttl)
	return price, nil
}
