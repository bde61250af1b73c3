// README: Shared response cache backed by Redis; entries are JSON values expiring after TTL plus the staleness window.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "wayfarer:cache:"

type RedisStore struct {
	redis    *redis.Client
	maxStale time.Duration
}

func NewRedisStore(client *redis.Client, maxStale time.Duration) *RedisStore {
	return &RedisStore{redis: client, maxStale: maxStale}
}

func (s *RedisStore) Get(ctx context.Context, key string) (Entry, bool, error) {
	raw, err := s.redis.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	var e Entry
	if err := json.Unmarshal(raw, &e); err != nil {
		// A corrupt value is treated as a miss; the next write replaces it.
		return Entry{}, false, nil
	}
	return e, true, nil
}

func (s *RedisStore) Set(ctx context.Context, e Entry) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode entry %s: %w", e.Key, err)
	}
	expiry := e.TTL + s.maxStale
	if expiry <= 0 {
		expiry = e.TTL
	}
	if err := s.redis.Set(ctx, redisKeyPrefix+e.Key, raw, expiry).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", e.Key, err)
	}
	return nil
}
