package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"benchly/domain/model"
	"benchly/domain/repository"

	"github.com/redis/go-redis/v9"
)

const DefaultKeyPrefix = "benchly:search:"

type redisEntry struct {
	Payload   []model.EnrichedItem `json:"payload"`
	CreatedAt time.Time            `json:"createdAt"`
}

// RedisSearchCache stores each result set as one JSON value. Keys expire
// after the retention period.
type RedisSearchCache struct {
	client    *redis.Client
	prefix    string
	retention time.Duration
}

func NewRedisSearchCache(client *redis.Client, prefix string, retention time.Duration) repository.ISearchCache {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &RedisSearchCache{client: client, prefix: prefix, retention: retention}
}

func (r *RedisSearchCache) Lookup(ctx context.Context, key string) (*model.CacheEntry, error) {
	data, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, model.NewCacheStoreError("lookup", err)
	}
	return decodeEntry(key, data)
}

func (r *RedisSearchCache) Upsert(ctx context.Context, key string, payload []model.EnrichedItem, now time.Time) error {
	data, err := encodeEntry(payload, now)
	if err != nil {
		return model.NewCacheStoreError("upsert", err)
	}
	if err := r.client.Set(ctx, r.prefix+key, data, r.retention).Err(); err != nil {
		return model.NewCacheStoreError("upsert", err)
	}
	return nil
}

func (r *RedisSearchCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func encodeEntry(payload []model.EnrichedItem, now time.Time) ([]byte, error) {
	if payload == nil {
		payload = []model.EnrichedItem{}
	}
	return json.Marshal(redisEntry{Payload: payload, CreatedAt: now.UTC()})
}

func decodeEntry(key string, data []byte) (*model.CacheEntry, error) {
	var stored redisEntry
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, model.NewCacheStoreError("lookup", fmt.Errorf("decode %s: %w", key, err))
	}
	return &model.CacheEntry{Key: key, Payload: stored.Payload, CreatedAt: stored.CreatedAt}, nil
}
