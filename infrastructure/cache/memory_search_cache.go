package cache

import (
	"context"
	"time"

	"benchly/domain/model"
	"benchly/domain/repository"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// MemorySearchCache keeps result sets in process. Entries are retained for
// the given duration and evicted least recently used first once maxEntries is
// reached; freshness is still decided by the caller from CreatedAt.
type MemorySearchCache struct {
	entries *expirable.LRU[string, *model.CacheEntry]
}

func NewMemorySearchCache(maxEntries int, retention time.Duration) repository.ISearchCache {
	return &MemorySearchCache{
		entries: expirable.NewLRU[string, *model.CacheEntry](maxEntries, nil, retention),
	}
}

func (c *MemorySearchCache) Lookup(ctx context.Context, key string) (*model.CacheEntry, error) {
	entry, ok := c.entries.Get(key)
	if !ok {
		return nil, nil
	}
	out := *entry
	out.Payload = append([]model.EnrichedItem(nil), entry.Payload...)
	return &out, nil
}

func (c *MemorySearchCache) Upsert(ctx context.Context, key string, payload []model.EnrichedItem, now time.Time) error {
	c.entries.Add(key, &model.CacheEntry{
		Key:       key,
		Payload:   append([]model.EnrichedItem{}, payload...),
		CreatedAt: now,
	})
	return nil
}
