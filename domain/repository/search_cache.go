package repository

import (
	"context"
	"time"

	"benchly/domain/model"
)

// ISearchCache stores one result set per query hash.
type ISearchCache interface {
	// Lookup returns (nil, nil) on a miss.
	Lookup(ctx context.Context, key string) (*model.CacheEntry, error)
	// Upsert inserts the entry or overwrites payload and creation time of the
	// existing one.
	Upsert(ctx context.Context, key string, payload []model.EnrichedItem, now time.Time) error
}
