package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"benchly/domain/model"
	"benchly/domain/repository"
	"benchly/infrastructure/logger"
)

// EnsureSearchCacheSchema creates the search result cache table if missing.
func EnsureSearchCacheSchema(db *sql.DB) error {
	ddl := `CREATE TABLE IF NOT EXISTS search_cache (
        search_hash TEXT PRIMARY KEY,
        results_json JSONB NOT NULL,
        created_at TIMESTAMPTZ NOT NULL
    )`
	if _, err := db.Exec(ddl); err != nil {
		return fmt.Errorf("create search_cache table: %w", err)
	}
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_search_cache_created_at ON search_cache(created_at)`); err != nil {
		logger.GetLogger().WithField("error", err).Warn("failed creating idx_search_cache_created_at")
	}
	return nil
}

// SearchCacheRepository keeps one row per query hash in Postgres. The
// enriched result set is stored as JSONB.
type SearchCacheRepository struct{ db *sql.DB }

func NewSearchCacheRepository(db *sql.DB) repository.ISearchCache {
	return &SearchCacheRepository{db: db}
}

func (r *SearchCacheRepository) Lookup(ctx context.Context, key string) (*model.CacheEntry, error) {
	row := r.db.QueryRowContext(ctx, `SELECT results_json, created_at FROM search_cache WHERE search_hash=$1`, key)
	var raw []byte
	var createdAt time.Time
	if err := row.Scan(&raw, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, model.NewCacheStoreError("lookup", err)
	}
	return decodeCacheRow(key, raw, createdAt)
}

func (r *SearchCacheRepository) Upsert(ctx context.Context, key string, payload []model.EnrichedItem, now time.Time) error {
	raw, err := encodePayload(payload)
	if err != nil {
		return model.NewCacheStoreError("upsert", err)
	}
	q := `INSERT INTO search_cache(search_hash, results_json, created_at)
          VALUES ($1,$2,$3)
          ON CONFLICT (search_hash) DO UPDATE SET results_json=EXCLUDED.results_json, created_at=EXCLUDED.created_at`
	if _, err := r.db.ExecContext(ctx, q, key, raw, now.UTC()); err != nil {
		return model.NewCacheStoreError("upsert", err)
	}
	return nil
}

func encodePayload(payload []model.EnrichedItem) ([]byte, error) {
	if payload == nil {
		payload = []model.EnrichedItem{}
	}
	return json.Marshal(payload)
}

func decodeCacheRow(key string, raw []byte, createdAt time.Time) (*model.CacheEntry, error) {
	var payload []model.EnrichedItem
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, model.NewCacheStoreError("lookup", fmt.Errorf("decode %s: %w", key, err))
	}
	return &model.CacheEntry{Key: key, Payload: payload, CreatedAt: createdAt}, nil
}
