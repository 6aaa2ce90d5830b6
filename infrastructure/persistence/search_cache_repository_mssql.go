package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"benchly/domain/model"
	"benchly/domain/repository"
	"benchly/infrastructure/logger"
)

// EnsureSearchCacheSchemaMSSQL creates the cache table on SQL Server if missing.
func EnsureSearchCacheSchemaMSSQL(db *sql.DB) error {
	if db == nil {
		return fmt.Errorf("db is nil")
	}
	ddl := `IF NOT EXISTS (SELECT * FROM sys.objects WHERE object_id = OBJECT_ID(N'dbo.search_cache') AND type in (N'U'))
BEGIN
    CREATE TABLE dbo.search_cache (
        search_hash NVARCHAR(64) NOT NULL PRIMARY KEY,
        results_json NVARCHAR(MAX) NOT NULL,
        created_at DATETIMEOFFSET NOT NULL
    );
END`
	if _, err := db.Exec(ddl); err != nil {
		return fmt.Errorf("create search_cache table (mssql): %w", err)
	}
	if _, err := db.Exec(`IF NOT EXISTS (SELECT * FROM sys.indexes WHERE name = 'idx_search_cache_created_at' AND object_id = OBJECT_ID('dbo.search_cache'))
CREATE INDEX idx_search_cache_created_at ON dbo.search_cache(created_at)`); err != nil {
		logger.GetLogger().WithField("error", err).Warn("failed creating idx_search_cache_created_at (mssql)")
	}
	return nil
}

type SearchCacheRepositoryMSSQL struct {
	db *sql.DB
}

func NewSearchCacheRepositoryMSSQL(db *sql.DB) repository.ISearchCache {
	return &SearchCacheRepositoryMSSQL{db: db}
}

func (r *SearchCacheRepositoryMSSQL) Lookup(ctx context.Context, key string) (*model.CacheEntry, error) {
	row := r.db.QueryRowContext(ctx, `SELECT results_json, created_at FROM dbo.search_cache WHERE search_hash=@p1`, key)
	var raw string
	var createdAt time.Time
	if err := row.Scan(&raw, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, model.NewCacheStoreError("lookup", err)
	}
	return decodeCacheRow(key, []byte(raw), createdAt)
}

func (r *SearchCacheRepositoryMSSQL) Upsert(ctx context.Context, key string, payload []model.EnrichedItem, now time.Time) error {
	raw, err := encodePayload(payload)
	if err != nil {
		return model.NewCacheStoreError("upsert", err)
	}
	q := `MERGE dbo.search_cache AS target
USING (SELECT @p1 AS search_hash) AS src
ON (target.search_hash = src.search_hash)
WHEN MATCHED THEN UPDATE SET results_json=@p2, created_at=@p3
WHEN NOT MATCHED THEN INSERT (search_hash, results_json, created_at)
VALUES (@p1, @p2, @p3);`
	if _, err := r.db.ExecContext(ctx, q, key, string(raw), now.UTC()); err != nil {
		return model.NewCacheStoreError("upsert", err)
	}
	return nil
}
