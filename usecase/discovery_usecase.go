package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"benchly/domain/model"
	"benchly/domain/repository"
	"benchly/infrastructure/logger"
	"benchly/infrastructure/metrics"

	"golang.org/x/sync/errgroup"
)

const DefaultUpstreamTimeout = 5 * time.Second

// IDiscoveryUseCase resolves a query into an enriched, filtered result set.
type IDiscoveryUseCase interface {
	Search(ctx context.Context, q model.Query) ([]model.EnrichedItem, error)
}

type DiscoveryUseCase struct {
	catalog repository.ICatalog
	cache   repository.ISearchCache
	ttl     time.Duration
	timeout time.Duration
	now     func() time.Time
}

type DiscoveryOption func(*DiscoveryUseCase)

func WithCacheTTL(ttl time.Duration) DiscoveryOption {
	return func(u *DiscoveryUseCase) {
		if ttl > 0 {
			u.ttl = ttl
		}
	}
}

func WithUpstreamTimeout(timeout time.Duration) DiscoveryOption {
	return func(u *DiscoveryUseCase) {
		if timeout > 0 {
			u.timeout = timeout
		}
	}
}

func WithClock(now func() time.Time) DiscoveryOption {
	return func(u *DiscoveryUseCase) {
		if now != nil {
			u.now = now
		}
	}
}

func NewDiscoveryUseCase(catalog repository.ICatalog, cache repository.ISearchCache, opts ...DiscoveryOption) IDiscoveryUseCase {
	u := &DiscoveryUseCase{
		catalog: catalog,
		cache:   cache,
		ttl:     model.DefaultCacheTTL,
		timeout: DefaultUpstreamTimeout,
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

func (u *DiscoveryUseCase) Search(ctx context.Context, q model.Query) ([]model.EnrichedItem, error) {
	q, err := NormalizeQuery(q)
	if err != nil {
		return nil, err
	}
	key := DeriveCacheKey(q)
	log := logger.GetLogger().WithField("cacheKey", key)

	if entry := u.lookup(ctx, key); entry != nil {
		log.WithField("items", len(entry.Payload)).Info("Search served from cache")
		return entry.Payload, nil
	}

	raw, err := u.searchUpstream(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return []model.EnrichedItem{}, nil
	}

	details, channels, err := u.fetchMetadata(ctx, raw)
	if err != nil {
		return nil, err
	}

	now := u.now()
	enriched, failures := EnrichItems(raw, details, channels, now)
	for _, failure := range failures {
		metrics.EnrichmentDropsTotal.Inc()
		log.WithField("error", failure).Warn("Dropping item that could not be enriched")
	}
	items := FilterItems(enriched, q)

	if err := u.cache.Upsert(ctx, key, items, u.now()); err != nil {
		metrics.CacheWriteErrorsTotal.Inc()
		log.WithField("error", model.NewCacheStoreError("upsert", err)).Error("Failed to store search result")
	}

	log.WithFields(map[string]interface{}{
		"hits":     len(raw),
		"enriched": len(enriched),
		"returned": len(items),
	}).Info("Search resolved upstream")
	return items, nil
}

// lookup returns a fresh entry or nil. Store failures count as a miss.
func (u *DiscoveryUseCase) lookup(ctx context.Context, key string) *model.CacheEntry {
	entry, err := u.cache.Lookup(ctx, key)
	switch {
	case err != nil:
		metrics.CacheMissesTotal.WithLabelValues("error").Inc()
		logger.GetLogger().WithField("error", model.NewCacheStoreError("lookup", err)).Warn("Cache lookup failed, treating as miss")
		return nil
	case entry == nil:
		metrics.CacheMissesTotal.WithLabelValues("absent").Inc()
		return nil
	case !entry.IsFresh(u.now(), u.ttl):
		metrics.CacheMissesTotal.WithLabelValues("stale").Inc()
		return nil
	}
	metrics.CacheHitsTotal.Inc()
	return entry
}

func (u *DiscoveryUseCase) searchUpstream(ctx context.Context, q model.Query) ([]model.RawItem, error) {
	var raw []model.RawItem
	err := u.withTimeout(ctx, "search", func(ctx context.Context) error {
		var err error
		if q.SearchType == model.SearchTypeChannel {
			raw, err = u.catalog.SearchByChannel(ctx, repository.ChannelSearch{
				ChannelQuery: q.Text,
				Region:       q.Region,
				Language:     q.Language,
				MaxResults:   q.MaxResults,
			})
			return err
		}
		req := repository.KeywordSearch{
			Query:      q.Text,
			Region:     q.Region,
			Language:   q.Language,
			SortOrder:  q.SortOrder,
			MaxResults: q.MaxResults,
		}
		if q.PeriodDays > 0 {
			req.PublishedAfter = u.now().AddDate(0, 0, -q.PeriodDays)
		}
		raw, err = u.catalog.SearchByKeyword(ctx, req)
		return err
	})
	return raw, err
}

// fetchMetadata loads item details and channel statistics concurrently. The
// first failure cancels the other call.
func (u *DiscoveryUseCase) fetchMetadata(ctx context.Context, raw []model.RawItem) (map[string]model.ItemDetails, map[string]model.ChannelStats, error) {
	itemIDs, channelIDs := distinctIDs(raw)

	var (
		details  map[string]model.ItemDetails
		channels map[string]model.ChannelStats
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return u.withTimeout(gctx, "item details", func(ctx context.Context) error {
			var err error
			details, err = u.catalog.GetItemDetails(ctx, itemIDs)
			return err
		})
	})
	g.Go(func() error {
		if len(channelIDs) == 0 {
			return nil
		}
		return u.withTimeout(gctx, "channel stats", func(ctx context.Context) error {
			var err error
			channels, err = u.catalog.GetChannelStats(ctx, channelIDs)
			return err
		})
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return details, channels, nil
}

// withTimeout bounds one upstream call and classifies its failure.
func (u *DiscoveryUseCase) withTimeout(ctx context.Context, operation string, call func(ctx context.Context) error) error {
	cctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	err := call(cctx)
	if err == nil {
		return nil
	}
	var de *model.DiscoveryError
	if errors.As(err, &de) {
		return err
	}
	if errors.Is(ctx.Err(), context.Canceled) {
		return fmt.Errorf("%s: %w", operation, ctx.Err())
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(cctx.Err(), context.DeadlineExceeded) {
		return model.NewTimeoutError(operation, err)
	}
	return model.NewUpstreamError(0, fmt.Sprintf("%s failed", operation), err)
}

func distinctIDs(raw []model.RawItem) (itemIDs, channelIDs []string) {
	seenItems := make(map[string]struct{}, len(raw))
	seenChannels := make(map[string]struct{}, len(raw))
	for _, r := range raw {
		if _, ok := seenItems[r.ItemID]; !ok && r.ItemID != "" {
			seenItems[r.ItemID] = struct{}{}
			itemIDs = append(itemIDs, r.ItemID)
		}
		if _, ok := seenChannels[r.ChannelID]; !ok && r.ChannelID != "" {
			seenChannels[r.ChannelID] = struct{}{}
			channelIDs = append(channelIDs, r.ChannelID)
		}
	}
	return itemIDs, channelIDs
}
