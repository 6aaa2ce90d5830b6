package usecase_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"benchly/domain/model"
	"benchly/domain/repository"
	"benchly/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) SearchByKeyword(ctx context.Context, req repository.KeywordSearch) ([]model.RawItem, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.RawItem), args.Error(1)
}

func (m *MockCatalog) SearchByChannel(ctx context.Context, req repository.ChannelSearch) ([]model.RawItem, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.RawItem), args.Error(1)
}

func (m *MockCatalog) GetItemDetails(ctx context.Context, ids []string) (map[string]model.ItemDetails, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]model.ItemDetails), args.Error(1)
}

func (m *MockCatalog) GetChannelStats(ctx context.Context, ids []string) (map[string]model.ChannelStats, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]model.ChannelStats), args.Error(1)
}

type MockSearchCache struct {
	mock.Mock
}

func (m *MockSearchCache) Lookup(ctx context.Context, key string) (*model.CacheEntry, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CacheEntry), args.Error(1)
}

func (m *MockSearchCache) Upsert(ctx context.Context, key string, payload []model.EnrichedItem, now time.Time) error {
	args := m.Called(ctx, key, payload, now)
	return args.Error(0)
}

// jsonCache keeps payloads serialized, the way the database backends do.
type jsonCache struct {
	mu      sync.Mutex
	rows    map[string][]byte
	created map[string]time.Time
}

func newJSONCache() *jsonCache {
	return &jsonCache{rows: map[string][]byte{}, created: map[string]time.Time{}}
}

func (c *jsonCache) Lookup(_ context.Context, key string) (*model.CacheEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.rows[key]
	if !ok {
		return nil, nil
	}
	var items []model.EnrichedItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	return &model.CacheEntry{Key: key, Payload: items, CreatedAt: c.created[key]}, nil
}

func (c *jsonCache) Upsert(_ context.Context, key string, payload []model.EnrichedItem, now time.Time) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rows[key] = raw
	c.created[key] = now
	return nil
}

var searchNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return searchNow }

func sampleRaw() []model.RawItem {
	return []model.RawItem{
		{ItemID: "v1", ChannelID: "c1", Title: "one", ChannelTitle: "Chan 1", PublishedAt: "2025-06-15T10:00:00Z"},
		{ItemID: "v2", ChannelID: "c1", Title: "two", ChannelTitle: "Chan 1", PublishedAt: "2025-06-14T12:00:00Z"},
		{ItemID: "v3", ChannelID: "c2", Title: "three", ChannelTitle: "Chan 2", PublishedAt: "2025-06-01T12:00:00Z"},
	}
}

func sampleDetails() map[string]model.ItemDetails {
	return map[string]model.ItemDetails{
		"v1": {ItemID: "v1", ViewCount: 500, LikeCount: 5, Duration: "PT5M"},
		"v2": {ItemID: "v2", ViewCount: 1500, LikeCount: 30, Duration: "PT5M"},
		"v3": {ItemID: "v3", ViewCount: 2000, LikeCount: 40, Duration: "PT5M"},
	}
}

func sampleChannels() map[string]model.ChannelStats {
	return map[string]model.ChannelStats{
		"c1": {ChannelID: "c1", SubscriberCount: 1000},
		"c2": {ChannelID: "c2", SubscriberCount: 4000},
	}
}

func keywordQuery() model.Query {
	return model.Query{Text: "camping", SearchType: model.SearchTypeKeyword, MinViews: 1000}
}

func TestSearch_MissFetchesEnrichesFiltersAndStores(t *testing.T) {
	catalog := new(MockCatalog)
	cache := new(MockSearchCache)
	q := keywordQuery()
	key := usecase.DeriveCacheKey(q)

	cache.On("Lookup", mock.Anything, key).Return(nil, nil)
	catalog.On("SearchByKeyword", mock.Anything, mock.AnythingOfType("repository.KeywordSearch")).Return(sampleRaw(), nil)
	catalog.On("GetItemDetails", mock.Anything, []string{"v1", "v2", "v3"}).Return(sampleDetails(), nil)
	catalog.On("GetChannelStats", mock.Anything, []string{"c1", "c2"}).Return(sampleChannels(), nil)
	cache.On("Upsert", mock.Anything, key, mock.AnythingOfType("[]model.EnrichedItem"), searchNow).Return(nil)

	uc := usecase.NewDiscoveryUseCase(catalog, cache, usecase.WithClock(clock))
	items, err := uc.Search(context.Background(), q)

	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "v2", items[0].VideoID)
	assert.Equal(t, "v3", items[1].VideoID)
	assert.Equal(t, 150.0, items[0].SubscriberRatio)
	assert.Equal(t, 50.0, items[1].SubscriberRatio)

	catalog.AssertExpectations(t)
	cache.AssertExpectations(t)
	stored := cache.Calls[1].Arguments.Get(2).([]model.EnrichedItem)
	assert.Equal(t, items, stored)
}

func TestSearch_FreshHitSkipsUpstream(t *testing.T) {
	catalog := new(MockCatalog)
	cache := new(MockSearchCache)
	q := keywordQuery()
	cached := []model.EnrichedItem{{VideoID: "cached"}}

	cache.On("Lookup", mock.Anything, usecase.DeriveCacheKey(q)).
		Return(&model.CacheEntry{Payload: cached, CreatedAt: searchNow.Add(-59 * time.Minute)}, nil)

	uc := usecase.NewDiscoveryUseCase(catalog, cache, usecase.WithClock(clock))
	items, err := uc.Search(context.Background(), q)

	require.NoError(t, err)
	assert.Equal(t, cached, items)
	catalog.AssertNotCalled(t, "SearchByKeyword", mock.Anything, mock.Anything)
	cache.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSearch_StaleEntryIsRefreshed(t *testing.T) {
	catalog := new(MockCatalog)
	cache := new(MockSearchCache)
	q := keywordQuery()
	key := usecase.DeriveCacheKey(q)

	cache.On("Lookup", mock.Anything, key).
		Return(&model.CacheEntry{Payload: []model.EnrichedItem{{VideoID: "old"}}, CreatedAt: searchNow.Add(-61 * time.Minute)}, nil)
	catalog.On("SearchByKeyword", mock.Anything, mock.Anything).Return(sampleRaw(), nil)
	catalog.On("GetItemDetails", mock.Anything, mock.Anything).Return(sampleDetails(), nil)
	catalog.On("GetChannelStats", mock.Anything, mock.Anything).Return(sampleChannels(), nil)
	cache.On("Upsert", mock.Anything, key, mock.Anything, searchNow).Return(nil)

	uc := usecase.NewDiscoveryUseCase(catalog, cache, usecase.WithClock(clock))
	items, err := uc.Search(context.Background(), q)

	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "v2", items[0].VideoID)
	cache.AssertNumberOfCalls(t, "Upsert", 1)
}

func TestSearch_SecondIdenticalCallIsServedFromCache(t *testing.T) {
	catalog := new(MockCatalog)
	catalog.On("SearchByKeyword", mock.Anything, mock.Anything).Return(sampleRaw(), nil).Once()
	catalog.On("GetItemDetails", mock.Anything, mock.Anything).Return(sampleDetails(), nil).Once()
	catalog.On("GetChannelStats", mock.Anything, mock.Anything).Return(sampleChannels(), nil).Once()

	now := searchNow
	uc := usecase.NewDiscoveryUseCase(catalog, newJSONCache(), usecase.WithClock(func() time.Time { return now }))

	first, err := uc.Search(context.Background(), keywordQuery())
	require.NoError(t, err)

	now = now.Add(10 * time.Minute)
	second, err := uc.Search(context.Background(), keywordQuery())
	require.NoError(t, err)

	firstJSON, _ := json.Marshal(first)
	secondJSON, _ := json.Marshal(second)
	assert.Equal(t, string(firstJSON), string(secondJSON))
	catalog.AssertNumberOfCalls(t, "SearchByKeyword", 1)
	catalog.AssertNumberOfCalls(t, "GetItemDetails", 1)
	catalog.AssertNumberOfCalls(t, "GetChannelStats", 1)
}

func TestSearch_UpstreamErrorIsSurfacedWithoutCacheWrite(t *testing.T) {
	catalog := new(MockCatalog)
	cache := new(MockSearchCache)
	quota := model.NewUpstreamError(http.StatusForbidden, "The request cannot be completed because you have exceeded your quota.", nil)

	cache.On("Lookup", mock.Anything, mock.Anything).Return(nil, nil)
	catalog.On("SearchByKeyword", mock.Anything, mock.Anything).Return(nil, quota)

	uc := usecase.NewDiscoveryUseCase(catalog, cache, usecase.WithClock(clock))
	_, err := uc.Search(context.Background(), keywordQuery())

	require.Error(t, err)
	assert.Equal(t, model.ErrKindUpstream, model.KindOf(err))
	assert.Equal(t, http.StatusForbidden, model.StatusOf(err))
	cache.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSearch_DetailsFailureAbortsWithoutCacheWrite(t *testing.T) {
	catalog := new(MockCatalog)
	cache := new(MockSearchCache)

	cache.On("Lookup", mock.Anything, mock.Anything).Return(nil, nil)
	catalog.On("SearchByKeyword", mock.Anything, mock.Anything).Return(sampleRaw(), nil)
	catalog.On("GetItemDetails", mock.Anything, mock.Anything).Return(nil, model.NewUpstreamError(http.StatusServiceUnavailable, "backend error", nil))
	catalog.On("GetChannelStats", mock.Anything, mock.Anything).Return(sampleChannels(), nil).Maybe()

	uc := usecase.NewDiscoveryUseCase(catalog, cache, usecase.WithClock(clock))
	_, err := uc.Search(context.Background(), keywordQuery())

	require.Error(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, model.StatusOf(err))
	cache.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSearch_TimeoutBecomesTimeoutError(t *testing.T) {
	catalog := new(MockCatalog)
	cache := new(MockSearchCache)

	cache.On("Lookup", mock.Anything, mock.Anything).Return(nil, nil)
	catalog.On("SearchByKeyword", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			<-args.Get(0).(context.Context).Done()
		}).
		Return(nil, context.DeadlineExceeded)

	uc := usecase.NewDiscoveryUseCase(catalog, cache, usecase.WithClock(clock), usecase.WithUpstreamTimeout(20*time.Millisecond))
	_, err := uc.Search(context.Background(), keywordQuery())

	require.Error(t, err)
	assert.Equal(t, model.ErrKindTimeout, model.KindOf(err))
	assert.Equal(t, http.StatusGatewayTimeout, model.StatusOf(err))
	cache.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSearch_CacheFailuresAreNotFatal(t *testing.T) {
	catalog := new(MockCatalog)
	cache := new(MockSearchCache)

	cache.On("Lookup", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))
	catalog.On("SearchByKeyword", mock.Anything, mock.Anything).Return(sampleRaw(), nil)
	catalog.On("GetItemDetails", mock.Anything, mock.Anything).Return(sampleDetails(), nil)
	catalog.On("GetChannelStats", mock.Anything, mock.Anything).Return(sampleChannels(), nil)
	cache.On("Upsert", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("connection refused"))

	uc := usecase.NewDiscoveryUseCase(catalog, cache, usecase.WithClock(clock))
	items, err := uc.Search(context.Background(), keywordQuery())

	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestSearch_EmptyUpstreamResult(t *testing.T) {
	catalog := new(MockCatalog)
	cache := new(MockSearchCache)

	cache.On("Lookup", mock.Anything, mock.Anything).Return(nil, nil)
	catalog.On("SearchByKeyword", mock.Anything, mock.Anything).Return([]model.RawItem{}, nil)

	uc := usecase.NewDiscoveryUseCase(catalog, cache, usecase.WithClock(clock))
	items, err := uc.Search(context.Background(), keywordQuery())

	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
	catalog.AssertNotCalled(t, "GetItemDetails", mock.Anything, mock.Anything)
	cache.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSearch_ChannelWithoutMatchReturnsEmpty(t *testing.T) {
	catalog := new(MockCatalog)
	cache := new(MockSearchCache)

	cache.On("Lookup", mock.Anything, mock.Anything).Return(nil, nil)
	catalog.On("SearchByChannel", mock.Anything, repository.ChannelSearch{
		ChannelQuery: "no such channel",
		Language:     model.DefaultLanguage,
		MaxResults:   model.DefaultMaxResults,
	}).Return([]model.RawItem{}, nil)

	uc := usecase.NewDiscoveryUseCase(catalog, cache, usecase.WithClock(clock))
	items, err := uc.Search(context.Background(), model.Query{Text: "no such channel", SearchType: model.SearchTypeChannel})

	require.NoError(t, err)
	assert.Empty(t, items)
	catalog.AssertExpectations(t)
}

func TestSearch_MissingDetailsAreExcluded(t *testing.T) {
	catalog := new(MockCatalog)
	cache := new(MockSearchCache)
	details := sampleDetails()
	delete(details, "v3")

	cache.On("Lookup", mock.Anything, mock.Anything).Return(nil, nil)
	catalog.On("SearchByKeyword", mock.Anything, mock.Anything).Return(sampleRaw(), nil)
	catalog.On("GetItemDetails", mock.Anything, mock.Anything).Return(details, nil)
	catalog.On("GetChannelStats", mock.Anything, mock.Anything).Return(sampleChannels(), nil)
	cache.On("Upsert", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	uc := usecase.NewDiscoveryUseCase(catalog, cache, usecase.WithClock(clock))
	items, err := uc.Search(context.Background(), model.Query{Text: "camping"})

	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "v1", items[0].VideoID)
	assert.Equal(t, "v2", items[1].VideoID)
}

func TestSearch_PeriodSetsPublishedAfter(t *testing.T) {
	catalog := new(MockCatalog)
	cache := new(MockSearchCache)

	cache.On("Lookup", mock.Anything, mock.Anything).Return(nil, nil)
	catalog.On("SearchByKeyword", mock.Anything, mock.MatchedBy(func(req repository.KeywordSearch) bool {
		return req.PublishedAfter.Equal(searchNow.AddDate(0, 0, -7)) &&
			req.Query == "camping" &&
			req.SortOrder == "viewCount" &&
			req.Region == "KR" &&
			req.MaxResults == 10
	})).Return([]model.RawItem{}, nil)

	uc := usecase.NewDiscoveryUseCase(catalog, cache, usecase.WithClock(clock))
	_, err := uc.Search(context.Background(), model.Query{Text: "camping", PeriodDays: 7, SortOrder: "viewcount", Region: "kr", MaxResults: 10})

	require.NoError(t, err)
	catalog.AssertExpectations(t)
}

func TestSearch_InvalidQueryMakesNoCalls(t *testing.T) {
	catalog := new(MockCatalog)
	cache := new(MockSearchCache)

	uc := usecase.NewDiscoveryUseCase(catalog, cache, usecase.WithClock(clock))
	_, err := uc.Search(context.Background(), model.Query{Text: " "})

	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, model.StatusOf(err))
	cache.AssertNotCalled(t, "Lookup", mock.Anything, mock.Anything)
}
