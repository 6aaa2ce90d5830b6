package repository

import (
	"context"
	"time"

	"benchly/domain/model"
)

// KeywordSearch is a free text search over the catalog.
type KeywordSearch struct {
	Query      string
	Region     string
	Language   string
	SortOrder  string
	MaxResults int64
	// PublishedAfter is ignored when zero.
	PublishedAfter time.Time
}

// ChannelSearch resolves ChannelQuery to one channel and lists its latest
// uploads.
type ChannelSearch struct {
	ChannelQuery string
	Region       string
	Language     string
	MaxResults   int64
}

// ICatalog is the upstream media catalog. Lookups by id return only the ids
// the catalog knows; missing ids are absent from the map.
type ICatalog interface {
	SearchByKeyword(ctx context.Context, req KeywordSearch) ([]model.RawItem, error)
	// SearchByChannel returns an empty slice and no error when no channel
	// matches.
	SearchByChannel(ctx context.Context, req ChannelSearch) ([]model.RawItem, error)
	GetItemDetails(ctx context.Context, itemIDs []string) (map[string]model.ItemDetails, error)
	GetChannelStats(ctx context.Context, channelIDs []string) (map[string]model.ChannelStats, error)
}
