package model

import (
	"time"
)

type SearchType string

const (
	SearchTypeKeyword SearchType = "keyword"
	SearchTypeChannel SearchType = "channel"
)

type VideoLength string

const (
	VideoLengthAny    VideoLength = "any"
	VideoLengthShort  VideoLength = "short"
	VideoLengthMedium VideoLength = "medium"
	VideoLengthLong   VideoLength = "long"
)

const (
	DefaultMaxResults = 25
	MaxResultsCeiling = 50
	DefaultSortOrder  = "relevance"
	DefaultLanguage   = "ko"
	DefaultCacheTTL   = time.Hour
)

// Query is a normalized discovery request. Every field takes part in the
// cache key, so the url tags must stay stable across releases.
type Query struct {
	Text        string      `json:"query"       url:"query"`
	SearchType  SearchType  `json:"searchType"  url:"searchType"`
	Region      string      `json:"region"      url:"region"`
	Language    string      `json:"language"    url:"language"`
	SortOrder   string      `json:"sortOrder"   url:"sortOrder"`
	MaxResults  int64       `json:"maxResults"  url:"maxResults"`
	PeriodDays  int         `json:"period"      url:"period"`
	MinViews    uint64      `json:"minViews"    url:"minViews"`
	UseVPH      bool        `json:"useVPH"      url:"useVPH"`
	MinVPH      uint64      `json:"minVPH"      url:"minVPH"`
	VideoLength VideoLength `json:"videoLength" url:"videoLength"`
	ExcludeKids bool        `json:"excludeKids" url:"excludeKids"`
}

// RawItem is a single search hit before the details join.
type RawItem struct {
	ItemID       string
	ChannelID    string
	Title        string
	ChannelTitle string
	PublishedAt  string
}

type ItemDetails struct {
	ItemID           string
	ViewCount        uint64
	LikeCount        uint64
	Duration         string
	MadeForKids      bool
	CaptionAvailable bool
	ThumbnailURL     string
}

type ChannelStats struct {
	ChannelID       string
	SubscriberCount uint64
}

// EnrichedItem is what clients receive. Field names are shared with the web
// front end and with payloads already stored in the cache.
type EnrichedItem struct {
	VideoID              string      `json:"videoId"`
	ChannelID            string      `json:"channelId"`
	Title                string      `json:"title"`
	ChannelTitle         string      `json:"channelTitle"`
	PublishedAt          string      `json:"publishedAt"`
	Thumbnail            string      `json:"thumbnail"`
	ViewCount            uint64      `json:"viewCount"`
	LikeCount            uint64      `json:"likeCount"`
	SubscriberCount      uint64      `json:"subscriberCount"`
	SubscriberRatio      float64     `json:"ratio"`
	LikeRatio            float64     `json:"likeRatio"`
	ViewsPerHour         uint64      `json:"vph"`
	PublishedAtTimestamp int64       `json:"publishedAt_timestamp"`
	PublishedAtFormatted string      `json:"publishedAt_formatted"`
	DurationSeconds      int64       `json:"duration_seconds"`
	DurationFormatted    string      `json:"duration_formatted"`
	DurationBucket       VideoLength `json:"durationBucket"`
	MadeForKids          bool        `json:"madeForKids"`
	CaptionAvailable     bool        `json:"captionAvailable"`
}

// CacheEntry is one memoized result set, addressed by the query hash.
type CacheEntry struct {
	Key       string
	Payload   []EnrichedItem
	CreatedAt time.Time
}

// IsFresh reports whether the entry is younger than ttl at now.
func (e *CacheEntry) IsFresh(now time.Time, ttl time.Duration) bool {
	if e == nil {
		return false
	}
	return now.Sub(e.CreatedAt) < ttl
}
