package usecase

import (
	"errors"
	"fmt"
	"math"
	"time"

	"benchly/domain/model"

	"github.com/sosodev/duration"
)

const publishedDateLayout = "06-01-02"

var errNegativeDuration = errors.New("negative duration")

// ViewsPerHour averages views over the hours since publication. Items younger
// than an hour report their raw view count. Halves round to even.
func ViewsPerHour(views uint64, published, now time.Time) uint64 {
	hours := now.Sub(published).Hours()
	if hours < 1 {
		return views
	}
	return uint64(math.RoundToEven(float64(views) / hours))
}

// SubscriberRatio is views as a percentage of the channel's subscribers.
func SubscriberRatio(views, subscribers uint64) float64 {
	if subscribers == 0 {
		return 0
	}
	return round2(float64(views) / float64(subscribers) * 100)
}

// LikeRatio is likes as a percentage of views.
func LikeRatio(likes, views uint64) float64 {
	if views == 0 {
		return 0
	}
	return round2(float64(likes) / float64(views) * 100)
}

func round2(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}

// ParseDurationSeconds reads an ISO-8601 duration such as PT4M13S. Empty text
// is treated as zero length.
func ParseDurationSeconds(iso string) (int64, error) {
	if iso == "" {
		return 0, nil
	}
	d, err := duration.Parse(iso)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", iso, err)
	}
	td := d.ToTimeDuration()
	if td < 0 {
		return 0, fmt.Errorf("parse duration %q: %w", iso, errNegativeDuration)
	}
	return int64(td / time.Second), nil
}

// FormatDuration renders seconds as H:MM:SS with unpadded hours.
func FormatDuration(seconds int64) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%d:%02d:%02d", h, m, s)
}

// EnrichItem joins one search hit with its details and channel statistics.
// A missing channel counts as zero subscribers.
func EnrichItem(raw model.RawItem, details model.ItemDetails, channel model.ChannelStats, now time.Time) (model.EnrichedItem, error) {
	published, err := time.Parse(time.RFC3339, raw.PublishedAt)
	if err != nil {
		return model.EnrichedItem{}, model.NewEnrichmentError(raw.ItemID, fmt.Errorf("parse publishedAt %q: %w", raw.PublishedAt, err))
	}
	seconds, err := ParseDurationSeconds(details.Duration)
	if err != nil {
		return model.EnrichedItem{}, model.NewEnrichmentError(raw.ItemID, err)
	}
	published = published.UTC()

	return model.EnrichedItem{
		VideoID:              raw.ItemID,
		ChannelID:            raw.ChannelID,
		Title:                raw.Title,
		ChannelTitle:         raw.ChannelTitle,
		PublishedAt:          raw.PublishedAt,
		Thumbnail:            details.ThumbnailURL,
		ViewCount:            details.ViewCount,
		LikeCount:            details.LikeCount,
		SubscriberCount:      channel.SubscriberCount,
		SubscriberRatio:      SubscriberRatio(details.ViewCount, channel.SubscriberCount),
		LikeRatio:            LikeRatio(details.LikeCount, details.ViewCount),
		ViewsPerHour:         ViewsPerHour(details.ViewCount, published, now),
		PublishedAtTimestamp: published.Unix(),
		PublishedAtFormatted: published.Format(publishedDateLayout),
		DurationSeconds:      seconds,
		DurationFormatted:    FormatDuration(seconds),
		DurationBucket:       DurationBucket(seconds),
		MadeForKids:          details.MadeForKids,
		CaptionAvailable:     details.CaptionAvailable,
	}, nil
}

// EnrichItems enriches raw in order. Hits without details are skipped
// silently; hits that fail to enrich are skipped and reported in the
// returned error slice.
func EnrichItems(raw []model.RawItem, details map[string]model.ItemDetails, channels map[string]model.ChannelStats, now time.Time) ([]model.EnrichedItem, []error) {
	items := make([]model.EnrichedItem, 0, len(raw))
	var failures []error
	for _, r := range raw {
		d, ok := details[r.ItemID]
		if !ok {
			continue
		}
		item, err := EnrichItem(r, d, channels[r.ChannelID], now)
		if err != nil {
			failures = append(failures, err)
			continue
		}
		items = append(items, item)
	}
	return items, failures
}
