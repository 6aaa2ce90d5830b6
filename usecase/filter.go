package usecase

import "benchly/domain/model"

const (
	shortMaxSeconds  = 240
	mediumMaxSeconds = 1200
)

// DurationBucket classifies a length: short below 4 minutes, medium up to and
// including 20 minutes, long above that.
func DurationBucket(seconds int64) model.VideoLength {
	switch {
	case seconds < shortMaxSeconds:
		return model.VideoLengthShort
	case seconds <= mediumMaxSeconds:
		return model.VideoLengthMedium
	default:
		return model.VideoLengthLong
	}
}

// Matches applies the query filters to item in a fixed order: kids content,
// minimum views, minimum views per hour, then length bucket.
func Matches(item model.EnrichedItem, q model.Query) bool {
	if q.ExcludeKids && item.MadeForKids {
		return false
	}
	if item.ViewCount < q.MinViews {
		return false
	}
	if q.UseVPH && item.ViewsPerHour < q.MinVPH {
		return false
	}
	if q.VideoLength != "" && q.VideoLength != model.VideoLengthAny && DurationBucket(item.DurationSeconds) != q.VideoLength {
		return false
	}
	return true
}

// FilterItems keeps the items matching q in their original order.
func FilterItems(items []model.EnrichedItem, q model.Query) []model.EnrichedItem {
	out := make([]model.EnrichedItem, 0, len(items))
	for _, item := range items {
		if Matches(item, q) {
			out = append(out, item)
		}
	}
	return out
}
