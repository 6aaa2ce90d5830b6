package usecase

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"benchly/domain/model"

	"github.com/google/go-querystring/query"
)

var sortOrders = map[string]string{
	"date":       "date",
	"rating":     "rating",
	"relevance":  "relevance",
	"title":      "title",
	"videocount": "videoCount",
	"viewcount":  "viewCount",
}

// canonicalQuery trims text, folds enum casing and fills defaults so that
// equivalent requests produce the same value.
func canonicalQuery(q model.Query) model.Query {
	q.Text = strings.TrimSpace(q.Text)
	q.SearchType = model.SearchType(strings.ToLower(strings.TrimSpace(string(q.SearchType))))
	if q.SearchType == "" {
		q.SearchType = model.SearchTypeKeyword
	}
	q.Region = strings.ToUpper(strings.TrimSpace(q.Region))
	q.Language = strings.ToLower(strings.TrimSpace(q.Language))
	if q.Language == "" {
		q.Language = model.DefaultLanguage
	}
	order := strings.ToLower(strings.TrimSpace(q.SortOrder))
	if order == "" {
		order = model.DefaultSortOrder
	}
	if canonical, ok := sortOrders[order]; ok {
		q.SortOrder = canonical
	} else {
		q.SortOrder = order
	}
	if q.MaxResults == 0 {
		q.MaxResults = model.DefaultMaxResults
	}
	q.VideoLength = model.VideoLength(strings.ToLower(strings.TrimSpace(string(q.VideoLength))))
	if q.VideoLength == "" {
		q.VideoLength = model.VideoLengthAny
	}
	if !q.UseVPH {
		q.MinVPH = 0
	}
	// Channel listings are always newest first and ignore the period.
	if q.SearchType == model.SearchTypeChannel {
		q.SortOrder = "date"
		q.PeriodDays = 0
	}
	return q
}

func validateQuery(q model.Query) error {
	if q.Text == "" {
		return model.NewInvalidQueryError("query is required")
	}
	switch q.SearchType {
	case model.SearchTypeKeyword, model.SearchTypeChannel:
	default:
		return model.NewInvalidQueryError(fmt.Sprintf("unsupported searchType %q", q.SearchType))
	}
	if _, ok := sortOrders[strings.ToLower(q.SortOrder)]; !ok {
		return model.NewInvalidQueryError(fmt.Sprintf("unsupported sortOrder %q", q.SortOrder))
	}
	if q.MaxResults < 1 || q.MaxResults > model.MaxResultsCeiling {
		return model.NewInvalidQueryError(fmt.Sprintf("maxResults must be between 1 and %d", model.MaxResultsCeiling))
	}
	if q.PeriodDays < 0 {
		return model.NewInvalidQueryError("period must not be negative")
	}
	switch q.VideoLength {
	case model.VideoLengthAny, model.VideoLengthShort, model.VideoLengthMedium, model.VideoLengthLong:
	default:
		return model.NewInvalidQueryError(fmt.Sprintf("unsupported videoLength %q", q.VideoLength))
	}
	return nil
}

// NormalizeQuery returns the canonical form of q or an invalid_query error.
func NormalizeQuery(q model.Query) (model.Query, error) {
	q = canonicalQuery(q)
	if err := validateQuery(q); err != nil {
		return q, err
	}
	return q, nil
}

// DeriveCacheKey hashes the canonical, key-sorted encoding of q with SHA-256.
func DeriveCacheKey(q model.Query) string {
	q = canonicalQuery(q)
	var canonical string
	values, err := query.Values(q)
	if err != nil {
		canonical = fmt.Sprintf("%#v", q)
	} else {
		// Encode sorts by key.
		canonical = values.Encode()
	}
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}
