package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"benchly/domain/model"
)

// FlexInt accepts a JSON number or a numeric string. The web client posts
// form values as strings ("1000"), older saved projects carry numbers.
type FlexInt int64

func (f *FlexInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*f = 0
			return nil
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer %q", s)
		}
		*f = FlexInt(n)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	v, err := n.Int64()
	if err != nil {
		fv, ferr := n.Float64()
		if ferr != nil {
			return fmt.Errorf("invalid integer %s", n)
		}
		v = int64(fv)
	}
	*f = FlexInt(v)
	return nil
}

// SearchRequest is the body of POST /api/search.
type SearchRequest struct {
	Query       string  `json:"query"       binding:"required"`
	SearchType  string  `json:"searchType"`
	Region      string  `json:"region"`
	Language    string  `json:"language"`
	SortOrder   string  `json:"sortOrder"`
	MaxResults  FlexInt `json:"maxResults"  binding:"min=0,max=50"`
	Period      FlexInt `json:"period"      binding:"min=0"`
	MinViews    FlexInt `json:"minViews"    binding:"min=0"`
	UseVPH      bool    `json:"useVPH"`
	MinVPH      FlexInt `json:"minVPH"      binding:"min=0"`
	VideoLength string  `json:"videoLength"`
	ExcludeKids bool    `json:"excludeKids"`
}

// ToQuery maps the request onto the domain query as is. Defaults and enum
// checks are applied by the discovery use case.
func (r SearchRequest) ToQuery() model.Query {
	return model.Query{
		Text:        r.Query,
		SearchType:  model.SearchType(r.SearchType),
		Region:      r.Region,
		Language:    r.Language,
		SortOrder:   r.SortOrder,
		MaxResults:  int64(r.MaxResults),
		PeriodDays:  int(r.Period),
		MinViews:    uint64(r.MinViews),
		UseVPH:      r.UseVPH,
		MinVPH:      uint64(r.MinVPH),
		VideoLength: model.VideoLength(r.VideoLength),
		ExcludeKids: r.ExcludeKids,
	}
}

type SearchResponse struct {
	Items []model.EnrichedItem `json:"items"`
}
