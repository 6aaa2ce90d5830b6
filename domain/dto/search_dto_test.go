package dto_test

import (
	"encoding/json"
	"testing"

	"benchly/domain/dto"
	"benchly/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchRequest_AcceptsStringNumbers(t *testing.T) {
	body := `{"searchType":"keyword","query":"camping","videoLength":"medium","period":"30",
		"region":"KR","sortOrder":"viewCount","minViews":"1000","useVPH":true,"minVPH":"",
		"maxResults":20,"excludeKids":true,"language":"ko"}`

	var req dto.SearchRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	q := req.ToQuery()
	assert.Equal(t, "camping", q.Text)
	assert.Equal(t, model.SearchTypeKeyword, q.SearchType)
	assert.Equal(t, model.VideoLengthMedium, q.VideoLength)
	assert.Equal(t, 30, q.PeriodDays)
	assert.Equal(t, uint64(1000), q.MinViews)
	assert.Equal(t, uint64(0), q.MinVPH)
	assert.Equal(t, int64(20), q.MaxResults)
	assert.True(t, q.UseVPH)
	assert.True(t, q.ExcludeKids)
}

func TestFlexInt_RejectsGarbage(t *testing.T) {
	var req dto.SearchRequest
	err := json.Unmarshal([]byte(`{"query":"x","minViews":"lots"}`), &req)
	assert.Error(t, err)
}
