package youtube

import (
	"context"
	"errors"
	"fmt"
	"time"

	"benchly/domain/model"
	"benchly/domain/repository"
	"benchly/infrastructure/configuration"
	"benchly/infrastructure/logger"
	"benchly/infrastructure/metrics"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// batchSize is the most ids videos.list and channels.list accept per call.
const batchSize = 50

var (
	searchParts  = []string{"snippet"}
	videoParts   = []string{"statistics", "contentDetails", "status", "snippet"}
	channelParts = []string{"statistics"}
)

// Client reads the public YouTube Data API.
type Client struct {
	service *youtube.Service
}

// NewYouTubeClient builds a catalog client. OAuth tokens win over the API key
// when both are configured.
func NewYouTubeClient(ctx context.Context, config *configuration.YouTubeConfig) (repository.ICatalog, error) {
	if config.HasOAuth() {
		oauth2Config := &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			RedirectURL:  config.RedirectURL,
			Scopes:       []string{youtube.YoutubeReadonlyScope},
			Endpoint:     google.Endpoint,
		}
		token := &oauth2.Token{
			AccessToken:  config.AccessToken,
			RefreshToken: config.RefreshToken,
			TokenType:    "Bearer",
			// Expired on purpose so the first call refreshes it.
			Expiry: time.Now().Add(-1 * time.Minute),
		}
		return newCatalog(ctx, option.WithHTTPClient(oauth2Config.Client(ctx, token)))
	}
	if config.APIKey == "" {
		return nil, errors.New("youtube: an API key or an OAuth token pair is required")
	}
	return newCatalog(ctx, option.WithAPIKey(config.APIKey))
}

// newCatalog keeps a failed construction from leaking a typed nil.
func newCatalog(ctx context.Context, opts ...option.ClientOption) (repository.ICatalog, error) {
	client, err := NewClientWithOptions(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// NewClientWithOptions exposes the raw service options, mostly so callers can
// point the client at another endpoint.
func NewClientWithOptions(ctx context.Context, opts ...option.ClientOption) (*Client, error) {
	service, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}
	return &Client{service: service}, nil
}

func (c *Client) SearchByKeyword(ctx context.Context, req repository.KeywordSearch) ([]model.RawItem, error) {
	call := c.service.Search.List(searchParts).
		Q(req.Query).
		Type("video").
		MaxResults(req.MaxResults).
		Order(req.SortOrder).
		RelevanceLanguage(req.Language)
	if req.Region != "" {
		call = call.RegionCode(req.Region)
	}
	if !req.PublishedAfter.IsZero() {
		call = call.PublishedAfter(req.PublishedAfter.UTC().Format(time.RFC3339))
	}

	var response *youtube.SearchListResponse
	err := observe("search", func() (err error) {
		response, err = call.Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, err
	}
	return rawItems(response.Items), nil
}

func (c *Client) SearchByChannel(ctx context.Context, req repository.ChannelSearch) ([]model.RawItem, error) {
	channelID, err := c.resolveChannel(ctx, req.ChannelQuery)
	if err != nil {
		return nil, err
	}
	if channelID == "" {
		logger.GetLogger().WithField("channel", req.ChannelQuery).Info("No channel matched the query")
		return []model.RawItem{}, nil
	}

	call := c.service.Search.List(searchParts).
		ChannelId(channelID).
		Type("video").
		Order("date").
		MaxResults(req.MaxResults).
		RelevanceLanguage(req.Language)
	if req.Region != "" {
		call = call.RegionCode(req.Region)
	}

	var response *youtube.SearchListResponse
	err = observe("channel_uploads", func() (err error) {
		response, err = call.Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, err
	}
	return rawItems(response.Items), nil
}

func (c *Client) resolveChannel(ctx context.Context, name string) (string, error) {
	var response *youtube.SearchListResponse
	err := observe("resolve_channel", func() (err error) {
		response, err = c.service.Search.List(searchParts).
			Q(name).
			Type("channel").
			MaxResults(1).
			Context(ctx).
			Do()
		return err
	})
	if err != nil {
		return "", err
	}
	if len(response.Items) == 0 || response.Items[0].Snippet == nil {
		return "", nil
	}
	return response.Items[0].Snippet.ChannelId, nil
}

func (c *Client) GetItemDetails(ctx context.Context, itemIDs []string) (map[string]model.ItemDetails, error) {
	details := make(map[string]model.ItemDetails, len(itemIDs))
	for _, chunk := range chunks(itemIDs, batchSize) {
		var response *youtube.VideoListResponse
		err := observe("videos", func() (err error) {
			response, err = c.service.Videos.List(videoParts).Id(chunk...).Context(ctx).Do()
			return err
		})
		if err != nil {
			return nil, err
		}
		for _, video := range response.Items {
			details[video.Id] = convertVideo(video)
		}
	}
	return details, nil
}

func (c *Client) GetChannelStats(ctx context.Context, channelIDs []string) (map[string]model.ChannelStats, error) {
	stats := make(map[string]model.ChannelStats, len(channelIDs))
	for _, chunk := range chunks(channelIDs, batchSize) {
		var response *youtube.ChannelListResponse
		err := observe("channels", func() (err error) {
			response, err = c.service.Channels.List(channelParts).Id(chunk...).Context(ctx).Do()
			return err
		})
		if err != nil {
			return nil, err
		}
		for _, channel := range response.Items {
			s := model.ChannelStats{ChannelID: channel.Id}
			if channel.Statistics != nil {
				s.SubscriberCount = channel.Statistics.SubscriberCount
			}
			stats[channel.Id] = s
		}
	}
	return stats, nil
}

func rawItems(results []*youtube.SearchResult) []model.RawItem {
	items := make([]model.RawItem, 0, len(results))
	for _, result := range results {
		if result.Id == nil || result.Id.VideoId == "" || result.Snippet == nil {
			continue
		}
		items = append(items, model.RawItem{
			ItemID:       result.Id.VideoId,
			ChannelID:    result.Snippet.ChannelId,
			Title:        result.Snippet.Title,
			ChannelTitle: result.Snippet.ChannelTitle,
			PublishedAt:  result.Snippet.PublishedAt,
		})
	}
	return items
}

func convertVideo(video *youtube.Video) model.ItemDetails {
	d := model.ItemDetails{ItemID: video.Id}
	if video.Statistics != nil {
		d.ViewCount = video.Statistics.ViewCount
		d.LikeCount = video.Statistics.LikeCount
	}
	if video.ContentDetails != nil {
		d.Duration = video.ContentDetails.Duration
		d.CaptionAvailable = video.ContentDetails.Caption == "true"
	}
	if video.Status != nil {
		d.MadeForKids = video.Status.MadeForKids
	}
	if video.Snippet != nil {
		d.ThumbnailURL = thumbnail(video.Snippet.Thumbnails)
	}
	return d
}

// thumbnail picks the best of high, medium and default.
func thumbnail(t *youtube.ThumbnailDetails) string {
	if t == nil {
		return ""
	}
	for _, candidate := range []*youtube.Thumbnail{t.High, t.Medium, t.Default} {
		if candidate != nil && candidate.Url != "" {
			return candidate.Url
		}
	}
	return ""
}

func chunks(ids []string, size int) [][]string {
	var out [][]string
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		out = append(out, ids[start:end])
	}
	return out
}

// observe runs one upstream call, records it and maps its error onto the
// discovery error kinds.
func observe(operation string, call func() error) error {
	start := time.Now()
	err := call()
	metrics.UpstreamRequestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())

	if err == nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(operation, "ok").Inc()
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		metrics.UpstreamRequestsTotal.WithLabelValues(operation, "timeout").Inc()
		return model.NewTimeoutError("youtube "+operation, err)
	}
	metrics.UpstreamRequestsTotal.WithLabelValues(operation, "error").Inc()

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		logger.GetLogger().WithFields(map[string]interface{}{
			"operation": operation,
			"code":      apiErr.Code,
			"error":     apiErr.Message,
		}).Error("YouTube API returned an error")
		return model.NewUpstreamError(apiErr.Code, apiErr.Message, err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	logger.GetLogger().WithFields(map[string]interface{}{"operation": operation, "error": err}).Error("YouTube API call failed")
	return model.NewUpstreamError(0, "", err)
}
