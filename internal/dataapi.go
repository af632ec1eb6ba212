package internal

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// Lookup failures whose text is the caller-facing error message.
var (
	ErrMissingYouTubeKey = errors.New("YOUTUBE_API_KEY environment variable not set")
	ErrChannelNotFound   = errors.New("Channel not found")
	ErrVideoNotFound     = errors.New("Video not found")
	ErrVideoTooShort     = errors.New("Video is too short (less than 2 minutes). Shorts are not supported.")
)

const (
	// shortsMaxSeconds excludes shorts from single-video lookups.
	shortsMaxSeconds = 120

	// videoBatchSize is the Data API cap on ids per videos.list call.
	videoBatchSize = 50

	// dataAPIPageInterval paces playlist page requests.
	dataAPIPageInterval = 100 * time.Millisecond
)

// ChannelInfo describes a channel; counts stay strings to match the Data
// API's JSON representation.
type ChannelInfo struct {
	ChannelID       string `json:"channelId"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	ThumbnailURL    string `json:"thumbnailUrl"`
	SubscriberCount string `json:"subscriberCount"`
	VideoCount      string `json:"videoCount"`
}

// ChannelVideo is one upload in a channel listing. Duration and ViewCount
// are filled by a second enrichment pass and may be zero-valued when that
// pass fails.
type ChannelVideo struct {
	VideoID      string `json:"videoId"`
	ChannelID    string `json:"channelId"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	PublishedAt  string `json:"publishedAt"`
	ThumbnailURL string `json:"thumbnailUrl"`
	Duration     string `json:"duration"`
	ViewCount    string `json:"viewCount"`
}

// ChannelListing is the document the channel command emits on success.
type ChannelListing struct {
	Channel *ChannelInfo   `json:"channel"`
	Videos  []ChannelVideo `json:"videos"`
}

// VideoDetails is the document the video command emits on success.
type VideoDetails struct {
	VideoID      string `json:"videoId"`
	ChannelID    string `json:"channelId"`
	ChannelTitle string `json:"channelTitle"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	PublishedAt  string `json:"publishedAt"`
	ThumbnailURL string `json:"thumbnailUrl"`
	Duration     string `json:"duration"`
	ViewCount    string `json:"viewCount"`
}

// MetadataClient wraps the YouTube Data API v3 for channel and video
// lookups. Playlist paging is rate limited and reported through a progress
// bar on stderr.
type MetadataClient struct {
	service *youtube.Service
	limiter *rate.Limiter
	logger  zerolog.Logger
	ui      UIManager
}

// NewMetadataClient creates a Data API client authenticated by API key.
// Extra client options are mainly useful for pointing tests at a fake
// endpoint.
func NewMetadataClient(ctx context.Context, apiKey string, logger zerolog.Logger, ui UIManager, opts ...option.ClientOption) (*MetadataClient, error) {
	if apiKey == "" {
		return nil, ErrMissingYouTubeKey
	}

	service, err := youtube.NewService(ctx, append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("creating youtube service: %w", err)
	}

	return &MetadataClient{
		service: service,
		limiter: rate.NewLimiter(rate.Every(dataAPIPageInterval), 1),
		logger:  logger,
		ui:      ui,
	}, nil
}

// ChannelInfo looks up a channel by UC id or handle. API-level failures are
// logged and reported as not found, matching how callers treat an empty
// result.
func (c *MetadataClient) ChannelInfo(ctx context.Context, identifier string) (*ChannelInfo, error) {
	call := c.service.Channels.List([]string{"snippet", "statistics"}).MaxResults(1)
	if strings.HasPrefix(identifier, "UC") {
		call = call.Id(identifier)
	} else {
		call = call.ForHandle(identifier)
	}

	resp, err := call.Context(ctx).Do()
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			c.logger.Warn().Err(err).Str("channel", identifier).Msg("channel lookup failed")
			return nil, ErrChannelNotFound
		}
		return nil, err
	}
	if len(resp.Items) == 0 {
		return nil, ErrChannelNotFound
	}

	return channelFromAPI(resp.Items[0]), nil
}

// ChannelVideos lists up to maxResults uploads for a channel, newest first,
// enriched with duration and view count. Paging failures degrade to the
// videos collected so far rather than failing the whole listing.
func (c *MetadataClient) ChannelVideos(ctx context.Context, channelID string, maxResults int64) ([]ChannelVideo, error) {
	videos := make([]ChannelVideo, 0, maxResults)

	uploads, err := c.uploadsPlaylistID(ctx, channelID)
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			c.logger.Warn().Err(err).Str("channel", channelID).Msg("uploads playlist lookup failed")
			return videos, nil
		}
		return nil, err
	}
	if uploads == "" {
		return videos, nil
	}

	bar := c.ui.NewProgressBar(int(maxResults), "Fetching channel videos")
	defer bar.Finish()

	pageToken := ""
	for int64(len(videos)) < maxResults {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		call := c.service.PlaylistItems.List([]string{"snippet", "contentDetails"}).
			PlaylistId(uploads).
			MaxResults(min(videoBatchSize, maxResults-int64(len(videos)))).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		resp, err := call.Do()
		if err != nil {
			var apiErr *googleapi.Error
			if errors.As(err, &apiErr) {
				c.logger.Warn().Err(err).Str("playlist", uploads).Msg("playlist page fetch failed")
				break
			}
			return nil, err
		}

		for _, item := range resp.Items {
			videos = append(videos, playlistVideoFromAPI(channelID, item))
		}
		bar.Set(len(videos))

		pageToken = resp.NextPageToken
		if pageToken == "" {
			break
		}
	}

	bar.Finish()
	c.ui.Printf("Found %d videos\n", len(videos))

	c.enrichVideos(ctx, videos)
	return videos, nil
}

// VideoDetails looks up a single video. Shorts are rejected so downstream
// transcript analysis never runs on clips without substance.
func (c *MetadataClient) VideoDetails(ctx context.Context, videoID string) (*VideoDetails, error) {
	resp, err := c.service.Videos.List([]string{"snippet", "contentDetails", "statistics"}).
		Id(videoID).
		Context(ctx).
		Do()
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			c.logger.Warn().Err(err).Str("video", videoID).Msg("video lookup failed")
			return nil, ErrVideoNotFound
		}
		return nil, err
	}
	if len(resp.Items) == 0 {
		return nil, ErrVideoNotFound
	}

	video := resp.Items[0]
	if ParseISO8601Duration(video.ContentDetails.Duration) < shortsMaxSeconds {
		return nil, ErrVideoTooShort
	}

	return videoFromAPI(video), nil
}

// uploadsPlaylistID resolves the channel's uploads playlist.
func (c *MetadataClient) uploadsPlaylistID(ctx context.Context, channelID string) (string, error) {
	resp, err := c.service.Channels.List([]string{"contentDetails"}).
		Id(channelID).
		MaxResults(1).
		Context(ctx).
		Do()
	if err != nil {
		return "", err
	}
	if len(resp.Items) == 0 || resp.Items[0].ContentDetails == nil || resp.Items[0].ContentDetails.RelatedPlaylists == nil {
		return "", nil
	}
	return resp.Items[0].ContentDetails.RelatedPlaylists.Uploads, nil
}

// enrichVideos fills duration and view count via videos.list, batched at the
// API's id cap. A failed batch leaves its videos with an empty duration and
// a zero view count.
func (c *MetadataClient) enrichVideos(ctx context.Context, videos []ChannelVideo) {
	byID := make(map[string]*ChannelVideo, len(videos))
	ids := make([]string, 0, len(videos))
	for i := range videos {
		byID[videos[i].VideoID] = &videos[i]
		ids = append(ids, videos[i].VideoID)
	}

	for _, batch := range chunkStrings(ids, videoBatchSize) {
		resp, err := c.service.Videos.List([]string{"contentDetails", "statistics"}).
			Id(batch...).
			Context(ctx).
			Do()
		if err != nil {
			c.logger.Warn().Err(err).Int("batch_size", len(batch)).Msg("video enrichment failed")
			continue
		}

		for _, item := range resp.Items {
			video, ok := byID[item.Id]
			if !ok {
				continue
			}
			if item.ContentDetails != nil {
				video.Duration = item.ContentDetails.Duration
			}
			if item.Statistics != nil {
				video.ViewCount = strconv.FormatUint(item.Statistics.ViewCount, 10)
			}
		}
	}

	for i := range videos {
		if videos[i].ViewCount == "" {
			videos[i].ViewCount = "0"
		}
	}
}

func channelFromAPI(channel *youtube.Channel) *ChannelInfo {
	info := &ChannelInfo{
		ChannelID:       channel.Id,
		SubscriberCount: "0",
		VideoCount:      "0",
	}
	if channel.Snippet != nil {
		info.Name = channel.Snippet.Title
		info.Description = channel.Snippet.Description
		info.ThumbnailURL = thumbnailURL(channel.Snippet.Thumbnails)
	}
	if channel.Statistics != nil {
		info.SubscriberCount = strconv.FormatUint(channel.Statistics.SubscriberCount, 10)
		info.VideoCount = strconv.FormatUint(channel.Statistics.VideoCount, 10)
	}
	return info
}

func playlistVideoFromAPI(channelID string, item *youtube.PlaylistItem) ChannelVideo {
	video := ChannelVideo{ChannelID: channelID}
	if item.ContentDetails != nil {
		video.VideoID = item.ContentDetails.VideoId
	}
	if item.Snippet != nil {
		video.Title = item.Snippet.Title
		video.Description = item.Snippet.Description
		video.PublishedAt = item.Snippet.PublishedAt
		video.ThumbnailURL = thumbnailURL(item.Snippet.Thumbnails)
	}
	return video
}

func videoFromAPI(video *youtube.Video) *VideoDetails {
	details := &VideoDetails{
		VideoID:   video.Id,
		ViewCount: "0",
	}
	if video.Snippet != nil {
		details.ChannelID = video.Snippet.ChannelId
		details.ChannelTitle = video.Snippet.ChannelTitle
		details.Title = video.Snippet.Title
		details.Description = video.Snippet.Description
		details.PublishedAt = video.Snippet.PublishedAt
		details.ThumbnailURL = thumbnailURL(video.Snippet.Thumbnails)
	}
	if video.ContentDetails != nil {
		details.Duration = video.ContentDetails.Duration
	}
	if video.Statistics != nil {
		details.ViewCount = strconv.FormatUint(video.Statistics.ViewCount, 10)
	}
	return details
}

// thumbnailURL prefers the high resolution variant, like the listing UIs
// this output feeds.
func thumbnailURL(thumbnails *youtube.ThumbnailDetails) string {
	if thumbnails == nil || thumbnails.High == nil {
		return ""
	}
	return thumbnails.High.Url
}

func chunkStrings(items []string, size int) [][]string {
	var chunks [][]string
	for len(items) > size {
		chunks = append(chunks, items[:size])
		items = items[size:]
	}
	if len(items) > 0 {
		chunks = append(chunks, items)
	}
	return chunks
}
