package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"channel-monitor/shared/config"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

var (
	ErrChannelNotFound = errors.New("youtube: channel not found")
	ErrNoUploads       = errors.New("youtube: channel has no uploads")
	ErrVideoNotFound   = errors.New("youtube: video not found")
)

// API is the read-only subset of the YouTube Data API the monitor depends on
type API interface {
	GetChannel(ctx context.Context, channelID string) (*youtube.Channel, error)
	GetUploadsPlaylistID(ctx context.Context, channelID string) (string, error)
	GetLatestPlaylistItem(ctx context.Context, playlistID string) (*youtube.PlaylistItem, error)
	GetVideoStats(ctx context.Context, videoID string) (*youtube.Video, error)
}

type Client struct {
	service *youtube.Service
}

// NewClient creates an API-key authenticated client. Extra options are applied
// after the key and endpoint, so tests can swap the transport.
func NewClient(ctx context.Context, cfg *config.YouTubeConfig, opts ...option.ClientOption) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("YouTube API key is required")
	}

	clientOpts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.Endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(cfg.Endpoint))
	}
	clientOpts = append(clientOpts, opts...)

	service, err := youtube.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}

	return &Client{service: service}, nil
}

// GetChannel returns the channel snippet and statistics
func (c *Client) GetChannel(ctx context.Context, channelID string) (*youtube.Channel, error) {
	resp, err := c.service.Channels.List([]string{"snippet", "statistics"}).
		Id(channelID).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list channel %s: %w", channelID, err)
	}
	if len(resp.Items) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrChannelNotFound, channelID)
	}
	return resp.Items[0], nil
}

// GetUploadsPlaylistID resolves the channel's upload collection
func (c *Client) GetUploadsPlaylistID(ctx context.Context, channelID string) (string, error) {
	resp, err := c.service.Channels.List([]string{"contentDetails"}).
		Id(channelID).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("failed to get channel details for %s: %w", channelID, err)
	}
	if len(resp.Items) == 0 {
		return "", fmt.Errorf("%w: %s", ErrChannelNotFound, channelID)
	}

	channel := resp.Items[0]
	if channel.ContentDetails == nil || channel.ContentDetails.RelatedPlaylists == nil ||
		channel.ContentDetails.RelatedPlaylists.Uploads == "" {
		return "", fmt.Errorf("%w: %s", ErrNoUploads, channelID)
	}
	return channel.ContentDetails.RelatedPlaylists.Uploads, nil
}

// GetLatestPlaylistItem returns the newest item of the playlist
func (c *Client) GetLatestPlaylistItem(ctx context.Context, playlistID string) (*youtube.PlaylistItem, error) {
	resp, err := c.service.PlaylistItems.List([]string{"snippet", "contentDetails"}).
		PlaylistId(playlistID).
		MaxResults(1).
		Context(ctx).
		Do()
	if err != nil {
		// An empty uploads playlist is reported as missing by the API
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: playlist %s", ErrNoUploads, playlistID)
		}
		return nil, fmt.Errorf("failed to get playlist items for %s: %w", playlistID, err)
	}
	if len(resp.Items) == 0 {
		return nil, fmt.Errorf("%w: playlist %s", ErrNoUploads, playlistID)
	}
	return resp.Items[0], nil
}

// GetVideoStats returns the statistics and content details of a video.
// The playlist listing carries neither, hence the second request.
func (c *Client) GetVideoStats(ctx context.Context, videoID string) (*youtube.Video, error) {
	resp, err := c.service.Videos.List([]string{"statistics", "contentDetails"}).
		Id(videoID).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get video details for %s: %w", videoID, err)
	}
	if len(resp.Items) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrVideoNotFound, videoID)
	}
	return resp.Items[0], nil
}

func isNotFound(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound
}
