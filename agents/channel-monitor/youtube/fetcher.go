package youtube

import (
	"context"
	"errors"
	"fmt"
	"log"

	"channel-monitor/internal/models"

	"google.golang.org/api/youtube/v3"
)

// Status classifies the outcome of a single fetch
type Status int

const (
	// StatusOK means the record was fetched.
	StatusOK Status = iota
	// StatusAbsent means there is nothing to record (unknown channel, no uploads).
	StatusAbsent
	// StatusFailed means the fetch errored; the item is skipped and the run continues.
	StatusFailed
	// StatusFatal means the run itself can no longer continue.
	StatusFatal
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusAbsent:
		return "absent"
	case StatusFailed:
		return "failed"
	case StatusFatal:
		return "fatal"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Result carries a fetched value or the reason there is none
type Result[T any] struct {
	Value  T
	Status Status
	Err    error
}

func (r Result[T]) OK() bool { return r.Status == StatusOK }

func okResult[T any](v T) Result[T] {
	return Result[T]{Value: v, Status: StatusOK}
}

func failResult[T any](ctx context.Context, err error) Result[T] {
	return Result[T]{Status: classify(ctx, err), Err: err}
}

func classify(ctx context.Context, err error) Status {
	switch {
	case err == nil:
		return StatusOK
	case ctx.Err() != nil, errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return StatusFatal
	case errors.Is(err, ErrChannelNotFound), errors.Is(err, ErrNoUploads), errors.Is(err, ErrVideoNotFound):
		return StatusAbsent
	default:
		return StatusFailed
	}
}

// Fetcher turns API responses into channel and video records
type Fetcher struct {
	api API
}

func NewFetcher(api API) *Fetcher {
	return &Fetcher{api: api}
}

// FetchChannelStats fetches a channel's statistics snapshot
func (f *Fetcher) FetchChannelStats(ctx context.Context, channelID string) Result[*models.ChannelRecord] {
	channel, err := f.api.GetChannel(ctx, channelID)
	if err != nil {
		res := failResult[*models.ChannelRecord](ctx, err)
		logResult("data", channelID, res.Status, err)
		return res
	}

	record := &models.ChannelRecord{
		ChannelID: channelID,
		URL:       fmt.Sprintf("https://www.youtube.com/channel/%s", channelID),
	}
	if channel.Snippet != nil {
		record.Name = channel.Snippet.Title
		record.Description = channel.Snippet.Description
		if createdAt, err := ParseTimestamp(channel.Snippet.PublishedAt); err == nil {
			record.CreatedAt = createdAt
		}
	}
	if channel.Statistics != nil {
		record.SubscriberCount = channel.Statistics.SubscriberCount
		record.VideoCount = channel.Statistics.VideoCount
		record.ViewCount = channel.Statistics.ViewCount
	}

	return okResult(record)
}

// FetchLatestVideo fetches the newest upload of a channel together with its
// statistics. A channel with no uploads yields StatusAbsent.
func (f *Fetcher) FetchLatestVideo(ctx context.Context, channelID string) Result[*models.VideoRecord] {
	record, err := f.latestVideo(ctx, channelID)
	if err != nil {
		res := failResult[*models.VideoRecord](ctx, err)
		logResult("videos", channelID, res.Status, err)
		return res
	}
	return okResult(record)
}

func (f *Fetcher) latestVideo(ctx context.Context, channelID string) (*models.VideoRecord, error) {
	playlistID, err := f.api.GetUploadsPlaylistID(ctx, channelID)
	if err != nil {
		return nil, err
	}

	item, err := f.api.GetLatestPlaylistItem(ctx, playlistID)
	if err != nil {
		return nil, err
	}
	if item.Snippet == nil {
		return nil, fmt.Errorf("playlist item in %s has no snippet", playlistID)
	}

	videoID := playlistItemVideoID(item)
	if videoID == "" {
		return nil, fmt.Errorf("playlist item in %s has no video id", playlistID)
	}

	uploadDate, err := ParseTimestamp(item.Snippet.PublishedAt)
	if err != nil {
		return nil, fmt.Errorf("video %s: %w", videoID, err)
	}

	video, err := f.api.GetVideoStats(ctx, videoID)
	if err != nil {
		return nil, err
	}

	record := &models.VideoRecord{
		ID:           videoID,
		ChannelID:    channelID,
		Title:        item.Snippet.Title,
		Description:  item.Snippet.Description,
		UploadDate:   uploadDate,
		Duration:     "00:00",
		URL:          fmt.Sprintf("https://www.youtube.com/watch?v=%s", videoID),
		ThumbnailURL: thumbnailURL(item.Snippet.Thumbnails),
	}
	if video.Statistics != nil {
		record.ViewCount = video.Statistics.ViewCount
		record.LikeCount = video.Statistics.LikeCount
		record.CommentCount = video.Statistics.CommentCount
	}
	if video.ContentDetails != nil {
		record.Duration = FormatDuration(video.ContentDetails.Duration)
	}

	return record, nil
}

func playlistItemVideoID(item *youtube.PlaylistItem) string {
	if item.ContentDetails != nil && item.ContentDetails.VideoId != "" {
		return item.ContentDetails.VideoId
	}
	if item.Snippet != nil && item.Snippet.ResourceId != nil {
		return item.Snippet.ResourceId.VideoId
	}
	return ""
}

func thumbnailURL(thumbs *youtube.ThumbnailDetails) string {
	if thumbs == nil {
		return ""
	}
	for _, t := range []*youtube.Thumbnail{thumbs.High, thumbs.Medium, thumbs.Default} {
		if t != nil && t.Url != "" {
			return t.Url
		}
	}
	return ""
}

func logResult(what, channelID string, status Status, err error) {
	switch status {
	case StatusAbsent:
		log.Printf("No %s found for channel %s: %v", what, channelID, err)
	case StatusFatal:
		log.Printf("Aborted fetching %s for channel %s: %v", what, channelID, err)
	default:
		log.Printf("Error fetching %s for channel %s: %v", what, channelID, err)
	}
}
