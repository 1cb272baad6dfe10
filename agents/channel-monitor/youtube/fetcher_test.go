package youtube

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/youtube/v3"
)

// fakeAPI serves canned channels and videos keyed by id
type fakeAPI struct {
	channels  map[string]*youtube.Channel
	uploads   map[string]string
	latest    map[string]*youtube.PlaylistItem
	videos    map[string]*youtube.Video
	failOn    map[string]error
	callCount int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		channels: map[string]*youtube.Channel{},
		uploads:  map[string]string{},
		latest:   map[string]*youtube.PlaylistItem{},
		videos:   map[string]*youtube.Video{},
		failOn:   map[string]error{},
	}
}

func (f *fakeAPI) addChannel(id, name string, subscribers uint64) {
	f.channels[id] = &youtube.Channel{
		Id: id,
		Snippet: &youtube.ChannelSnippet{
			Title:       name,
			Description: name + " description",
			PublishedAt: "2015-03-01T10:00:00Z",
		},
		Statistics: &youtube.ChannelStatistics{
			SubscriberCount: subscribers,
			VideoCount:      42,
			ViewCount:       100000,
		},
	}
}

func (f *fakeAPI) addUpload(channelID, videoID, publishedAt, duration string, views uint64) {
	playlistID := "UU" + channelID
	f.uploads[channelID] = playlistID
	f.latest[playlistID] = &youtube.PlaylistItem{
		Snippet: &youtube.PlaylistItemSnippet{
			Title:       "Video " + videoID,
			Description: "About " + videoID,
			PublishedAt: publishedAt,
			Thumbnails: &youtube.ThumbnailDetails{
				High: &youtube.Thumbnail{Url: "https://i.ytimg.com/vi/" + videoID + "/hqdefault.jpg"},
			},
		},
		ContentDetails: &youtube.PlaylistItemContentDetails{VideoId: videoID},
	}
	f.videos[videoID] = &youtube.Video{
		Id:             videoID,
		Statistics:     &youtube.VideoStatistics{ViewCount: views, LikeCount: views / 10, CommentCount: views / 100},
		ContentDetails: &youtube.VideoContentDetails{Duration: duration},
	}
}

func (f *fakeAPI) GetChannel(ctx context.Context, channelID string) (*youtube.Channel, error) {
	f.callCount++
	if err := f.failOn["channel:"+channelID]; err != nil {
		return nil, err
	}
	ch, ok := f.channels[channelID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrChannelNotFound, channelID)
	}
	return ch, nil
}

func (f *fakeAPI) GetUploadsPlaylistID(ctx context.Context, channelID string) (string, error) {
	f.callCount++
	if err := f.failOn["uploads:"+channelID]; err != nil {
		return "", err
	}
	id, ok := f.uploads[channelID]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNoUploads, channelID)
	}
	return id, nil
}

func (f *fakeAPI) GetLatestPlaylistItem(ctx context.Context, playlistID string) (*youtube.PlaylistItem, error) {
	f.callCount++
	item, ok := f.latest[playlistID]
	if !ok {
		return nil, fmt.Errorf("%w: playlist %s", ErrNoUploads, playlistID)
	}
	return item, nil
}

func (f *fakeAPI) GetVideoStats(ctx context.Context, videoID string) (*youtube.Video, error) {
	f.callCount++
	if err := f.failOn["video:"+videoID]; err != nil {
		return nil, err
	}
	v, ok := f.videos[videoID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrVideoNotFound, videoID)
	}
	return v, nil
}

func TestFetchChannelStats(t *testing.T) {
	api := newFakeAPI()
	api.addChannel("UC1", "Channel One", 12345)
	fetcher := NewFetcher(api)

	t.Run("Success", func(t *testing.T) {
		res := fetcher.FetchChannelStats(context.Background(), "UC1")
		require.True(t, res.OK(), "unexpected status %s: %v", res.Status, res.Err)

		ch := res.Value
		assert.Equal(t, "UC1", ch.ChannelID)
		assert.Equal(t, "Channel One", ch.Name)
		assert.Equal(t, uint64(12345), ch.SubscriberCount)
		assert.Equal(t, uint64(42), ch.VideoCount)
		assert.Equal(t, uint64(100000), ch.ViewCount)
		assert.Equal(t, "https://www.youtube.com/channel/UC1", ch.URL)
		assert.Equal(t, time.Date(2015, time.March, 1, 10, 0, 0, 0, time.UTC), ch.CreatedAt)
	})

	t.Run("UnknownChannelIsAbsent", func(t *testing.T) {
		res := fetcher.FetchChannelStats(context.Background(), "UC_missing")
		assert.Equal(t, StatusAbsent, res.Status)
		assert.Nil(t, res.Value)
		assert.ErrorIs(t, res.Err, ErrChannelNotFound)
	})

	t.Run("APIErrorIsSoftFailure", func(t *testing.T) {
		api.failOn["channel:UC1"] = errors.New("quota exceeded")
		defer delete(api.failOn, "channel:UC1")

		res := fetcher.FetchChannelStats(context.Background(), "UC1")
		assert.Equal(t, StatusFailed, res.Status)
		assert.Nil(t, res.Value)
	})

	t.Run("CancelledContextIsFatal", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		api.failOn["channel:UC1"] = ctx.Err()
		defer delete(api.failOn, "channel:UC1")

		res := fetcher.FetchChannelStats(ctx, "UC1")
		assert.Equal(t, StatusFatal, res.Status)
	})
}

func TestFetchLatestVideo(t *testing.T) {
	api := newFakeAPI()
	api.addChannel("UC1", "Channel One", 100)
	api.addUpload("UC1", "vid1", "2024-01-20T12:30:00Z", "PT1H2M3S", 5000)
	api.addChannel("UC_empty", "Empty Channel", 1)
	fetcher := NewFetcher(api)

	t.Run("Success", func(t *testing.T) {
		api.callCount = 0
		res := fetcher.FetchLatestVideo(context.Background(), "UC1")
		require.True(t, res.OK(), "unexpected status %s: %v", res.Status, res.Err)

		v := res.Value
		assert.Equal(t, "vid1", v.ID)
		assert.Equal(t, "UC1", v.ChannelID)
		assert.Equal(t, "Video vid1", v.Title)
		assert.Equal(t, "About vid1", v.Description)
		assert.Equal(t, time.Date(2024, time.January, 20, 12, 30, 0, 0, time.UTC), v.UploadDate)
		assert.Equal(t, uint64(5000), v.ViewCount)
		assert.Equal(t, uint64(500), v.LikeCount)
		assert.Equal(t, uint64(50), v.CommentCount)
		assert.Equal(t, "01:02:03", v.Duration)
		assert.Equal(t, "https://www.youtube.com/watch?v=vid1", v.URL)
		assert.Equal(t, "https://i.ytimg.com/vi/vid1/hqdefault.jpg", v.ThumbnailURL)
		assert.Equal(t, 3, api.callCount, "uploads lookup, latest item, video stats")
	})

	t.Run("NoUploadsIsAbsent", func(t *testing.T) {
		res := fetcher.FetchLatestVideo(context.Background(), "UC_empty")
		assert.Equal(t, StatusAbsent, res.Status)
		assert.Nil(t, res.Value)
	})

	t.Run("StatsFailureIsSoftFailure", func(t *testing.T) {
		api.failOn["video:vid1"] = errors.New("backend error")
		defer delete(api.failOn, "video:vid1")

		res := fetcher.FetchLatestVideo(context.Background(), "UC1")
		assert.Equal(t, StatusFailed, res.Status)
		assert.Nil(t, res.Value)
	})

	t.Run("BadTimestampIsSoftFailure", func(t *testing.T) {
		api.addUpload("UC_bad", "vid_bad", "yesterday", "PT1M", 1)
		res := fetcher.FetchLatestVideo(context.Background(), "UC_bad")
		assert.Equal(t, StatusFailed, res.Status)
	})

	t.Run("MalformedDurationFallsBack", func(t *testing.T) {
		api.addUpload("UC_live", "vid_live", "2024-02-01T00:00:00Z", "P0D", 1)
		res := fetcher.FetchLatestVideo(context.Background(), "UC_live")
		require.True(t, res.OK())
		assert.Equal(t, "00:00", res.Value.Duration)
	})
}

func TestThumbnailFallback(t *testing.T) {
	tests := []struct {
		name   string
		thumbs *youtube.ThumbnailDetails
		want   string
	}{
		{"Nil", nil, ""},
		{"High", &youtube.ThumbnailDetails{High: &youtube.Thumbnail{Url: "h"}, Default: &youtube.Thumbnail{Url: "d"}}, "h"},
		{"Medium", &youtube.ThumbnailDetails{Medium: &youtube.Thumbnail{Url: "m"}, Default: &youtube.Thumbnail{Url: "d"}}, "m"},
		{"Default", &youtube.ThumbnailDetails{Default: &youtube.Thumbnail{Url: "d"}}, "d"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, thumbnailURL(tt.thumbs))
		})
	}
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "ok", StatusOK.String())
	assert.Equal(t, "absent", StatusAbsent.String())
	assert.Equal(t, "failed", StatusFailed.String())
	assert.Equal(t, "fatal", StatusFatal.String())
	assert.Equal(t, "status(9)", Status(9).String())
}
