package models

import "time"

type VideoRecord struct {
	ID           string    `json:"id"`
	ChannelID    string    `json:"channel_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	UploadDate   time.Time `json:"upload_date"`
	ViewCount    uint64    `json:"view_count"`
	LikeCount    uint64    `json:"like_count"`
	CommentCount uint64    `json:"comment_count"`
	Duration     string    `json:"duration"` // display form, MM:SS or HH:MM:SS
	URL          string    `json:"url"`
	ThumbnailURL string    `json:"thumbnail_url"`
}

// NewVideos is the per-channel list of videos not yet present in the report
type NewVideos map[string][]VideoRecord

// Count returns the total number of videos across all channels
func (n NewVideos) Count() int {
	total := 0
	for _, videos := range n {
		total += len(videos)
	}
	return total
}

// IDs returns every video id across all channels
func (n NewVideos) IDs() []string {
	var ids []string
	for _, videos := range n {
		for _, v := range videos {
			ids = append(ids, v.ID)
		}
	}
	return ids
}
