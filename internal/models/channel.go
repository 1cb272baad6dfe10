package models

import "time"

// ChannelRecord is a per-run snapshot of a tracked channel's statistics
type ChannelRecord struct {
	ChannelID       string    `json:"channel_id"`
	Name            string    `json:"name"`
	SubscriberCount uint64    `json:"subscriber_count"`
	VideoCount      uint64    `json:"video_count"`
	ViewCount       uint64    `json:"view_count"`
	CreatedAt       time.Time `json:"created_at"`
	Description     string    `json:"description"`
	URL             string    `json:"url"`
}
