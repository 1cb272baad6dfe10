package models

import "time"

// DigestEntry is a newly reported video with its channel name
type DigestEntry struct {
	ChannelName string
	Video       VideoRecord
}

// Digest summarizes a report update for email delivery
type Digest struct {
	Date       time.Time
	Title      string
	ReportPath string
	Entries    []DigestEntry
}
