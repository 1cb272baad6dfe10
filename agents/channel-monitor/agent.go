package channelmonitor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"channel-monitor/agents/channel-monitor/report"
	"channel-monitor/agents/channel-monitor/youtube"
	"channel-monitor/internal/models"
	"channel-monitor/shared/config"
	"channel-monitor/shared/email"
	"channel-monitor/shared/scheduler"
	"channel-monitor/shared/storage"
)

// ChannelMonitorMetrics represents the metrics collected during a run
type ChannelMonitorMetrics struct {
	ChannelsTracked int  `json:"channels_tracked"`
	ChannelsFetched int  `json:"channels_fetched"`
	VideosFetched   int  `json:"videos_fetched"`
	NewVideos       int  `json:"new_videos"`
	Failures        int  `json:"failures"`
	ReportWritten   bool `json:"report_written"`
	DigestSent      bool `json:"digest_sent"`
}

// GetSummary implements the scheduler.Metrics interface
func (m ChannelMonitorMetrics) GetSummary() string {
	summary := fmt.Sprintf("checked %d/%d channels, %d new videos", m.ChannelsFetched, m.ChannelsTracked, m.NewVideos)
	if m.ReportWritten {
		summary += ", report updated"
	} else {
		summary += ", report unchanged"
	}
	if m.DigestSent {
		summary += ", digest sent"
	}
	if m.Failures > 0 {
		summary += fmt.Sprintf(" (%d fetch failures)", m.Failures)
	}
	return summary
}

type digestSender interface {
	SendDigest(digest *models.Digest) error
}

// ChannelMonitorAgent implements the scheduler.Agent interface
type ChannelMonitorAgent struct {
	config   *config.Config
	api      youtube.API
	fetcher  *youtube.Fetcher
	renderer *report.Renderer
	ledger   *storage.VideoLedger
	notifier digestSender
}

func NewChannelMonitorAgent(cfg *config.Config) *ChannelMonitorAgent {
	return &ChannelMonitorAgent{
		config: cfg,
	}
}

func (c *ChannelMonitorAgent) Name() string {
	return "Channel Monitor"
}

func (c *ChannelMonitorAgent) Initialize(ctx context.Context) error {
	log.Printf("Initializing %s...", c.Name())

	if c.api == nil {
		client, err := youtube.NewClient(ctx, &c.config.YouTube)
		if err != nil {
			return fmt.Errorf("failed to create YouTube client: %w", err)
		}
		c.api = client
		log.Println("YouTube client initialized")
	}

	if c.fetcher == nil {
		c.fetcher = youtube.NewFetcher(c.api)
	}

	if c.renderer == nil {
		c.renderer = report.NewRenderer(&c.config.Report)
	}

	if c.ledger == nil && c.config.Storage.LedgerFile != "" {
		maxAge := time.Duration(c.config.Storage.LedgerMaxAgeDays) * 24 * time.Hour
		ledger, err := storage.NewVideoLedger(c.config.Storage.LedgerFile, maxAge)
		if err != nil {
			return fmt.Errorf("failed to open video ledger: %w", err)
		}
		c.ledger = ledger
		log.Printf("Video ledger initialized (%d videos recorded)", ledger.Count())
	}

	if c.notifier == nil && c.config.Email.Enabled() {
		c.notifier = email.NewSender(&c.config.Email)
		log.Printf("Email digest enabled for %s", c.config.Email.ToEmail)
	}

	log.Printf("Tracking %d channels, report at %s", len(c.config.Channels), c.config.Report.OutputPath)
	return nil
}

func (c *ChannelMonitorAgent) RunOnce(ctx context.Context, events *scheduler.AgentEvents) error {
	startTime := time.Now()
	metrics := ChannelMonitorMetrics{ChannelsTracked: len(c.config.Channels)}

	known := c.knownVideoIDs()
	log.Printf("Found %d videos in the existing report", len(known))

	var channels []*models.ChannelRecord
	newVideos := models.NewVideos{}

	for _, channelID := range c.config.Channels {
		stats := c.fetcher.FetchChannelStats(ctx, channelID)
		switch stats.Status {
		case youtube.StatusOK:
			channels = append(channels, stats.Value)
			metrics.ChannelsFetched++
		case youtube.StatusFatal:
			return fmt.Errorf("fetching channel %s: %w", channelID, stats.Err)
		case youtube.StatusFailed:
			metrics.Failures++
			partialFailure(events, fmt.Errorf("channel %s stats: %w", channelID, stats.Err), startTime)
		}

		latest := c.fetcher.FetchLatestVideo(ctx, channelID)
		switch latest.Status {
		case youtube.StatusOK:
			metrics.VideosFetched++
			if known.Contains(latest.Value.ID) {
				continue
			}
			newVideos[channelID] = append(newVideos[channelID], *latest.Value)
		case youtube.StatusFatal:
			return fmt.Errorf("fetching videos for channel %s: %w", channelID, latest.Err)
		case youtube.StatusFailed:
			metrics.Failures++
			partialFailure(events, fmt.Errorf("channel %s videos: %w", channelID, latest.Err), startTime)
		}
	}

	metrics.NewVideos = newVideos.Count()
	log.Printf("Fetched %d channels and %d videos (%d new)", metrics.ChannelsFetched, metrics.VideosFetched, metrics.NewVideos)

	if metrics.NewVideos == 0 {
		log.Println("No new videos found")
		succeeded(events, metrics, startTime)
		return nil
	}

	err := c.renderer.WriteReport(c.config.Report.OutputPath, channels, newVideos)
	if errors.Is(err, report.ErrEmptyReport) {
		log.Println("No new videos with channel data, keeping existing report")
		succeeded(events, metrics, startTime)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	metrics.ReportWritten = true
	log.Printf("Report updated successfully: %s", c.config.Report.OutputPath)

	entries := report.Merge(channels, newVideos)

	if c.ledger != nil {
		ids := make([]string, 0, len(entries))
		for _, e := range entries {
			ids = append(ids, e.Video.ID)
		}
		if err := c.ledger.Record(ids, time.Now()); err != nil {
			partialFailure(events, fmt.Errorf("failed to update video ledger: %w", err), startTime)
		}
	}

	if c.notifier != nil {
		if err := c.notifier.SendDigest(c.digest(entries)); err != nil {
			partialFailure(events, fmt.Errorf("failed to send digest: %w", err), startTime)
		} else {
			metrics.DigestSent = true
			log.Printf("📧 Digest sent to %s", c.config.Email.ToEmail)
		}
	}

	succeeded(events, metrics, startTime)
	return nil
}

// knownVideoIDs merges the ids linked from the current report with the ledger
func (c *ChannelMonitorAgent) knownVideoIDs() report.VideoIDSet {
	known := report.LoadExistingVideoIDs(c.config.Report.OutputPath)
	if c.ledger != nil {
		for _, id := range c.ledger.IDs() {
			known.Add(id)
		}
	}
	return known
}

func (c *ChannelMonitorAgent) digest(entries []report.Entry) *models.Digest {
	d := &models.Digest{
		Date:       time.Now(),
		Title:      c.config.Report.Title,
		ReportPath: c.config.Report.OutputPath,
	}
	for _, e := range entries {
		d.Entries = append(d.Entries, models.DigestEntry{ChannelName: e.Channel.Name, Video: e.Video})
	}
	return d
}

func partialFailure(events *scheduler.AgentEvents, err error, startTime time.Time) {
	if events != nil && events.OnPartialFailure != nil {
		events.OnPartialFailure(err, time.Since(startTime))
	}
}

func succeeded(events *scheduler.AgentEvents, metrics ChannelMonitorMetrics, startTime time.Time) {
	if events != nil && events.OnSuccess != nil {
		events.OnSuccess(metrics, time.Since(startTime))
	}
}
