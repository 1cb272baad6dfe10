package report

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"sort"
	"time"

	"channel-monitor/internal/models"
	"channel-monitor/shared/config"

	"github.com/dustin/go-humanize"
)

//go:embed report.html.tmpl
var reportTemplate string

var tmpl = template.Must(template.New("report").Parse(reportTemplate))

// ErrEmptyReport is returned when there is no row to render; callers keep
// the previous report instead of overwriting it with an empty table.
var ErrEmptyReport = errors.New("report: no videos to render")

// Entry pairs a video with the channel it belongs to
type Entry struct {
	Channel *models.ChannelRecord
	Video   models.VideoRecord
}

type row struct {
	Divider     string
	Date        string
	Subscribers string
	ChannelName string
	Views       string
	Thumbnail   string
	Title       string
	URL         string
	Duration    string
	Description string
}

type page struct {
	Title     string
	UpdatedAt string
	Rows      []row
}

type Renderer struct {
	title            string
	descriptionLimit int
	now              func() time.Time
}

func NewRenderer(cfg *config.ReportConfig) *Renderer {
	limit := cfg.DescriptionLimit
	if limit <= 0 {
		limit = config.DefaultDescriptionLimit
	}
	title := cfg.Title
	if title == "" {
		title = config.DefaultReportTitle
	}
	return &Renderer{
		title:            title,
		descriptionLimit: limit,
		now:              time.Now,
	}
}

// Merge flattens the per-channel video lists into entries ordered by upload
// time, newest first. Entries with equal upload times keep channel order.
// Videos of channels missing from channels are dropped.
func Merge(channels []*models.ChannelRecord, videos models.NewVideos) []Entry {
	var entries []Entry
	seen := make(map[string]bool, len(channels))
	for _, ch := range channels {
		if ch == nil || seen[ch.ChannelID] {
			continue
		}
		seen[ch.ChannelID] = true
		for _, v := range videos[ch.ChannelID] {
			entries = append(entries, Entry{Channel: ch, Video: v})
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Video.UploadDate.After(entries[j].Video.UploadDate)
	})
	return entries
}

// Render produces the complete HTML document
func (r *Renderer) Render(channels []*models.ChannelRecord, videos models.NewVideos) (string, error) {
	entries := Merge(channels, videos)
	if len(entries) == 0 {
		return "", ErrEmptyReport
	}

	p := page{
		Title:     r.title,
		UpdatedAt: r.now().Format("2006-01-02 15:04:05"),
		Rows:      r.rows(entries),
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, p); err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}
	return buf.String(), nil
}

func (r *Renderer) rows(entries []Entry) []row {
	rows := make([]row, 0, len(entries)+4)
	currentWeek := ""
	for _, e := range entries {
		if label := BucketFor(e.Video.UploadDate).Label(); label != currentWeek {
			rows = append(rows, row{Divider: label})
			currentWeek = label
		}
		rows = append(rows, row{
			Date:        e.Video.UploadDate.Format("01/02/2006"),
			Subscribers: humanize.Comma(int64(e.Channel.SubscriberCount)),
			ChannelName: e.Channel.Name,
			Views:       humanize.Comma(int64(e.Video.ViewCount)),
			Thumbnail:   e.Video.ThumbnailURL,
			Title:       e.Video.Title,
			URL:         e.Video.URL,
			Duration:    e.Video.Duration,
			Description: Truncate(e.Video.Description, r.descriptionLimit),
		})
	}
	return rows
}

// Truncate keeps the first limit characters and appends an ellipsis. It cuts
// on rune boundaries but not on word boundaries.
func Truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) > limit {
		runes = runes[:limit]
	}
	return string(runes) + "..."
}

// WriteReport renders the report and writes it to path
func (r *Renderer) WriteReport(path string, channels []*models.ChannelRecord, videos models.NewVideos) error {
	content, err := r.Render(channels, videos)
	if err != nil {
		return err
	}
	return WriteFile(path, content)
}

// WriteFile replaces path atomically, creating the parent directory if needed
func WriteFile(path, content string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".report-*.html")
	if err != nil {
		return fmt.Errorf("failed to create temp report file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close report: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("failed to set report permissions: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace report %s: %w", path, err)
	}
	return nil
}
