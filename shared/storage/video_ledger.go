package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// VideoLedger is a JSON record of video ids already published in a report.
// It complements the ids recovered from the report itself.
type VideoLedger struct {
	filePath   string
	reportedAt map[string]time.Time
	mu         sync.RWMutex
	maxAge     time.Duration
}

// LedgerEntry represents a video that has been reported
type LedgerEntry struct {
	VideoID    string    `json:"video_id"`
	ReportedAt time.Time `json:"reported_at"`
}

// NewVideoLedger opens the ledger at filePath. A maxAge of zero keeps entries forever.
func NewVideoLedger(filePath string, maxAge time.Duration) (*VideoLedger, error) {
	if dir := filepath.Dir(filePath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create ledger directory: %w", err)
		}
	}

	ledger := &VideoLedger{
		filePath:   filePath,
		reportedAt: make(map[string]time.Time),
		maxAge:     maxAge,
	}

	if err := ledger.load(); err != nil {
		return nil, fmt.Errorf("failed to load video ledger: %w", err)
	}

	ledger.cleanup()

	return ledger, nil
}

// Contains reports whether the video id is recorded
func (l *VideoLedger) Contains(videoID string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	_, exists := l.reportedAt[videoID]
	return exists
}

// IDs returns the recorded ids in lexical order
func (l *VideoLedger) IDs() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	ids := make([]string, 0, len(l.reportedAt))
	for id := range l.reportedAt {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Record marks the video ids as reported at the given time and persists the ledger
func (l *VideoLedger) Record(videoIDs []string, at time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, videoID := range videoIDs {
		l.reportedAt[videoID] = at
	}
	return l.save()
}

func (l *VideoLedger) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.reportedAt)
}

// cleanup removes entries older than maxAge
func (l *VideoLedger) cleanup() {
	if l.maxAge <= 0 {
		return
	}
	cutoff := time.Now().Add(-l.maxAge)

	for videoID, reportedAt := range l.reportedAt {
		if reportedAt.Before(cutoff) {
			delete(l.reportedAt, videoID)
		}
	}
}

func (l *VideoLedger) load() error {
	file, err := os.Open(l.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to open ledger file: %w", err)
	}
	defer file.Close()

	var entries []LedgerEntry
	if err := json.NewDecoder(file).Decode(&entries); err != nil {
		return fmt.Errorf("failed to decode ledger data: %w", err)
	}

	for _, e := range entries {
		l.reportedAt[e.VideoID] = e.ReportedAt
	}

	return nil
}

// save writes the ledger sorted by id so the file diffs cleanly
func (l *VideoLedger) save() error {
	entries := make([]LedgerEntry, 0, len(l.reportedAt))
	for videoID, reportedAt := range l.reportedAt {
		entries = append(entries, LedgerEntry{
			VideoID:    videoID,
			ReportedAt: reportedAt,
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].VideoID < entries[j].VideoID })

	file, err := os.Create(l.filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(entries)
}
