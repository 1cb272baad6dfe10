package youtube

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// ISO 8601 durations as returned by the API (e.g. "PT1M30S", "PT2H15M30S")
var durationPattern = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?`)

// FormatDuration renders an API duration as MM:SS, or HH:MM:SS when it has
// an hour component. Unparseable input yields "00:00".
func FormatDuration(duration string) string {
	matches := durationPattern.FindStringSubmatch(duration)
	if matches == nil {
		return "00:00"
	}

	hours := atoiOrZero(matches[1])
	minutes := atoiOrZero(matches[2])
	seconds := atoiOrZero(matches[3])

	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

func atoiOrZero(s string) int {
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// ParseTimestamp parses the RFC 3339 timestamps the API uses for publish dates
func ParseTimestamp(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", value, err)
	}
	return t.UTC(), nil
}
