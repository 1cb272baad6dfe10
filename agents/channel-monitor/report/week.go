package report

import (
	"fmt"
	"time"
)

// WeekBucket groups a month into four fixed day ranges: 1-7, 8-14, 15-21 and 22 onwards
type WeekBucket struct {
	Month time.Month
	Week  int
}

// WeekOfMonth maps a day of the month to its bucket number
func WeekOfMonth(day int) int {
	switch {
	case day <= 7:
		return 1
	case day <= 14:
		return 2
	case day <= 21:
		return 3
	default:
		return 4
	}
}

func BucketFor(t time.Time) WeekBucket {
	return WeekBucket{Month: t.Month(), Week: WeekOfMonth(t.Day())}
}

// Label renders the bucket as shown in divider rows, e.g. "January Week 3"
func (w WeekBucket) Label() string {
	return fmt.Sprintf("%s Week %d", w.Month, w.Week)
}
