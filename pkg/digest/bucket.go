package digest

import (
	"fmt"
	"path/filepath"
	"time"
)

// Granularity identifies a digest bucket granularity.
type Granularity string

// Digest granularities.
const (
	Daily   Granularity = "daily"
	Weekly  Granularity = "weekly"
	Monthly Granularity = "monthly"
)

// Granularities lists all granularities in ascending span order.
var Granularities = []Granularity{Daily, Weekly, Monthly}

// BucketKey derives the bucket identifier for a timestamp: the date for
// daily, the ISO week for weekly, the calendar year-month for monthly.
func (g Granularity) BucketKey(t time.Time) string {
	switch g {
	case Daily:
		return t.Format("2006-01-02")
	case Weekly:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	case Monthly:
		return t.Format("2006-01")
	default:
		return t.Format("2006-01-02")
	}
}

// Dir returns the directory holding this granularity's digest notes.
func (g Granularity) Dir(base string) string {
	switch g {
	case Weekly:
		return filepath.Join(base, "Weekly")
	case Monthly:
		return filepath.Join(base, "Monthly")
	default:
		return base
	}
}

// RelDir returns the vault-relative folder for this granularity, used in
// wikilinks.
func (g Granularity) RelDir(rel string) string {
	switch g {
	case Weekly:
		return rel + "/Weekly"
	case Monthly:
		return rel + "/Monthly"
	default:
		return rel
	}
}

// BucketStart returns the first instant covered by a bucket key, used to
// order digests by recency. Unparseable keys sort to the zero time.
func (g Granularity) BucketStart(key string) time.Time {
	switch g {
	case Daily:
		t, _ := time.Parse("2006-01-02", key)
		return t
	case Weekly:
		var year, week int
		if _, err := fmt.Sscanf(key, "%d-W%d", &year, &week); err != nil {
			return time.Time{}
		}
		return isoWeekStart(year, week)
	case Monthly:
		t, _ := time.Parse("2006-01", key)
		return t
	default:
		return time.Time{}
	}
}

// isoWeekStart returns the Monday starting the given ISO week. January 4th
// is always inside ISO week 1.
func isoWeekStart(year, week int) time.Time {
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	weekday := int(jan4.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday
	}
	week1Monday := jan4.AddDate(0, 0, 1-weekday)
	return week1Monday.AddDate(0, 0, (week-1)*7)
}
