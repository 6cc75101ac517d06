package models

import (
	"strings"
	"time"
)

// Layouts accepted for RawRecord.Date, tried in order. Dates without a zone are read as UTC.
var recordLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTimestamp converts an ISO-8601 date string to unix seconds.
// The second result is false when no layout matched.
func ParseTimestamp(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range recordLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return floorSeconds(t), true
		}
	}
	return 0, false
}

// floorSeconds rounds toward negative infinity, matching floor(ms / 1000)
func floorSeconds(t time.Time) int64 {
	ms := t.UnixMilli()
	sec := ms / 1000
	if ms%1000 < 0 {
		sec--
	}
	return sec
}

// FormatQueryTime renders t the way the backend expects start/end query values
func FormatQueryTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}

// DefaultRange returns the last `days` days ending at now
func DefaultRange(now time.Time, days int) DateRange {
	if days <= 0 {
		days = 30
	}
	return DateRange{
		Start: now.Add(-time.Duration(days) * 24 * time.Hour),
		End:   now,
	}
}

// CronSpec maps a frequency to a robfig/cron descriptor
func (f UpdateFrequency) CronSpec() string {
	switch f {
	case UpdateHourly:
		return "@hourly"
	case UpdateWeekly:
		return "@weekly"
	default:
		return "@daily"
	}
}
