package domain

import "time"

const dayLayout = "2006-01-02"

// TimestampMillis converts t to milliseconds since the Unix epoch.
func TimestampMillis(t time.Time) int64 {
	return t.UnixMilli()
}

// TimeFromMillis converts milliseconds since the Unix epoch to a time in loc.
// A nil loc means time.Local.
func TimeFromMillis(ms int64, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.UnixMilli(ms).In(loc)
}

// LocalDay returns the calendar day (YYYY-MM-DD) the timestamp falls on in loc.
func LocalDay(ms int64, loc *time.Location) string {
	return TimeFromMillis(ms, loc).Format(dayLayout)
}

// CreatedAt returns the entry's timestamp as a local time.
func (e MoodEntry) CreatedAt() time.Time {
	return TimeFromMillis(e.Timestamp, nil)
}
