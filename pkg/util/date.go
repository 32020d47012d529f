package util

import (
	"time"
)

// TimestampLayout is the only accepted timestamp shape: second precision, UTC designator.
const TimestampLayout = "2006-01-02T15:04:05Z"

// ParseTimestamp parses s strictly as YYYY-MM-DDTHH:MM:SSZ. Returns (t, true) on success.
func ParseTimestamp(s string) (time.Time, bool) {
	// time.Parse tolerates fractional seconds after the seconds field; reject anything but the
	// exact width.
	if len(s) != len(TimestampLayout) {
		return time.Time{}, false
	}
	t, err := time.Parse(TimestampLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// FormatTimestamp renders t in TimestampLayout after converting to UTC.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// SecondsBetween returns to-from in fractional seconds.
func SecondsBetween(from, to time.Time) float64 {
	return to.Sub(from).Seconds()
}
