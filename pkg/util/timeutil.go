package util

import "time"

// NowUTC exposes time.Now for deterministic testing.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// ElapsedMillis returns the whole milliseconds elapsed since start.
func ElapsedMillis(start time.Time) int64 {
	return NowUTC().Sub(start).Milliseconds()
}
