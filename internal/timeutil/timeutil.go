package timeutil

import "time"

// UnixMillis converts t to the unix-millisecond representation used by the
// simulation clock.
func UnixMillis(t time.Time) int64 {
	return t.UnixMilli()
}

// FromMillis converts a simulation-clock stamp back into a time.Time.
func FromMillis(ms int64) time.Time {
	return time.UnixMilli(ms)
}
