package accounts

import "time"

// Clock supplies the current time. Handlers and the activity engine take a
// Clock instead of reading time.Now so tests can pin the reference instant.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the wall clock.
func SystemClock() Clock { return systemClock{} }

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time { return f() }

// DaysBetween returns the number of whole days elapsed from earlier to now,
// truncated toward zero. A negative span clamps to 0.
func DaysBetween(now, earlier time.Time) int {
	delta := now.Sub(earlier)
	if delta < 0 {
		return 0
	}
	return int(delta / (24 * time.Hour))
}
