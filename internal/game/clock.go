package game

import "time"

// Clock supplies the current time. The play UI uses SystemClock; tests
// inject a fake to drive timing deterministically.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time {
	return time.Now()
}
