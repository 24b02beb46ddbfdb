package engine

import "github.com/jonboulle/clockwork"

// Clock abstracts time.Now() and timers to allow deterministic testing.
// The gesture controller schedules its return animation on it and the UI
// ticker samples the base instant from it.
type Clock = clockwork.Clock

// NewRealClock returns the wall clock used in production.
func NewRealClock() Clock {
	return clockwork.NewRealClock()
}
