package retry

import "time"

// Clock abstracts time for retry scheduling.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

// realClock implements Clock for production use.
type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

func (realClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

// SystemClock returns the wall clock.
func SystemClock() Clock {
	return realClock{}
}
