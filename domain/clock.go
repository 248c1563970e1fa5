package domain

import "time"

// Clock abstracts wall-clock access so presence decisions (heartbeats,
// staleness) stay deterministic in tests.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock backed by time.Now.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
