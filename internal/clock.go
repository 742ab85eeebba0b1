package internal

import "time"

// Clock is injected everywhere "now" or "today" is needed so window
// boundaries stay deterministic under test.
type Clock interface {
	Now() time.Time
	Today() string
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

func (SystemClock) Today() string { return time.Now().Format(DateLayout) }
