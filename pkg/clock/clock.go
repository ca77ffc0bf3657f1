package clock

import "time"

// Clock abstracts wall-clock time so schedule- and quiet-hours-sensitive
// code can be tested against a fixed instant.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// New returns the wall clock.
func New() Clock { return realClock{} }

// Fixed is a Clock pinned to a settable instant.
type Fixed struct {
	Instant time.Time
}

func (f *Fixed) Now() time.Time { return f.Instant }

// Set moves the fixed clock to t.
func (f *Fixed) Set(t time.Time) { f.Instant = t }
