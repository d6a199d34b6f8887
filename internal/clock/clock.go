// Package clock wraps the host's monotonic time source and blocking sleep
// primitive behind small interfaces so the measurement loops can be driven
// by fakes in tests.
package clock

import (
	"errors"
	"time"
)

// ErrUnavailable is raised when the monotonic time source cannot be read.
var ErrUnavailable = errors.New("monotonic clock unavailable")

// Sample is a monotonic timestamp in nanoseconds since an arbitrary origin.
type Sample int64

// Clock returns monotonic timestamps.
type Clock interface {
	Now() Sample
}

// Sleeper blocks the calling goroutine for a duration.
type Sleeper interface {
	Sleep(d time.Duration) error
}

// Elapsed returns b - a. Samples taken out of order yield zero.
func Elapsed(a, b Sample) time.Duration {
	if b < a {
		return 0
	}
	return time.Duration(b - a)
}

// Monotonic is the production Clock.
type Monotonic struct{}

// Now panics with an error wrapping ErrUnavailable if the clock cannot be read.
func (Monotonic) Now() Sample {
	s, err := now()
	if err != nil {
		panic(err)
	}
	return s
}
