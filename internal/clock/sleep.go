package clock

import (
	"sync/atomic"
	"time"
)

// NanoSleeper suspends the calling thread for the requested duration.
//
// If the sleep is interrupted by a signal it is resumed for the remaining
// time, so an idle phase is never shortened. Interruptions are counted.
type NanoSleeper struct {
	interrupts atomic.Int64

	// OnInterrupt, if set, is called with the time still left to sleep
	// each time a signal cuts the sleep short.
	OnInterrupt func(remaining time.Duration)
}

// Interrupts reports how many times a sleep had to be resumed.
func (s *NanoSleeper) Interrupts() int64 {
	return s.interrupts.Load()
}

// Sleep returns immediately for d <= 0.
func (s *NanoSleeper) Sleep(d time.Duration) error {
	if d <= 0 {
		return nil
	}
	return s.sleep(d)
}

func (s *NanoSleeper) interrupted(remaining time.Duration) {
	s.interrupts.Add(1)
	if s.OnInterrupt != nil {
		s.OnInterrupt(remaining)
	}
}
