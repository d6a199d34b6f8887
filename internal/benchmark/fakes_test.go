package benchmark

import (
	"time"

	"hostbench/internal/clock"
)

// stepClock advances by step on every read.
type stepClock struct {
	t     clock.Sample
	step  time.Duration
	reads int
}

func (c *stepClock) Now() clock.Sample {
	c.t += clock.Sample(c.step)
	c.reads++
	return c.t
}

// fakeSleeper advances the clock instead of blocking.
type fakeSleeper struct {
	clock *stepClock
	calls []time.Duration
	err   error
}

func (s *fakeSleeper) Sleep(d time.Duration) error {
	s.calls = append(s.calls, d)
	if s.err != nil {
		return s.err
	}
	if d > 0 {
		s.clock.t += clock.Sample(d)
	}
	return nil
}
