package benchmark

import (
	"fmt"

	"hostbench/internal/clock"
)

// Loop measures the average cost of a cheap operation.
//
// The clock is read exactly twice per run, once on each side of the timed
// iterations, so the cost of reading it does not end up in the result.
type Loop struct {
	Clock clock.Clock
}

// NewLoop returns a Loop backed by the monotonic clock.
func NewLoop() *Loop {
	return &Loop{Clock: clock.Monotonic{}}
}

// Run executes op cfg.Warmup times untimed, then cfg.Iterations times between
// two clock samples.
func (l *Loop) Run(cfg LoopConfig, op Op) (Stats, error) {
	if err := cfg.Validate(); err != nil {
		return Stats{}, err
	}

	for i := 0; i < cfg.Warmup; i++ {
		op()
	}

	start := l.Clock.Now()
	for i := 0; i < cfg.Iterations; i++ {
		op()
	}
	end := l.Clock.Now()

	return Stats{
		Elapsed:    clock.Elapsed(start, end),
		Iterations: int64(cfg.Iterations),
	}, nil
}

// Validate rejects a config that would produce a meaningless measurement.
func (c LoopConfig) Validate() error {
	if c.Iterations <= 0 {
		return fmt.Errorf("%w: iterations must be positive, got %d", ErrInvalidConfig, c.Iterations)
	}
	if c.Warmup < 0 {
		return fmt.Errorf("%w: warmup must not be negative, got %d", ErrInvalidConfig, c.Warmup)
	}
	return nil
}
