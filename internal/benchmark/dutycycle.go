package benchmark

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"hostbench/internal/clock"
)

// DefaultBatchSize is the number of arithmetic steps run between two clock
// polls in the busy phase. Larger batches poll less often but overshoot the
// burst duration by more.
const DefaultBatchSize = 1000

// Phase is a state of the duty-cycle controller.
type Phase int

const (
	PhaseBusy Phase = iota
	PhaseIdle
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseBusy:
		return "busy"
	case PhaseIdle:
		return "idle"
	case PhaseDone:
		return "done"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// Cycle describes one completed busy+idle pair.
type Cycle struct {
	Index   int64
	Busy    time.Duration
	Idle    time.Duration
	Batches int64
}

// sink receives the busy-loop accumulator so the loop has an observable result.
var sink atomic.Int64

// DutyCycle alternates pure computation with a real sleep until a total
// budget is spent.
//
// The budget is only checked between cycles, so a run may overshoot it by up
// to one burst+idle period.
type DutyCycle struct {
	Clock   clock.Clock
	Sleeper clock.Sleeper

	// BatchSize overrides DefaultBatchSize when positive.
	BatchSize int

	// OnCycle is called after every completed cycle, outside the busy phase.
	// The next burst is timed from a clock read taken after it returns.
	OnCycle func(Cycle)

	phase atomic.Int32
}

// NewDutyCycle returns a controller backed by the monotonic clock and the
// given sleeper.
func NewDutyCycle(sleeper clock.Sleeper) *DutyCycle {
	return &DutyCycle{
		Clock:     clock.Monotonic{},
		Sleeper:   sleeper,
		BatchSize: DefaultBatchSize,
	}
}

// Phase reports the state of the running (or last) run. It is safe to call
// from other goroutines.
func (d *DutyCycle) Phase() Phase {
	return Phase(d.phase.Load())
}

func (d *DutyCycle) enter(p Phase) {
	d.phase.Store(int32(p))
}

// Run drives the controller to completion. Cancelling ctx stops the run at the
// next phase boundary; the counters gathered so far are returned with ctx's error.
func (d *DutyCycle) Run(ctx context.Context, cfg DutyCycleConfig) (Stats, error) {
	if err := cfg.Validate(); err != nil {
		return Stats{}, err
	}
	batch := d.BatchSize
	if batch <= 0 {
		batch = DefaultBatchSize
	}
	defer d.enter(PhaseDone)

	var stats Stats
	start := d.Clock.Now()
	now := start
	for clock.Elapsed(start, now) < cfg.Total {
		if err := ctx.Err(); err != nil {
			stats.Elapsed = clock.Elapsed(start, now)
			return stats, err
		}

		d.enter(PhaseBusy)
		busyStart := now
		busyEnd, batches := d.busy(busyStart, cfg.Burst, batch)
		stats.BusyBatches += batches

		d.enter(PhaseIdle)
		if err := d.Sleeper.Sleep(cfg.Idle); err != nil {
			stats.Elapsed = clock.Elapsed(start, d.Clock.Now())
			return stats, fmt.Errorf("idle phase: %w", err)
		}
		now = d.Clock.Now()

		c := Cycle{
			Index:   stats.Iterations + 1,
			Busy:    clock.Elapsed(busyStart, busyEnd),
			Idle:    clock.Elapsed(busyEnd, now),
			Batches: batches,
		}
		stats.BusyTime += c.Busy
		stats.IdleTime += c.Idle
		stats.Iterations++
		if d.OnCycle != nil {
			d.OnCycle(c)
			now = d.Clock.Now()
		}
	}
	stats.Elapsed = clock.Elapsed(start, now)
	return stats, nil
}

// busy spins until burst has elapsed since from, reading the clock once per
// batch. It always runs at least one batch.
func (d *DutyCycle) busy(from clock.Sample, burst time.Duration, batch int) (clock.Sample, int64) {
	var acc, batches int64
	for {
		for i := 0; i < batch; i++ {
			acc += int64(i) * int64(i)
		}
		batches++
		now := d.Clock.Now()
		if clock.Elapsed(from, now) >= burst {
			sink.Add(acc)
			return now, batches
		}
	}
}

// Validate rejects negative durations. Zero burst or idle is allowed.
func (c DutyCycleConfig) Validate() error {
	if c.Burst < 0 {
		return fmt.Errorf("%w: burst must not be negative, got %v", ErrInvalidConfig, c.Burst)
	}
	if c.Idle < 0 {
		return fmt.Errorf("%w: idle must not be negative, got %v", ErrInvalidConfig, c.Idle)
	}
	if c.Total < 0 {
		return fmt.Errorf("%w: total duration must not be negative, got %v", ErrInvalidConfig, c.Total)
	}
	return nil
}
