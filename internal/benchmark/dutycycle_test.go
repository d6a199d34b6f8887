package benchmark

import (
	"context"
	"errors"
	"testing"
	"time"

	"hostbench/internal/clock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFakeDutyCycle(step time.Duration) (*DutyCycle, *stepClock, *fakeSleeper) {
	clk := &stepClock{step: step}
	sl := &fakeSleeper{clock: clk}
	return &DutyCycle{Clock: clk, Sleeper: sl, BatchSize: 10}, clk, sl
}

func TestDutyCycle_CycleCount(t *testing.T) {
	d, _, sl := newFakeDutyCycle(time.Millisecond)
	var cycles []Cycle
	d.OnCycle = func(c Cycle) { cycles = append(cycles, c) }

	stats, err := d.Run(context.Background(), NewDutyCycleConfig(50, 50, 1))
	require.NoError(t, err)

	// Each cycle is 50 polls of 1ms, a 50ms sleep, one 1ms read after it and
	// one more after the callback.
	assert.Equal(t, int64(10), stats.Iterations)
	assert.Equal(t, 1020*time.Millisecond, stats.Elapsed)
	assert.Equal(t, int64(500), stats.BusyBatches)
	assert.Equal(t, 500*time.Millisecond, stats.BusyTime)
	assert.Equal(t, 510*time.Millisecond, stats.IdleTime)
	assert.Len(t, sl.calls, 10)
	for _, c := range sl.calls {
		assert.Equal(t, 50*time.Millisecond, c)
	}

	require.Len(t, cycles, 10)
	assert.Equal(t, int64(1), cycles[0].Index)
	assert.Equal(t, int64(10), cycles[9].Index)
	assert.Equal(t, int64(50), cycles[0].Batches)
}

func TestDutyCycle_ZeroBurstRunsOneBatch(t *testing.T) {
	d, _, _ := newFakeDutyCycle(time.Millisecond)
	var cycles []Cycle
	d.OnCycle = func(c Cycle) { cycles = append(cycles, c) }

	stats, err := d.Run(context.Background(), DutyCycleConfig{Burst: 0, Idle: 10 * time.Millisecond, Total: 100 * time.Millisecond})
	require.NoError(t, err)
	require.NotEmpty(t, cycles)
	for _, c := range cycles {
		assert.Equal(t, int64(1), c.Batches)
	}
	assert.Equal(t, stats.Iterations, stats.BusyBatches)
}

func TestDutyCycle_ZeroIdle(t *testing.T) {
	d, _, sl := newFakeDutyCycle(time.Millisecond)
	stats, err := d.Run(context.Background(), DutyCycleConfig{Burst: 5 * time.Millisecond, Idle: 0, Total: 60 * time.Millisecond})
	require.NoError(t, err)
	// 5 polls plus the post-idle read.
	assert.Equal(t, int64(10), stats.Iterations)
	for _, c := range sl.calls {
		assert.Zero(t, c)
	}
}

func TestDutyCycle_ZeroTotalRunsNothing(t *testing.T) {
	d, _, sl := newFakeDutyCycle(time.Millisecond)
	stats, err := d.Run(context.Background(), NewDutyCycleConfig(50, 50, 0))
	require.NoError(t, err)
	assert.Zero(t, stats.Iterations)
	assert.Zero(t, stats.Elapsed)
	assert.Empty(t, sl.calls)
}

func TestDutyCycle_InvalidConfig(t *testing.T) {
	tests := []DutyCycleConfig{
		{Burst: -1, Idle: 1, Total: 1},
		{Burst: 1, Idle: -1, Total: 1},
		{Burst: 1, Idle: 1, Total: -1},
	}
	for _, cfg := range tests {
		d, clk, _ := newFakeDutyCycle(time.Millisecond)
		_, err := d.Run(context.Background(), cfg)
		assert.ErrorIs(t, err, ErrInvalidConfig)
		assert.Zero(t, clk.reads)
	}
}

func TestDutyCycle_CancelAtPhaseBoundary(t *testing.T) {
	d, _, _ := newFakeDutyCycle(time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	d.OnCycle = func(c Cycle) {
		if c.Index == 3 {
			cancel()
		}
	}

	stats, err := d.Run(ctx, NewDutyCycleConfig(50, 50, 60))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int64(3), stats.Iterations)
	assert.Equal(t, 306*time.Millisecond, stats.Elapsed)
}

func TestDutyCycle_CallbackTimeNotChargedToBusy(t *testing.T) {
	d, clk, _ := newFakeDutyCycle(time.Millisecond)
	var cycles []Cycle
	d.OnCycle = func(c Cycle) {
		cycles = append(cycles, c)
		clk.t += clock.Sample(30 * time.Millisecond)
	}

	stats, err := d.Run(context.Background(), NewDutyCycleConfig(50, 50, 1))
	require.NoError(t, err)

	require.NotEmpty(t, cycles)
	for _, c := range cycles {
		assert.Equal(t, int64(50), c.Batches, "cycle %d", c.Index)
		assert.Equal(t, 50*time.Millisecond, c.Busy, "cycle %d", c.Index)
		assert.Equal(t, 51*time.Millisecond, c.Idle, "cycle %d", c.Index)
	}
	assert.Equal(t, int64(50)*stats.Iterations, stats.BusyBatches)
	assert.InDelta(t, 50, MeasuredDutyCyclePercent(stats), 1)
	// 132ms per cycle including the callback.
	assert.Equal(t, int64(8), stats.Iterations)
	assert.Equal(t, 1056*time.Millisecond, stats.Elapsed)
}

func TestDutyCycle_SleepError(t *testing.T) {
	d, _, sl := newFakeDutyCycle(time.Millisecond)
	boom := errors.New("boom")
	sl.err = boom

	stats, err := d.Run(context.Background(), NewDutyCycleConfig(5, 5, 1))
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, stats.Iterations)
	assert.Equal(t, int64(5), stats.BusyBatches)
}

func TestDutyCycle_DefaultBatchSize(t *testing.T) {
	d := NewDutyCycle(&clock.NanoSleeper{})
	assert.Equal(t, DefaultBatchSize, d.BatchSize)

	d.BatchSize = 0
	d.Clock, d.Sleeper = &stepClock{step: time.Millisecond}, &fakeSleeper{clock: &stepClock{}}
	stats, err := d.Run(context.Background(), DutyCycleConfig{Burst: 0, Total: time.Millisecond})
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Iterations)
}

func TestDutyCycle_RealTime(t *testing.T) {
	if testing.Short() {
		t.Skip("runs for about a second")
	}
	d := NewDutyCycle(&clock.NanoSleeper{})
	start := time.Now()
	stats, err := d.Run(context.Background(), NewDutyCycleConfig(50, 50, 1))
	wall := time.Since(start)
	require.NoError(t, err)

	assert.InDelta(t, 10, stats.Iterations, 1)
	assert.GreaterOrEqual(t, stats.Elapsed, time.Second)
	assert.LessOrEqual(t, stats.Elapsed, time.Second+100*time.Millisecond+150*time.Millisecond)
	assert.GreaterOrEqual(t, wall, time.Second)
	assert.InDelta(t, 50, MeasuredDutyCyclePercent(stats), 10)
}

// phaseSleeper records the controller's phase whenever it is asked to sleep.
type phaseSleeper struct {
	d      *DutyCycle
	phases []Phase
}

func (s *phaseSleeper) Sleep(time.Duration) error {
	s.phases = append(s.phases, s.d.Phase())
	return nil
}

func TestDutyCycle_Phase(t *testing.T) {
	clk := &stepClock{step: time.Millisecond}
	d := &DutyCycle{Clock: clk, BatchSize: 10}
	sl := &phaseSleeper{d: d}
	d.Sleeper = sl
	var inCallback []Phase
	d.OnCycle = func(Cycle) { inCallback = append(inCallback, d.Phase()) }

	stats, err := d.Run(context.Background(), DutyCycleConfig{Burst: 5 * time.Millisecond, Total: 20 * time.Millisecond})
	require.NoError(t, err)
	require.NotZero(t, stats.Iterations)

	for _, p := range sl.phases {
		assert.Equal(t, PhaseIdle, p)
	}
	for _, p := range inCallback {
		assert.Equal(t, PhaseIdle, p)
	}
	assert.Equal(t, PhaseDone, d.Phase())
}

func TestPhase_String(t *testing.T) {
	assert.Equal(t, "busy", PhaseBusy.String())
	assert.Equal(t, "idle", PhaseIdle.String())
	assert.Equal(t, "done", PhaseDone.String())
	assert.Equal(t, "Phase(7)", Phase(7).String())
}
