package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"hostbench/internal/benchmark"
	"hostbench/internal/cgroup"
	"hostbench/internal/clock"
	"hostbench/internal/cmdutils"
	"hostbench/internal/config"
	"hostbench/internal/metrics"
	"hostbench/internal/procstat"
	"hostbench/internal/report"
	"hostbench/internal/telemetry"
)

// newDutyCycle allows the clock and sleeper to be swapped in tests.
var newDutyCycle = func(s *clock.NanoSleeper) *benchmark.DutyCycle {
	return benchmark.NewDutyCycle(s)
}

var positionalKeys = []string{"burst_ms", "sleep_ms", "duration_sec"}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "throttlebench [burst_ms] [sleep_ms] [duration_sec]",
		Short: "Run a busy/idle CPU duty cycle",
		Long: `Alternates burst_ms of pure computation with sleep_ms of real sleep until
duration_sec has passed (defaults 50, 50 and 60). The busy phase makes no
syscalls other than an occasional clock read, so any slowdown is down to CPU
throttling rather than I/O.

The run stops at the next phase boundary on SIGINT or SIGTERM.`,
		Args:          cobra.MaximumNArgs(len(positionalKeys)),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runThrottleBench,
	}
	cmdutils.AddCommonFlags(cmd)
	cmd.Flags().Int("batch-size", benchmark.DefaultBatchSize, "Arithmetic operations between clock polls in the busy phase")
	cmd.Flags().Bool("cgroup", true, "Report cgroup CPU quota and throttling counters")
	return cmd
}

// applyPositional overrides the throttle settings with positional arguments.
func applyPositional(cfg *config.ThrottleConfig, args []string) error {
	targets := []*int{&cfg.BurstMs, &cfg.SleepMs, &cfg.DurationSec}
	for i, arg := range args {
		v, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("invalid %s %q: must be an integer", positionalKeys[i], arg)
		}
		*targets[i] = v
	}
	return nil
}

func runThrottleBench(cmd *cobra.Command, args []string) error {
	cfg, err := cmdutils.Setup(cmd, config.SectionThrottle, map[string]string{
		"batch-size": "throttle.batch_size",
		"cgroup":     "throttle.cgroup",
	})
	if err != nil {
		return err
	}
	if err := applyPositional(&cfg.Throttle, args); err != nil {
		return err
	}
	if err := config.Validate(cfg, config.SectionThrottle); err != nil {
		return err
	}

	dcfg := benchmark.NewDutyCycleConfig(cfg.Throttle.BurstMs, cfg.Throttle.SleepMs, cfg.Throttle.DurationSec)
	out := cmd.OutOrStdout()
	if err := report.WriteThrottleStart(out, dcfg, cfg.Throttle.BatchSize); err != nil {
		return err
	}

	m := metrics.NewMetrics()
	m.ConfiguredDuty.Set(benchmark.DutyCyclePercent(dcfg))
	stop, err := cmdutils.StartMetrics(cfg.MetricsAddr, m)
	if err != nil {
		return err
	}
	defer stop()

	sleeper := &clock.NanoSleeper{
		OnInterrupt: func(remaining time.Duration) {
			m.SleepInterrupts.Inc()
			telemetry.LogDebug("Idle sleep interrupted, resuming", "remaining", remaining)
		},
	}
	dc := newDutyCycle(sleeper)
	dc.BatchSize = cfg.Throttle.BatchSize
	m.TrackPhase(dc.Phase)
	dc.OnCycle = func(c benchmark.Cycle) {
		m.ObserveCycle(c)
		telemetry.LogDebug("Cycle complete", "cycle", c.Index, "busy", c.Busy, "idle", c.Idle, "batches", c.Batches)
	}

	var cg *cgroup.Reader
	var cgBefore cgroup.CPUStat
	if cfg.Throttle.Cgroup {
		cg, cgBefore = openCgroup()
	}
	cpu, cpuBefore := openCPUSampler()

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	telemetry.LogInfo("Starting duty cycle", "burst", dcfg.Burst, "idle", dcfg.Idle, "total", dcfg.Total, "batch_size", dc.BatchSize)
	stats, runErr := dc.Run(ctx, dcfg)
	interrupted := errors.Is(runErr, context.Canceled)
	if runErr != nil && !interrupted {
		return runErr
	}
	telemetry.LogInfo("Duty cycle finished", "cycles", stats.Iterations, "elapsed", stats.Elapsed, "interrupted", interrupted)

	res := report.Throttle{
		Config:      dcfg,
		Stats:       stats,
		Interrupted: interrupted,
		Interrupts:  sleeper.Interrupts(),
	}
	if cpu != nil {
		if after, err := cpu.CPUTime(); err == nil {
			used := after - cpuBefore
			res.CPUTime = &used
		}
	}
	if cg != nil {
		if q, err := cg.Quota(); err == nil {
			res.Quota = &q
		}
		if after, err := cg.CPUStat(); err == nil {
			delta := after.Sub(cgBefore)
			res.Throttling = &delta
			m.ThrottledPeriods.Add(float64(delta.Throttled))
		}
	}

	if err := report.WriteThrottle(out, res); err != nil {
		return err
	}
	if interrupted {
		return fmt.Errorf("run interrupted after %d cycles", stats.Iterations)
	}
	return nil
}

func openCgroup() (*cgroup.Reader, cgroup.CPUStat) {
	r, err := cgroup.NewReader()
	if err != nil {
		telemetry.LogDebug("cgroup accounting unavailable", "error", err)
		return nil, cgroup.CPUStat{}
	}
	st, err := r.CPUStat()
	if err != nil {
		telemetry.LogDebug("cgroup cpu.stat unavailable", "error", err)
		return nil, cgroup.CPUStat{}
	}
	return r, st
}

func openCPUSampler() (*procstat.Sampler, time.Duration) {
	s, err := procstat.NewSampler()
	if err != nil {
		telemetry.LogDebug("process cpu accounting unavailable", "error", err)
		return nil, 0
	}
	before, err := s.CPUTime()
	if err != nil {
		telemetry.LogDebug("process cpu accounting unavailable", "error", err)
		return nil, 0
	}
	return s, before
}
