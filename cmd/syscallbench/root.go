package main

import (
	"github.com/spf13/cobra"

	"hostbench/internal/benchmark"
	"hostbench/internal/cmdutils"
	"hostbench/internal/config"
	"hostbench/internal/metrics"
	"hostbench/internal/report"
	"hostbench/internal/syscallbench"
	"hostbench/internal/telemetry"
)

// newLoop allows the clock to be swapped in tests.
var newLoop = benchmark.NewLoop

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "syscallbench",
		Short: "Measure raw syscall latency",
		Long: `Calls a trivial syscall (getpid by default) through the raw syscall entry
point many times, reading the monotonic clock only before and after the timed
iterations, and reports the average cost per call and the call rate.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runSyscallBench,
	}
	cmdutils.AddCommonFlags(cmd)
	cmd.Flags().Int("iterations", syscallbench.DefaultIterations, "Timed iterations")
	cmd.Flags().Int("warmup", syscallbench.DefaultWarmup, "Untimed warmup iterations")
	cmd.Flags().String("syscall", syscallbench.DefaultSyscall, "Syscall to measure")
	return cmd
}

func runSyscallBench(cmd *cobra.Command, args []string) error {
	cfg, err := cmdutils.Setup(cmd, config.SectionSyscall, map[string]string{
		"iterations": "syscall.iterations",
		"warmup":     "syscall.warmup",
		"syscall":    "syscall.name",
	})
	if err != nil {
		return err
	}

	m := metrics.NewMetrics()
	stop, err := cmdutils.StartMetrics(cfg.MetricsAddr, m)
	if err != nil {
		return err
	}
	defer stop()

	loopCfg := benchmark.LoopConfig{Warmup: cfg.Syscall.Warmup, Iterations: cfg.Syscall.Iterations}
	telemetry.LogInfo("Starting syscall benchmark", "syscall", cfg.Syscall.Name, "iterations", loopCfg.Iterations, "warmup", loopCfg.Warmup)

	stats, err := syscallbench.Run(newLoop(), cfg.Syscall.Name, loopCfg)
	if err != nil {
		return err
	}
	summary := benchmark.Summarize(stats)
	m.ObserveSyscall(cfg.Syscall.Name, summary)
	telemetry.LogInfo("Syscall benchmark complete", "elapsed", stats.Elapsed, "ns_per_op", summary.AvgNsPerOp)

	return report.WriteSyscall(cmd.OutOrStdout(), report.Syscall{
		Name:   cfg.Syscall.Name,
		Config: loopCfg,
		Stats:  stats,
	})
}
