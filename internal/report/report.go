// Package report renders benchmark results as human-readable text.
// The wording is for people, not parsers.
package report

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"hostbench/internal/benchmark"
	"hostbench/internal/cgroup"
	"hostbench/internal/procstat"
)

var titleStyle = lipgloss.NewStyle().Bold(true)

func newTabWriter(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// Syscall describes a completed syscall latency run.
type Syscall struct {
	Name   string
	Config benchmark.LoopConfig
	Stats  benchmark.Stats
}

// WriteSyscall prints the result of a syscall latency run.
func WriteSyscall(w io.Writer, r Syscall) error {
	s := benchmark.Summarize(r.Stats)

	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("=== %s() Syscall Benchmark ===", r.Name)))
	tw := newTabWriter(w)
	fmt.Fprintf(tw, "Iterations:\t%s\n", humanize.Comma(r.Stats.Iterations))
	fmt.Fprintf(tw, "Warmup:\t%s\n", humanize.Comma(int64(r.Config.Warmup)))
	fmt.Fprintf(tw, "Total time:\t%.2f seconds\n", s.TotalSeconds)
	if s.Degenerate {
		fmt.Fprintf(tw, "Average:\tn/a\n")
		fmt.Fprintf(tw, "Rate:\tn/a (no iterations or no measurable time)\n")
	} else {
		fmt.Fprintf(tw, "Average:\t%.2f nanoseconds per syscall\n", s.AvgNsPerOp)
		fmt.Fprintf(tw, "Rate:\t%.2f million syscalls/second\n", s.MillionsPerSec)
	}
	return tw.Flush()
}

// WriteThrottleStart prints the parameters of a duty-cycle run before it begins.
func WriteThrottleStart(w io.Writer, cfg benchmark.DutyCycleConfig, batchSize int) error {
	fmt.Fprintln(w, titleStyle.Render("Pure CPU Workload Starting"))
	tw := newTabWriter(w)
	fmt.Fprintf(tw, "  Burst:\t%dms CPU\n", cfg.Burst.Milliseconds())
	fmt.Fprintf(tw, "  Sleep:\t%dms idle\n", cfg.Idle.Milliseconds())
	fmt.Fprintf(tw, "  Duration:\t%d seconds\n", int64(cfg.Total/time.Second))
	fmt.Fprintf(tw, "  Batch:\t%s operations per clock poll\n", humanize.Comma(int64(batchSize)))
	fmt.Fprintf(tw, "  Pattern:\tMinimal syscall overhead for accurate measurement\n")
	return tw.Flush()
}

// Throttle describes a completed or interrupted duty-cycle run. Optional
// sections are nil when the host could not provide them.
type Throttle struct {
	Config      benchmark.DutyCycleConfig
	Stats       benchmark.Stats
	Interrupted bool
	Interrupts  int64
	CPUTime     *time.Duration
	Quota       *cgroup.Quota
	Throttling  *cgroup.CPUStat
}

// WriteThrottle prints the result of a duty-cycle run.
func WriteThrottle(w io.Writer, r Throttle) error {
	title := "Workload Complete"
	if r.Interrupted {
		title = "Workload Interrupted"
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, titleStyle.Render(title))

	tw := newTabWriter(w)
	fmt.Fprintf(tw, "  Iterations:\t%s\n", humanize.Comma(r.Stats.Iterations))
	fmt.Fprintf(tw, "  Actual duration:\t%.2f seconds\n", r.Stats.Elapsed.Seconds())
	fmt.Fprintf(tw, "  Expected duty cycle:\t%.1f%%\n", benchmark.DutyCyclePercent(r.Config))
	if r.Stats.Iterations > 0 {
		fmt.Fprintf(tw, "  Measured duty cycle:\t%.1f%%\n", benchmark.MeasuredDutyCyclePercent(r.Stats))
		fmt.Fprintf(tw, "  Clock polls per burst:\t%.1f\n", float64(r.Stats.BusyBatches)/float64(r.Stats.Iterations))
	}
	if r.CPUTime != nil && r.Stats.Elapsed > 0 {
		fmt.Fprintf(tw, "  CPU utilization:\t%.1f%% (%.2fs CPU)\n",
			procstat.Utilization(*r.CPUTime, r.Stats.Elapsed), r.CPUTime.Seconds())
	}
	fmt.Fprintf(tw, "  Sleep interrupts:\t%d\n", r.Interrupts)
	if r.Quota != nil {
		if r.Quota.Unlimited {
			fmt.Fprintf(tw, "  Cgroup CPU quota:\tunlimited\n")
		} else {
			fmt.Fprintf(tw, "  Cgroup CPU quota:\t%.2f CPUs (%v per %v)\n", r.Quota.CPUs(), r.Quota.Quota, r.Quota.Period)
		}
	}
	if r.Throttling != nil {
		fmt.Fprintf(tw, "  Throttled periods:\t%s of %s (%.1f%%), %v throttled\n",
			humanize.Comma(r.Throttling.Throttled), humanize.Comma(r.Throttling.Periods),
			r.Throttling.ThrottledPercent(), r.Throttling.ThrottledTime)
	}
	return tw.Flush()
}
