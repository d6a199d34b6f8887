package benchmark

import "time"

// Summary holds the metrics derived from a Stats value.
type Summary struct {
	TotalSeconds   float64
	AvgNsPerOp     float64
	MillionsPerSec float64

	// Degenerate is set when no iterations ran or no time elapsed; the
	// rates are then left at zero.
	Degenerate bool
}

// Summarize derives totals and rates from stats. It does not modify stats.
func Summarize(stats Stats) Summary {
	s := Summary{TotalSeconds: stats.Elapsed.Seconds()}
	if stats.Iterations <= 0 || stats.Elapsed <= 0 {
		s.Degenerate = true
		return s
	}
	s.AvgNsPerOp = float64(stats.Elapsed.Nanoseconds()) / float64(stats.Iterations)
	s.MillionsPerSec = (float64(stats.Iterations) / 1e6) / s.TotalSeconds
	return s
}

// DutyCyclePercent is the configured share of busy time, burst/(burst+idle)*100.
func DutyCyclePercent(cfg DutyCycleConfig) float64 {
	return percent(cfg.Burst, cfg.Idle)
}

// MeasuredDutyCyclePercent is the share of busy time actually observed.
func MeasuredDutyCyclePercent(stats Stats) float64 {
	return percent(stats.BusyTime, stats.IdleTime)
}

func percent(busy, idle time.Duration) float64 {
	total := busy + idle
	if total <= 0 {
		return 0
	}
	return 100 * float64(busy) / float64(total)
}
