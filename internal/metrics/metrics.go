package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"hostbench/internal/benchmark"
)

const namespace = "hostbench"

// Metrics represents the collection of benchmark metrics. Each instance owns
// its registry so several can coexist in one process.
type Metrics struct {
	Registry *prometheus.Registry

	SyscallNsPerOp   *prometheus.GaugeVec
	SyscallRate      *prometheus.GaugeVec
	DutyCycles       prometheus.Counter
	BusyPhase        prometheus.Histogram
	IdlePhase        prometheus.Histogram
	BusyBatches      prometheus.Counter
	SleepInterrupts  prometheus.Counter
	ConfiguredDuty   prometheus.Gauge
	ThrottledPeriods prometheus.Counter
}

// NewMetrics creates and registers all metrics plus the Go and process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{Registry: prometheus.NewRegistry()}

	m.SyscallNsPerOp = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "syscall_ns_per_op",
			Help:      "Average cost of one syscall in nanoseconds",
		},
		[]string{"syscall"},
	)

	m.SyscallRate = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "syscall_rate_per_second",
			Help:      "Syscalls completed per second",
		},
		[]string{"syscall"},
	)

	m.DutyCycles = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duty_cycles_total",
			Help:      "Completed busy+idle cycles",
		},
	)

	phaseBuckets := prometheus.ExponentialBuckets(0.001, 2, 14)
	m.BusyPhase = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "busy_phase_seconds",
			Help:      "Measured length of busy phases",
			Buckets:   phaseBuckets,
		},
	)

	m.IdlePhase = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "idle_phase_seconds",
			Help:      "Measured length of idle phases",
			Buckets:   phaseBuckets,
		},
	)

	m.BusyBatches = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "busy_batches_total",
			Help:      "Arithmetic batches executed in busy phases",
		},
	)

	m.SleepInterrupts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sleep_interrupts_total",
			Help:      "Idle sleeps resumed after signal delivery",
		},
	)

	m.ConfiguredDuty = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "duty_cycle_configured_percent",
			Help:      "Configured busy share of each cycle",
		},
	)

	m.ThrottledPeriods = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cgroup_throttled_periods_total",
			Help:      "CFS periods in which the cgroup was throttled during the run",
		},
	)

	m.Registry.MustRegister(
		m.SyscallNsPerOp,
		m.SyscallRate,
		m.DutyCycles,
		m.BusyPhase,
		m.IdlePhase,
		m.BusyBatches,
		m.SleepInterrupts,
		m.ConfiguredDuty,
		m.ThrottledPeriods,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// ObserveSyscall records the outcome of a syscall latency run.
func (m *Metrics) ObserveSyscall(name string, s benchmark.Summary) {
	m.SyscallNsPerOp.WithLabelValues(name).Set(s.AvgNsPerOp)
	m.SyscallRate.WithLabelValues(name).Set(s.MillionsPerSec * 1e6)
}

// ObserveCycle records one completed duty cycle.
func (m *Metrics) ObserveCycle(c benchmark.Cycle) {
	m.DutyCycles.Inc()
	m.BusyBatches.Add(float64(c.Batches))
	m.BusyPhase.Observe(c.Busy.Seconds())
	m.IdlePhase.Observe(c.Idle.Seconds())
}

// TrackPhase exports the current duty-cycle phase (0 busy, 1 idle, 2 done)
// as read from phase at scrape time. Call it at most once per instance.
func (m *Metrics) TrackPhase(phase func() benchmark.Phase) {
	m.Registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "duty_cycle_phase",
			Help:      "Current duty-cycle phase: 0 busy, 1 idle, 2 done",
		},
		func() float64 { return float64(phase()) },
	))
}
