package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hostbench/internal/benchmark"
)

func TestNewMetrics(t *testing.T) {
	m := NewMetrics()

	assert.NotNil(t, m.Registry)
	assert.NotNil(t, m.SyscallNsPerOp)
	assert.NotNil(t, m.SyscallRate)
	assert.NotNil(t, m.DutyCycles)
	assert.NotNil(t, m.BusyPhase)
	assert.NotNil(t, m.IdlePhase)
	assert.NotNil(t, m.BusyBatches)
	assert.NotNil(t, m.SleepInterrupts)
	assert.NotNil(t, m.ConfiguredDuty)
	assert.NotNil(t, m.ThrottledPeriods)

	// Separate registries, so a second instance must not panic.
	assert.NotPanics(t, func() { NewMetrics() })
}

func TestObserveSyscall(t *testing.T) {
	m := NewMetrics()
	m.ObserveSyscall("getpid", benchmark.Summarize(benchmark.Stats{Elapsed: time.Second, Iterations: 1_000_000}))

	assert.Equal(t, 1000.0, testutil.ToFloat64(m.SyscallNsPerOp.WithLabelValues("getpid")))
	assert.Equal(t, 1e6, testutil.ToFloat64(m.SyscallRate.WithLabelValues("getpid")))
}

func TestObserveCycle(t *testing.T) {
	m := NewMetrics()
	m.ObserveCycle(benchmark.Cycle{Index: 1, Busy: 50 * time.Millisecond, Idle: 50 * time.Millisecond, Batches: 40})
	m.ObserveCycle(benchmark.Cycle{Index: 2, Busy: 51 * time.Millisecond, Idle: 50 * time.Millisecond, Batches: 41})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.DutyCycles))
	assert.Equal(t, 81.0, testutil.ToFloat64(m.BusyBatches))

	var pb dto.Metric
	require.NoError(t, m.BusyPhase.Write(&pb))
	assert.Equal(t, uint64(2), pb.GetHistogram().GetSampleCount())
	assert.InDelta(t, 0.101, pb.GetHistogram().GetSampleSum(), 1e-9)
}

func TestTrackPhase(t *testing.T) {
	m := NewMetrics()
	current := benchmark.PhaseBusy
	m.TrackPhase(func() benchmark.Phase { return current })

	phaseValue := func() float64 {
		families, err := m.Registry.Gather()
		require.NoError(t, err)
		for _, f := range families {
			if f.GetName() == "hostbench_duty_cycle_phase" {
				return f.GetMetric()[0].GetGauge().GetValue()
			}
		}
		t.Fatal("hostbench_duty_cycle_phase not gathered")
		return 0
	}

	assert.Equal(t, 0.0, phaseValue())
	current = benchmark.PhaseDone
	assert.Equal(t, 2.0, phaseValue())
}

func TestRegistryHandler(t *testing.T) {
	m := NewMetrics()
	m.DutyCycles.Inc()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "hostbench_duty_cycles_total 1")
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
