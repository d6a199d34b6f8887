// Package procstat samples the CPU time consumed by the current process.
package procstat

import (
	"fmt"
	"os"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

// Sampler reads user+system CPU time of one process.
type Sampler struct {
	proc *process.Process
}

// NewSampler returns a Sampler for the calling process.
func NewSampler() (*Sampler, error) {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, fmt.Errorf("failed to open process: %w", err)
	}
	return &Sampler{proc: p}, nil
}

// CPUTime is the total user+system time consumed so far. Resolution is the
// kernel's clock tick, typically 10ms.
func (s *Sampler) CPUTime() (time.Duration, error) {
	t, err := s.proc.Times()
	if err != nil {
		return 0, fmt.Errorf("failed to read cpu times: %w", err)
	}
	return time.Duration((t.User + t.System) * float64(time.Second)), nil
}

// Utilization is cpu as a percentage of wall.
func Utilization(cpu, wall time.Duration) float64 {
	if wall <= 0 {
		return 0
	}
	return 100 * float64(cpu) / float64(wall)
}
