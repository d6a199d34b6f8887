package benchmark

import (
	"errors"
	"time"
)

// ErrInvalidConfig is returned before a run starts when its parameters are out of range.
var ErrInvalidConfig = errors.New("invalid benchmark configuration")

// Op is the operation measured by a Loop.
type Op func()

// LoopConfig holds the parameters of a calibrated loop run.
type LoopConfig struct {
	Warmup     int `mapstructure:"warmup"`
	Iterations int `mapstructure:"iterations"`
}

// DutyCycleConfig holds the parameters of a busy/idle run.
type DutyCycleConfig struct {
	Burst time.Duration
	Idle  time.Duration
	Total time.Duration
}

// NewDutyCycleConfig converts the integer millisecond/second settings used on
// the command line.
func NewDutyCycleConfig(burstMs, sleepMs, durationSec int) DutyCycleConfig {
	return DutyCycleConfig{
		Burst: time.Duration(burstMs) * time.Millisecond,
		Idle:  time.Duration(sleepMs) * time.Millisecond,
		Total: time.Duration(durationSec) * time.Second,
	}
}

// Stats accumulates the counters of a single run.
type Stats struct {
	Elapsed    time.Duration `json:"elapsed_ns"`
	Iterations int64         `json:"iterations"`

	// Duty-cycle runs only.
	BusyBatches int64         `json:"busy_batches,omitempty"`
	BusyTime    time.Duration `json:"busy_ns,omitempty"`
	IdleTime    time.Duration `json:"idle_ns,omitempty"`
}
