package config

import (
	"fmt"
	"math"
	"net"
	"strings"
	"time"
)

// Largest settings that still fit in a time.Duration.
const (
	maxMilliseconds = math.MaxInt64 / int64(time.Millisecond)
	maxSeconds      = math.MaxInt64 / int64(time.Second)
)

// Section names the part of the configuration a tool consumes.
type Section int

const (
	SectionSyscall Section = iota
	SectionThrottle
)

// ValidationError lists every problem found in a configuration.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "configuration validation failed:\n  " + strings.Join(e.Problems, "\n  ")
}

// Validate checks the common settings of cfg plus the given sections, or
// every section when none is given. Zero burst or sleep is allowed; zero or
// negative iteration counts and negative durations are not.
func Validate(cfg *Config, sections ...Section) error {
	if len(sections) == 0 {
		sections = []Section{SectionSyscall, SectionThrottle}
	}

	var problems []string
	if cfg.MetricsAddr != "" {
		if _, _, err := net.SplitHostPort(cfg.MetricsAddr); err != nil {
			problems = append(problems, fmt.Sprintf("metrics_addr must be host:port, got: %q", cfg.MetricsAddr))
		}
	}
	for _, s := range sections {
		switch s {
		case SectionSyscall:
			problems = append(problems, cfg.Syscall.problems()...)
		case SectionThrottle:
			problems = append(problems, cfg.Throttle.problems()...)
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

func (c SyscallConfig) problems() []string {
	var problems []string
	if c.Iterations <= 0 {
		problems = append(problems, fmt.Sprintf("syscall.iterations must be positive, got: %d", c.Iterations))
	}
	if c.Warmup < 0 {
		problems = append(problems, fmt.Sprintf("syscall.warmup must not be negative, got: %d", c.Warmup))
	}
	return problems
}

func (c ThrottleConfig) problems() []string {
	var problems []string
	checkDuration := func(key string, v int, max int64) {
		switch {
		case v < 0:
			problems = append(problems, fmt.Sprintf("%s must not be negative, got: %d", key, v))
		case int64(v) > max:
			problems = append(problems, fmt.Sprintf("%s must be at most %d, got: %d", key, max, v))
		}
	}
	checkDuration("throttle.burst_ms", c.BurstMs, maxMilliseconds)
	checkDuration("throttle.sleep_ms", c.SleepMs, maxMilliseconds)
	checkDuration("throttle.duration_sec", c.DurationSec, maxSeconds)
	if c.BatchSize <= 0 {
		problems = append(problems, fmt.Sprintf("throttle.batch_size must be positive, got: %d", c.BatchSize))
	}
	return problems
}
