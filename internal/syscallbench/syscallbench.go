// Package syscallbench measures the round-trip cost of trivial system calls.
package syscallbench

import (
	"fmt"
	"sort"

	"hostbench/internal/benchmark"
)

const (
	DefaultIterations = 10_000_000
	DefaultWarmup     = 1000

	// DefaultSyscall is the call measured when none is named.
	DefaultSyscall = "getpid"
)

// DefaultConfig mirrors the iteration counts used for published results.
func DefaultConfig() benchmark.LoopConfig {
	return benchmark.LoopConfig{Warmup: DefaultWarmup, Iterations: DefaultIterations}
}

// Lookup returns the operation for a named syscall.
func Lookup(name string) (benchmark.Op, error) {
	op, ok := ops[name]
	if !ok {
		return nil, fmt.Errorf("unsupported syscall %q (have %v)", name, Names())
	}
	return op, nil
}

// Names lists the supported syscalls in sorted order.
func Names() []string {
	names := make([]string, 0, len(ops))
	for n := range ops {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Run measures the named syscall with loop.
func Run(loop *benchmark.Loop, name string, cfg benchmark.LoopConfig) (benchmark.Stats, error) {
	op, err := Lookup(name)
	if err != nil {
		return benchmark.Stats{}, err
	}
	return loop.Run(cfg, op)
}
