//go:build unix && !linux

package syscallbench

import (
	"hostbench/internal/benchmark"

	"golang.org/x/sys/unix"
)

var ops = map[string]benchmark.Op{
	"getpid":  func() { unix.Getpid() },
	"getppid": func() { unix.Getppid() },
}
