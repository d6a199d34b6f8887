//go:build linux

package syscallbench

import (
	"hostbench/internal/benchmark"

	"golang.org/x/sys/unix"
)

// Raw entry points: no libc wrapper, no pid caching, no scheduler hand-off.
var ops = map[string]benchmark.Op{
	"getpid":  func() { unix.RawSyscall(unix.SYS_GETPID, 0, 0, 0) },
	"getppid": func() { unix.RawSyscall(unix.SYS_GETPPID, 0, 0, 0) },
	"gettid":  func() { unix.RawSyscall(unix.SYS_GETTID, 0, 0, 0) },
}
