//go:build !unix

package syscallbench

import (
	"os"

	"hostbench/internal/benchmark"
)

var ops = map[string]benchmark.Op{
	"getpid":  func() { os.Getpid() },
	"getppid": func() { os.Getppid() },
}
