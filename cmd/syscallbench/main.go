// Command syscallbench measures the round-trip latency of a trivial syscall.
package main

import (
	"os"

	"hostbench/internal/cmdutils"
)

var exit = os.Exit

func main() {
	defer cmdutils.RecoverAndExit(os.Stderr, exit)
	cmdutils.Execute(newRootCmd(), exit)
}
