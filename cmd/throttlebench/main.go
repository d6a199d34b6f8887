// Command throttlebench runs a pure-CPU busy/idle duty cycle for a fixed time
// so that CPU quota and frequency throttling can be observed.
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
