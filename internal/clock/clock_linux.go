//go:build linux

package clock

import (
	"fmt"

	"golang.org/x/sys/unix"
)

func now() (Sample, error) {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		return 0, fmt.Errorf("%w: clock_gettime: %v", ErrUnavailable, err)
	}
	return Sample(ts.Nano()), nil
}
