//go:build linux

package clock

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

func (s *NanoSleeper) sleep(d time.Duration) error {
	req := unix.NsecToTimespec(int64(d))
	for {
		var rem unix.Timespec
		err := unix.Nanosleep(&req, &rem)
		if err == nil {
			return nil
		}
		if !errors.Is(err, unix.EINTR) {
			return fmt.Errorf("nanosleep %v: %w", d, err)
		}
		s.interrupted(time.Duration(rem.Nano()))
		req = rem
	}
}
