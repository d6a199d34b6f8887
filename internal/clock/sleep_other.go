//go:build !linux

package clock

import "time"

// time.Sleep already resumes after signal delivery.
func (s *NanoSleeper) sleep(d time.Duration) error {
	time.Sleep(d)
	return nil
}
