// Package cgroup reads the CPU bandwidth settings and throttling counters of
// the cgroup the current process runs in. Both cgroup v2 and v1 layouts are
// understood.
package cgroup

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/procfs"
)

// ErrNotAvailable is returned when no CPU controller files can be found.
var ErrNotAvailable = errors.New("cgroup cpu controller not available")

// CPUStat holds the CFS throttling counters.
type CPUStat struct {
	Periods       int64
	Throttled     int64
	ThrottledTime time.Duration
}

// Sub returns the counters accumulated since prev.
func (s CPUStat) Sub(prev CPUStat) CPUStat {
	return CPUStat{
		Periods:       s.Periods - prev.Periods,
		Throttled:     s.Throttled - prev.Throttled,
		ThrottledTime: s.ThrottledTime - prev.ThrottledTime,
	}
}

// ThrottledPercent is the share of enforcement periods in which the group was throttled.
func (s CPUStat) ThrottledPercent() float64 {
	if s.Periods <= 0 {
		return 0
	}
	return 100 * float64(s.Throttled) / float64(s.Periods)
}

// Quota is the CFS bandwidth limit.
type Quota struct {
	Quota     time.Duration
	Period    time.Duration
	Unlimited bool
}

// CPUs is the number of CPUs the quota allows, 0 when unlimited.
func (q Quota) CPUs() float64 {
	if q.Unlimited || q.Period <= 0 {
		return 0
	}
	return float64(q.Quota) / float64(q.Period)
}

// Reader locates the cgroup of a process under a cgroup filesystem root.
type Reader struct {
	// Root is the cgroup mount point, normally /sys/fs/cgroup.
	Root string

	fs  procfs.FS
	pid int
}

// NewReader returns a Reader for the current process.
func NewReader() (*Reader, error) {
	fs, err := procfs.NewDefaultFS()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotAvailable, err)
	}
	return &Reader{Root: "/sys/fs/cgroup", fs: fs, pid: os.Getpid()}, nil
}

// NewReaderAt reads /proc from procRoot for pid and cgroup files from root.
func NewReaderAt(procRoot, root string, pid int) (*Reader, error) {
	fs, err := procfs.NewFS(procRoot)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotAvailable, err)
	}
	return &Reader{Root: root, fs: fs, pid: pid}, nil
}

// CPUStat reads the current throttling counters.
func (r *Reader) CPUStat() (CPUStat, error) {
	for _, dir := range r.dirs() {
		f, err := os.Open(filepath.Join(dir, "cpu.stat"))
		if err != nil {
			continue
		}
		st, err := parseCPUStat(f)
		f.Close()
		if err != nil {
			return CPUStat{}, err
		}
		return st, nil
	}
	return CPUStat{}, ErrNotAvailable
}

// Quota reads the CFS bandwidth limit.
func (r *Reader) Quota() (Quota, error) {
	for _, dir := range r.dirs() {
		if b, err := os.ReadFile(filepath.Join(dir, "cpu.max")); err == nil {
			return parseCPUMax(string(b))
		}
		q, qerr := os.ReadFile(filepath.Join(dir, "cpu.cfs_quota_us"))
		p, perr := os.ReadFile(filepath.Join(dir, "cpu.cfs_period_us"))
		if qerr == nil && perr == nil {
			return parseCFS(string(q), string(p))
		}
	}
	return Quota{}, ErrNotAvailable
}

// dirs lists candidate controller directories, most specific first.
func (r *Reader) dirs() []string {
	var dirs []string
	if p, err := r.fs.Proc(r.pid); err == nil {
		if groups, err := p.Cgroups(); err == nil {
			for _, g := range groups {
				switch {
				case g.HierarchyID == 0:
					dirs = append(dirs, filepath.Join(r.Root, g.Path))
				case hasController(g.Controllers, "cpu"):
					dirs = append(dirs, filepath.Join(r.Root, strings.Join(g.Controllers, ","), g.Path))
				}
			}
		}
	}
	return append(dirs,
		r.Root,
		filepath.Join(r.Root, "cpu"),
		filepath.Join(r.Root, "cpu,cpuacct"),
	)
}

func hasController(cs []string, name string) bool {
	for _, c := range cs {
		if c == name {
			return true
		}
	}
	return false
}

func parseCPUStat(f *os.File) (CPUStat, error) {
	var st CPUStat
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) != 2 {
			continue
		}
		v, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return CPUStat{}, fmt.Errorf("parse %s: %w", fields[0], err)
		}
		switch fields[0] {
		case "nr_periods":
			st.Periods = v
		case "nr_throttled":
			st.Throttled = v
		case "throttled_usec":
			st.ThrottledTime = time.Duration(v) * time.Microsecond
		case "throttled_time":
			st.ThrottledTime = time.Duration(v)
		}
	}
	return st, sc.Err()
}

// parseCPUMax parses the v2 "$MAX $PERIOD" format.
func parseCPUMax(s string) (Quota, error) {
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return Quota{}, fmt.Errorf("malformed cpu.max %q", s)
	}
	period, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return Quota{}, fmt.Errorf("malformed cpu.max period: %w", err)
	}
	q := Quota{Period: time.Duration(period) * time.Microsecond}
	if fields[0] == "max" {
		q.Unlimited = true
		return q, nil
	}
	quota, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return Quota{}, fmt.Errorf("malformed cpu.max quota: %w", err)
	}
	q.Quota = time.Duration(quota) * time.Microsecond
	return q, nil
}

func parseCFS(quotaStr, periodStr string) (Quota, error) {
	quota, err := strconv.ParseInt(strings.TrimSpace(quotaStr), 10, 64)
	if err != nil {
		return Quota{}, fmt.Errorf("malformed cpu.cfs_quota_us: %w", err)
	}
	period, err := strconv.ParseInt(strings.TrimSpace(periodStr), 10, 64)
	if err != nil {
		return Quota{}, fmt.Errorf("malformed cpu.cfs_period_us: %w", err)
	}
	q := Quota{Period: time.Duration(period) * time.Microsecond}
	if quota < 0 {
		q.Unlimited = true
		return q, nil
	}
	q.Quota = time.Duration(quota) * time.Microsecond
	return q, nil
}
