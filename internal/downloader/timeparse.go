package downloader

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseBegin reads a start offset given as a Go duration ("1m30s"), a
// clock time ("1:02:03.5", "02:03") or a plain number of milliseconds.
func ParseBegin(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		if ms < 0 {
			return 0, fmt.Errorf("negative begin %q", s)
		}
		return time.Duration(ms) * time.Millisecond, nil
	}
	if strings.Contains(s, ":") {
		return parseClock(s)
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid begin %q: %w", s, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("negative begin %q", s)
	}
	return d, nil
}

func parseClock(s string) (time.Duration, error) {
	fields := strings.Split(s, ":")
	if len(fields) > 3 {
		return 0, fmt.Errorf("invalid clock time %q", s)
	}
	var total time.Duration
	for i, f := range fields {
		last := i == len(fields)-1
		var v float64
		var err error
		if last {
			v, err = strconv.ParseFloat(f, 64)
		} else {
			var n int64
			n, err = strconv.ParseInt(f, 10, 64)
			v = float64(n)
		}
		if err != nil || v < 0 || (i > 0 && v >= 60) {
			return 0, fmt.Errorf("invalid clock time %q", s)
		}
		total = total*60 + time.Duration(v*float64(time.Second))
	}
	return total, nil
}
