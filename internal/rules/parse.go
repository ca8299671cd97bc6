package rules

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	serr "dirsort/internal/errors"

	"github.com/dustin/go-humanize"
)

var (
	sizePattern = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*(kb|mb|gb|tb|b)?$`)
	agePattern  = regexp.MustCompile(`^(\d+)\s*([hdwmy])$`)
)

var sizeUnits = map[string]uint64{
	"":   1,
	"b":  1,
	"kb": 1 << 10,
	"mb": 1 << 20,
	"gb": 1 << 30,
	"tb": 1 << 40,
}

const day = 24 * time.Hour

var ageUnits = map[string]time.Duration{
	"h": time.Hour,
	"d": day,
	"w": 7 * day,
	"m": 30 * day,
	"y": 365 * day,
}

// ParseSize converts a size such as "500", "10kb", "1.5 MB" or "2GiB" into
// bytes. The units b, kb, mb, gb and tb are 1024-based; other notations are
// delegated to go-humanize.
func ParseSize(s string) (uint64, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "" {
		return 0, serr.New("empty size value")
	}

	if m := sizePattern.FindStringSubmatch(v); m != nil {
		n, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0, serr.Newf("invalid size format: %s", s)
		}
		bytes := n * float64(sizeUnits[m[2]])
		if bytes >= 1<<64 {
			return 0, serr.Newf("size out of range: %s", s)
		}
		return uint64(bytes), nil
	}

	n, err := humanize.ParseBytes(v)
	if err != nil {
		return 0, serr.Wrapf(err, "invalid size format: %s", s)
	}
	return n, nil
}

// ParseAge converts an age such as "30d" into a duration. Units are
// h (hour), d (day), w (week), m (30 days) and y (365 days).
func ParseAge(s string) (time.Duration, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "" {
		return 0, serr.New("empty duration value")
	}

	m := agePattern.FindStringSubmatch(v)
	if m == nil {
		return 0, serr.Newf("invalid duration format: %s", s)
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, serr.Wrapf(err, "invalid duration format: %s", s)
	}
	unit := ageUnits[m[2]]
	if n > math.MaxInt64/int64(unit) {
		return 0, serr.Newf("duration out of range: %s", s)
	}
	return time.Duration(n) * unit, nil
}
