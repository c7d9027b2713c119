package correlation

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidTimeRange is returned for a time range not shaped "HH:MM-HH:MM"
var ErrInvalidTimeRange = errors.New("correlation: invalid time range")

// TimeRange is a time-of-day interval in minutes after midnight.
// When End < Start the interval wraps past midnight.
type TimeRange struct {
	Start int
	End   int
}

// ParseTimeRange parses "HH:MM-HH:MM"
func ParseTimeRange(s string) (TimeRange, error) {
	startRaw, endRaw, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok {
		return TimeRange{}, fmt.Errorf("%w: %q", ErrInvalidTimeRange, s)
	}

	start, err := parseClock(startRaw)
	if err != nil {
		return TimeRange{}, fmt.Errorf("%w: %q: %v", ErrInvalidTimeRange, s, err)
	}
	end, err := parseClock(endRaw)
	if err != nil {
		return TimeRange{}, fmt.Errorf("%w: %q: %v", ErrInvalidTimeRange, s, err)
	}

	return TimeRange{Start: start, End: end}, nil
}

// Contains reports whether the minute of day falls inside the range, both ends inclusive
func (r TimeRange) Contains(minute int) bool {
	if r.End < r.Start {
		return minute >= r.Start || minute <= r.End
	}
	return minute >= r.Start && minute <= r.End
}

func parseClock(s string) (int, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, fmt.Errorf("missing ':' in %q", s)
	}
	hours, err := strconv.Atoi(hh)
	if err != nil || hours < 0 || hours > 23 {
		return 0, fmt.Errorf("bad hour %q", hh)
	}
	minutes, err := strconv.Atoi(mm)
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("bad minute %q", mm)
	}
	return hours*60 + minutes, nil
}
