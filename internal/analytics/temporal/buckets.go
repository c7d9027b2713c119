// Package temporal buckets timestamped events into hour-of-day and
// day-of-week frequency histograms.
package temporal

import (
	"errors"
	"fmt"
	"time"

	"github.com/smartcity/traffic-analytics/internal/domain"
)

// Supported histogram dimensions
const (
	DimensionHour      = "hour"
	DimensionDayOfWeek = "dayOfWeek"
)

// ErrUnknownDimension is returned for a dimension other than hour or dayOfWeek
var ErrUnknownDimension = errors.New("temporal: unknown dimension")

// Options configures a bucketing run
type Options struct {
	Dimensions []string  // empty means every dimension
	WindowDays int       // events older than this are dropped; <= 0 keeps everything
	Now        time.Time // reference time for the window; zero means time.Now()
}

// Histogram holds the two independent frequency tables.
// Total counts the in-window, parseable events.
type Histogram struct {
	ByHour      [24]int        `json:"by_hour"`
	ByDayOfWeek map[string]int `json:"by_day_of_week"`
	PeakHour    int            `json:"peak_hour"`
	PeakDay     string         `json:"peak_day"`
	Total       int            `json:"total"`
}

// Bucketize counts the timestamps per requested dimension.
// Timestamps that cannot be parsed are skipped silently.
func Bucketize(timestamps []string, opts Options) (Histogram, error) {
	byHour, byDay, err := dimensions(opts.Dimensions)
	if err != nil {
		return Histogram{}, err
	}

	h := Histogram{ByDayOfWeek: make(map[string]int, len(domain.Weekdays))}
	for _, day := range domain.Weekdays {
		h.ByDayOfWeek[day] = 0
	}

	var cutoff time.Time
	if opts.WindowDays > 0 {
		now := opts.Now
		if now.IsZero() {
			now = time.Now()
		}
		cutoff = now.AddDate(0, 0, -opts.WindowDays)
	}

	for _, ts := range timestamps {
		t, err := domain.ParseTimestamp(ts)
		if err != nil {
			continue
		}
		if !cutoff.IsZero() && t.Before(cutoff) {
			continue
		}

		h.Total++
		if byHour {
			h.ByHour[t.Hour()]++
		}
		if byDay {
			h.ByDayOfWeek[domain.WeekdayName(t)]++
		}
	}

	h.PeakHour, h.PeakDay = peaks(h)
	return h, nil
}

func dimensions(requested []string) (hour, day bool, err error) {
	if len(requested) == 0 {
		return true, true, nil
	}
	for _, d := range requested {
		switch d {
		case DimensionHour:
			hour = true
		case DimensionDayOfWeek:
			day = true
		default:
			return false, false, fmt.Errorf("%w: %q", ErrUnknownDimension, d)
		}
	}
	return hour, day, nil
}

// peaks returns the first maximum of each histogram
func peaks(h Histogram) (int, string) {
	peakHour := 0
	for hour, n := range h.ByHour {
		if n > h.ByHour[peakHour] {
			peakHour = hour
		}
	}

	peakDay := domain.Weekdays[0]
	for _, day := range domain.Weekdays {
		if h.ByDayOfWeek[day] > h.ByDayOfWeek[peakDay] {
			peakDay = day
		}
	}
	return peakHour, peakDay
}
