package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/paulmach/orb"
)

// Point is a WGS84 coordinate in degrees
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether the point lies inside the WGS84 bounds
func (p Point) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// Orb returns the point in [lng, lat] order
func (p Point) Orb() orb.Point {
	return orb.Point{p.Lng, p.Lat}
}

// Severity labels used by incident records
const (
	SeveritySevere   = "severe"
	SeverityModerate = "moderate"
	SeverityMinor    = "minor"
)

// Congestion levels used by pattern records
const (
	CongestionLow    = "low"
	CongestionMedium = "medium"
	CongestionHigh   = "high"
)

// Camera is a traffic camera with a fixed location
type Camera struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Location Point  `json:"location"`
}

// Incident is an accident detected by (or reported near) a camera.
// DetectedAt is kept as the raw ISO-8601 string delivered upstream so
// that malformed values can be skipped by the analytics instead of
// failing the whole load.
type Incident struct {
	ID                 string `json:"id"`
	AssociatedCameraID string `json:"associated_camera_id,omitempty"`
	Severity           string `json:"severity"`
	Category           string `json:"category"`
	DetectedAt         string `json:"detected_at"`
}

// Pattern is a recurring traffic pattern observed on a set of cameras
type Pattern struct {
	ID                  string   `json:"id"`
	PatternType         string   `json:"pattern_type"`
	TimeRange           string   `json:"time_range"` // "HH:MM-HH:MM"
	DaysOfWeek          []string `json:"days_of_week"`
	AverageVehicleCount float64  `json:"average_vehicle_count"`
	CongestionLevel     string   `json:"congestion_level"`
	AssociatedCameraIDs []string `json:"associated_camera_ids"`
}

// HasCamera reports whether the camera id is associated with the pattern
func (p Pattern) HasCamera(cameraID string) bool {
	for _, id := range p.AssociatedCameraIDs {
		if id == cameraID {
			return true
		}
	}
	return false
}

// HasDay reports whether the weekday name is one of the pattern days (case-insensitive)
func (p Pattern) HasDay(day string) bool {
	for _, d := range p.DaysOfWeek {
		if strings.EqualFold(strings.TrimSpace(d), day) {
			return true
		}
	}
	return false
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseTimestamp parses the ISO-8601 variants emitted by the upstream
// record mapper. Values without an offset are read as UTC.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("domain: unparseable timestamp %q", s)
}

// WeekdayName returns the lowercase English weekday name
func WeekdayName(t time.Time) string {
	return strings.ToLower(t.Weekday().String())
}

// Weekdays lists lowercase weekday names from sunday to saturday
var Weekdays = []string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}
