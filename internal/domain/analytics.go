package domain

import (
	"strings"

	"github.com/paulmach/orb"
)

// AttributeStats summarises one numeric attribute across zone members
type AttributeStats struct {
	Min float64 `json:"min"`
	Avg float64 `json:"avg"`
	Max float64 `json:"max"`
}

// ZoneResult is one non-empty cluster produced by zone clustering.
// Polygon is nil when the members do not span at least three distinct
// hull vertices.
type ZoneResult struct {
	ZoneID      string                    `json:"zone_id"`
	Members     []LocatedRecord           `json:"members"`
	MemberCount int                       `json:"member_count"`
	Centroid    Point                     `json:"centroid"`
	RadiusKm    float64                   `json:"radius_km"`
	Attributes  map[string]AttributeStats `json:"attributes"`
	Polygon     orb.Ring                  `json:"polygon"`
}

// SeverityBreakdown counts incidents per recognised severity label
type SeverityBreakdown struct {
	Severe   int `json:"severe"`
	Moderate int `json:"moderate"`
	Minor    int `json:"minor"`
}

// CountSeverities tallies the recognised severity labels, case-insensitively.
// Other labels are left out of the breakdown.
func CountSeverities(incidents []Incident) SeverityBreakdown {
	var b SeverityBreakdown
	for _, inc := range incidents {
		switch strings.ToLower(strings.TrimSpace(inc.Severity)) {
		case SeveritySevere:
			b.Severe++
		case SeverityModerate:
			b.Moderate++
		case SeverityMinor:
			b.Minor++
		}
	}
	return b
}

// TimeOfDayCounts counts incidents per six-hour window
type TimeOfDayCounts struct {
	Morning   int `json:"morning"`
	Afternoon int `json:"afternoon"`
	Evening   int `json:"evening"`
	Night     int `json:"night"`
}

// HotspotResult describes an accident hotspot around one camera
type HotspotResult struct {
	CameraID          string            `json:"camera_id"`
	CameraName        string            `json:"camera_name"`
	Location          Point             `json:"location"`
	IncidentCount     int               `json:"incident_count"`
	SeverityBreakdown SeverityBreakdown `json:"severity_breakdown"`
	DominantCategory  string            `json:"dominant_category"`
	TimeOfDayCounts   TimeOfDayCounts   `json:"time_of_day_counts"`
	RiskScore         int               `json:"risk_score"`
}

// CongestionCounts counts matched (incident, pattern) pairs per congestion level
type CongestionCounts struct {
	Low    int `json:"low"`
	Medium int `json:"medium"`
	High   int `json:"high"`
}

// PatternCorrelation is the tally of incidents matched against one pattern
type PatternCorrelation struct {
	PatternID         string            `json:"pattern_id"`
	PatternType       string            `json:"pattern_type"`
	TimeRange         string            `json:"time_range"`
	CongestionLevel   string            `json:"congestion_level"`
	IncidentCount     int               `json:"incident_count"`
	SeverityBreakdown SeverityBreakdown `json:"severity_breakdown"`
	DominantSeverity  string            `json:"dominant_severity"`
}

// CorrelationResult summarises how incidents line up with recurring patterns
type CorrelationResult struct {
	TotalIncidents      int                  `json:"total_incidents"`
	CorrelatedIncidents int                  `json:"correlated_incidents"`
	CorrelationRatePct  int                  `json:"correlation_rate_pct"`
	PerPattern          []PatternCorrelation `json:"per_pattern"`
	PerCongestionLevel  CongestionCounts     `json:"per_congestion_level"`
	AverageVehicleCount float64              `json:"average_vehicle_count"`
	InsightsText        string               `json:"insights_text"`
}

// PatternArea is the convex area covered by a pattern's cameras
type PatternArea struct {
	PatternID       string   `json:"pattern_id"`
	PatternType     string   `json:"pattern_type"`
	CongestionLevel string   `json:"congestion_level"`
	TimeRange       string   `json:"time_range"`
	CameraCount     int      `json:"camera_count"`
	Area            float64  `json:"area"`
	Polygon         orb.Ring `json:"polygon"`
}
