// Package correlation matches accidents against recurring traffic patterns.
//
// An incident matches a pattern when its camera belongs to the pattern,
// its weekday is one of the pattern days and its time of day falls in the
// pattern's (possibly midnight-wrapping) time range. An incident that
// matches several patterns is tallied under each of them but counted once
// as correlated.
package correlation

import (
	"fmt"
	"strings"

	"github.com/smartcity/traffic-analytics/internal/domain"
	"github.com/smartcity/traffic-analytics/pkg/utils"
)

type patternTally struct {
	pattern   domain.Pattern
	incidents []domain.Incident
}

// Correlate matches every incident against every pattern. A pattern with
// an unparseable time range fails the whole call.
func Correlate(incidents []domain.Incident, patterns []domain.Pattern) (domain.CorrelationResult, error) {
	ranges := make([]TimeRange, len(patterns))
	for i, p := range patterns {
		r, err := ParseTimeRange(p.TimeRange)
		if err != nil {
			return domain.CorrelationResult{}, fmt.Errorf("pattern %s: %w", p.ID, err)
		}
		ranges[i] = r
	}

	result := domain.CorrelationResult{
		TotalIncidents: len(incidents),
		PerPattern:     []domain.PatternCorrelation{},
	}

	tallies := make(map[int]*patternTally)
	var order []int // patterns in first-match order
	var pairs int
	var vehicleSum float64

	for _, inc := range incidents {
		if inc.AssociatedCameraID == "" {
			continue
		}
		t, err := domain.ParseTimestamp(inc.DetectedAt)
		if err != nil {
			continue
		}
		day := domain.WeekdayName(t)
		minute := t.Hour()*60 + t.Minute()

		matched := false
		for i, p := range patterns {
			if !p.HasCamera(inc.AssociatedCameraID) || !p.HasDay(day) || !ranges[i].Contains(minute) {
				continue
			}
			matched = true

			tally, ok := tallies[i]
			if !ok {
				tally = &patternTally{pattern: p}
				tallies[i] = tally
				order = append(order, i)
			}
			tally.incidents = append(tally.incidents, inc)

			// congestion and vehicle stats are weighted per (incident, pattern) pair
			pairs++
			vehicleSum += p.AverageVehicleCount
			switch strings.ToLower(strings.TrimSpace(p.CongestionLevel)) {
			case domain.CongestionLow:
				result.PerCongestionLevel.Low++
			case domain.CongestionMedium:
				result.PerCongestionLevel.Medium++
			case domain.CongestionHigh:
				result.PerCongestionLevel.High++
			}
		}
		if matched {
			result.CorrelatedIncidents++
		}
	}

	for _, i := range order {
		tally := tallies[i]
		severity := domain.CountSeverities(tally.incidents)
		result.PerPattern = append(result.PerPattern, domain.PatternCorrelation{
			PatternID:         tally.pattern.ID,
			PatternType:       tally.pattern.PatternType,
			TimeRange:         tally.pattern.TimeRange,
			CongestionLevel:   tally.pattern.CongestionLevel,
			IncidentCount:     len(tally.incidents),
			SeverityBreakdown: severity,
			DominantSeverity:  DominantSeverity(len(tally.incidents), severity),
		})
	}

	if pairs > 0 {
		result.AverageVehicleCount = utils.RoundTo(vehicleSum/float64(pairs), 2)
	}
	result.CorrelationRatePct = utils.Percent(result.CorrelatedIncidents, result.TotalIncidents)
	result.InsightsText = Insights(result)

	return result, nil
}

// DominantSeverity is severe above one half, moderate above one third,
// minor otherwise.
func DominantSeverity(count int, b domain.SeverityBreakdown) string {
	n := float64(count)
	switch {
	case float64(b.Severe) > n/2:
		return domain.SeveritySevere
	case float64(b.Moderate) > n/3:
		return domain.SeverityModerate
	default:
		return domain.SeverityMinor
	}
}
