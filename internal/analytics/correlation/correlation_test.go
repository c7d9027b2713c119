package correlation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcity/traffic-analytics/internal/domain"
)

func incident(id, camera, severity, at string) domain.Incident {
	return domain.Incident{ID: id, AssociatedCameraID: camera, Severity: severity, Category: "collision", DetectedAt: at}
}

func fixturePatterns() []domain.Pattern {
	return []domain.Pattern{
		{
			ID: "p1", PatternType: "evening-rush", TimeRange: "17:00-19:00",
			DaysOfWeek: []string{"Monday", "Tuesday"}, AverageVehicleCount: 120,
			CongestionLevel: "high", AssociatedCameraIDs: []string{"cam-a", "cam-b"},
		},
		{
			ID: "p2", PatternType: "night-freight", TimeRange: "22:00-02:00",
			DaysOfWeek: []string{"monday"}, AverageVehicleCount: 40,
			CongestionLevel: "medium", AssociatedCameraIDs: []string{"cam-x"},
		},
		{
			ID: "p3", PatternType: "weekday-peak", TimeRange: "16:00-20:00",
			DaysOfWeek: []string{"MONDAY"}, AverageVehicleCount: 80,
			CongestionLevel: "High", AssociatedCameraIDs: []string{"cam-a"},
		},
	}
}

func fixtureIncidents() []domain.Incident {
	return []domain.Incident{
		incident("i1", "cam-a", "severe", "2026-03-16T18:00:00Z"),   // monday: p1 and p3
		incident("i2", "cam-x", "moderate", "2026-03-16T23:30:00Z"), // monday night: p2
		incident("i3", "cam-b", "minor", "2026-03-17T17:30:00Z"),    // tuesday: p1
		incident("i4", "cam-a", "severe", "2026-03-18T18:00:00Z"),   // wednesday: none
		incident("i5", "", "severe", "2026-03-16T18:00:00Z"),        // no camera
		incident("i6", "cam-a", "severe", "yesterday evening"),      // unparseable
	}
}

func TestCorrelate(t *testing.T) {
	r, err := Correlate(fixtureIncidents(), fixturePatterns())
	require.NoError(t, err)

	assert.Equal(t, 6, r.TotalIncidents)
	assert.Equal(t, 3, r.CorrelatedIncidents, "i1 matches twice but counts once")
	assert.Equal(t, 50, r.CorrelationRatePct)
	assert.Equal(t, domain.CongestionCounts{Medium: 1, High: 3}, r.PerCongestionLevel)
	assert.Equal(t, 90.0, r.AverageVehicleCount, "pair weighted: (120+80+40+120)/4")

	require.Len(t, r.PerPattern, 3)
	assert.Equal(t, []string{"p1", "p3", "p2"}, []string{r.PerPattern[0].PatternID, r.PerPattern[1].PatternID, r.PerPattern[2].PatternID})

	p1 := r.PerPattern[0]
	assert.Equal(t, 2, p1.IncidentCount)
	assert.Equal(t, domain.SeverityBreakdown{Severe: 1, Minor: 1}, p1.SeverityBreakdown)
	assert.Equal(t, domain.SeverityMinor, p1.DominantSeverity)
	assert.Equal(t, domain.SeveritySevere, r.PerPattern[1].DominantSeverity)
	assert.Equal(t, domain.SeverityModerate, r.PerPattern[2].DominantSeverity)

	assert.Equal(t,
		`50% of accidents coincide with recurring traffic patterns, showing moderate predictability. `+
			`75% of pattern-matched accidents happened during high congestion. `+
			`The "evening-rush" pattern (high congestion) has the most matched accidents (2). `+
			`Accidents during the "weekday-peak" pattern are predominantly severe.`,
		r.InsightsText)
}

func TestCorrelate_WraparoundScenario(t *testing.T) {
	patterns := []domain.Pattern{{
		ID: "night", PatternType: "late-night", TimeRange: "22:00-02:00",
		DaysOfWeek: []string{"Monday"}, CongestionLevel: "low", AssociatedCameraIDs: []string{"X"},
	}}

	r, err := Correlate([]domain.Incident{incident("1", "X", "minor", "2026-03-16T23:30:00Z")}, patterns)
	require.NoError(t, err)
	assert.Equal(t, 1, r.CorrelatedIncidents)
	assert.Equal(t, 100, r.CorrelationRatePct)
	assert.Contains(t, r.InsightsText, "strong predictability")
}

func TestCorrelate_EmptyInputs(t *testing.T) {
	r, err := Correlate(nil, fixturePatterns())
	require.NoError(t, err)
	assert.Zero(t, r.CorrelationRatePct)
	assert.Empty(t, r.PerPattern)
	assert.Equal(t, "No accidents were recorded for the selected period.", r.InsightsText)

	r, err = Correlate(fixtureIncidents(), nil)
	require.NoError(t, err)
	assert.Equal(t, 6, r.TotalIncidents)
	assert.Zero(t, r.CorrelatedIncidents)
	assert.Zero(t, r.CorrelationRatePct)
	assert.Zero(t, r.AverageVehicleCount)
	assert.Contains(t, r.InsightsText, "many accidents occur outside typical patterns")
}

func TestCorrelate_InvalidTimeRange(t *testing.T) {
	patterns := fixturePatterns()
	patterns[1].TimeRange = "late evening"

	_, err := Correlate(fixtureIncidents(), patterns)
	assert.ErrorIs(t, err, ErrInvalidTimeRange)
}

func TestParseTimeRange(t *testing.T) {
	tests := []struct {
		in      string
		want    TimeRange
		wantErr bool
	}{
		{in: "07:00-09:30", want: TimeRange{Start: 420, End: 570}},
		{in: " 22:00 - 02:00 ", want: TimeRange{Start: 1320, End: 120}},
		{in: "00:00-23:59", want: TimeRange{Start: 0, End: 1439}},
		{in: "24:00-01:00", wantErr: true},
		{in: "07:60-08:00", wantErr: true},
		{in: "0700-0800", wantErr: true},
		{in: "07:00", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimeRange(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTimeRange)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTimeRange_Contains(t *testing.T) {
	wrap := TimeRange{Start: 22 * 60, End: 2 * 60}
	assert.True(t, wrap.Contains(22*60))
	assert.True(t, wrap.Contains(23*60+30))
	assert.True(t, wrap.Contains(0))
	assert.True(t, wrap.Contains(2*60), "end is inclusive")
	assert.False(t, wrap.Contains(2*60+1))
	assert.False(t, wrap.Contains(21*60+59))

	day := TimeRange{Start: 7 * 60, End: 9 * 60}
	assert.True(t, day.Contains(7*60))
	assert.True(t, day.Contains(9*60))
	assert.False(t, day.Contains(9*60+1))
	assert.False(t, day.Contains(6*60+59))
}

func TestDominantSeverity(t *testing.T) {
	assert.Equal(t, domain.SeveritySevere, DominantSeverity(3, domain.SeverityBreakdown{Severe: 2, Minor: 1}))
	assert.Equal(t, domain.SeverityModerate, DominantSeverity(4, domain.SeverityBreakdown{Severe: 2, Moderate: 2}))
	assert.Equal(t, domain.SeverityMinor, DominantSeverity(3, domain.SeverityBreakdown{Moderate: 1, Minor: 2}))
	assert.Equal(t, domain.SeverityMinor, DominantSeverity(0, domain.SeverityBreakdown{}))
}
