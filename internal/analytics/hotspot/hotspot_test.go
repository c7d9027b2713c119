package hotspot

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcity/traffic-analytics/internal/domain"
)

var cameras = []domain.Camera{
	{ID: "cam-a", Name: "Al-Farabi / Dostyk", Location: domain.Point{Lat: 43.2567, Lng: 76.9286}},
	{ID: "cam-b", Name: "Abay / Baitursynov", Location: domain.Point{Lat: 43.2400, Lng: 76.9200}},
}

func incident(id, camera, severity, category, at string) domain.Incident {
	return domain.Incident{ID: id, AssociatedCameraID: camera, Severity: severity, Category: category, DetectedAt: at}
}

func TestAnalyze_MorningHotspot(t *testing.T) {
	incidents := []domain.Incident{
		incident("1", "cam-a", "severe", "collision", "2026-03-16T07:10:00Z"),
		incident("2", "cam-a", "severe", "collision", "2026-03-16T08:20:00Z"),
		incident("3", "cam-a", "severe", "rollover", "2026-03-17T09:00:00Z"),
		incident("4", "cam-a", "moderate", "rollover", "2026-03-18T10:30:00Z"),
		incident("5", "cam-a", "minor", "pedestrian", "2026-03-19T11:59:00Z"),
		incident("6", "cam-b", "minor", "collision", "2026-03-19T11:59:00Z"),
	}

	results := Analyze(incidents, cameras, 3)
	require.Len(t, results, 1)

	h := results[0]
	assert.Equal(t, "cam-a", h.CameraID)
	assert.Equal(t, "Al-Farabi / Dostyk", h.CameraName)
	assert.Equal(t, 5, h.IncidentCount)
	assert.Equal(t, domain.SeverityBreakdown{Severe: 3, Moderate: 1, Minor: 1}, h.SeverityBreakdown)
	assert.Equal(t, "collision", h.DominantCategory, "tie with rollover goes to the first seen")
	assert.Equal(t, domain.TimeOfDayCounts{Morning: 5}, h.TimeOfDayCounts)
	// accident 10 + severity 24 + time 0.625 (variance 4.6875) = 34.625
	assert.Equal(t, 35, h.RiskScore)
}

func TestAnalyze_SpreadIncidentsGetFlatTimeBonus(t *testing.T) {
	incidents := []domain.Incident{
		incident("1", "cam-a", "severe", "collision", "2026-03-16T07:10:00Z"),
		incident("2", "cam-a", "severe", "collision", "2026-03-16T08:20:00Z"),
		incident("3", "cam-a", "severe", "collision", "2026-03-16T13:00:00Z"),
		incident("4", "cam-a", "moderate", "collision", "2026-03-16T19:30:00Z"),
		incident("5", "cam-a", "minor", "collision", "2026-03-16T02:00:00Z"),
	}

	results := Analyze(incidents, cameras, 3)
	require.Len(t, results, 1)
	assert.Equal(t, domain.TimeOfDayCounts{Morning: 2, Afternoon: 1, Evening: 1, Night: 1}, results[0].TimeOfDayCounts)
	// accident 10 + severity 24 + flat 10 (variance 0.1875)
	assert.Equal(t, 44, results[0].RiskScore)
}

func TestAnalyze_Exclusions(t *testing.T) {
	incidents := []domain.Incident{
		incident("1", "", "severe", "collision", "2026-03-16T07:10:00Z"),
		incident("2", "cam-ghost", "severe", "collision", "2026-03-16T07:10:00Z"),
		incident("3", "cam-b", "CRITICAL", "collision", "garbage"),
		incident("4", "cam-b", "Severe", "collision", "2026-03-16T13:10:00Z"),
	}

	results := Analyze(incidents, cameras, 1)
	require.Len(t, results, 1, "no camera reference and unknown cameras are dropped")

	h := results[0]
	assert.Equal(t, "cam-b", h.CameraID)
	assert.Equal(t, 2, h.IncidentCount, "unknown severity still counts")
	assert.Equal(t, domain.SeverityBreakdown{Severe: 1}, h.SeverityBreakdown)
	assert.Equal(t, domain.TimeOfDayCounts{Afternoon: 1}, h.TimeOfDayCounts, "unparseable time is skipped")
}

func TestAnalyze_ThresholdOneKeepsEveryKnownCamera(t *testing.T) {
	incidents := []domain.Incident{
		incident("1", "cam-a", "minor", "collision", "2026-03-16T07:10:00Z"),
		incident("2", "cam-b", "minor", "collision", "2026-03-16T07:10:00Z"),
	}
	assert.Len(t, Analyze(incidents, cameras, 1), 2)
	assert.Empty(t, Analyze(incidents, cameras, 2))
}

func TestAnalyze_SortedByRiskStable(t *testing.T) {
	incidents := []domain.Incident{
		incident("1", "cam-a", "minor", "collision", "2026-03-16T07:10:00Z"),
		incident("2", "cam-b", "minor", "collision", "2026-03-16T07:10:00Z"),
		incident("3", "cam-b", "severe", "collision", "2026-03-16T07:10:00Z"),
	}

	results := Analyze(incidents, cameras, 1)
	require.Len(t, results, 2)
	assert.Equal(t, "cam-b", results[0].CameraID)
	assert.GreaterOrEqual(t, results[0].RiskScore, results[1].RiskScore)

	tied := []domain.Incident{
		incident("1", "cam-b", "minor", "collision", "2026-03-16T07:10:00Z"),
		incident("2", "cam-a", "minor", "collision", "2026-03-16T07:10:00Z"),
	}
	results = Analyze(tied, cameras, 1)
	require.Len(t, results, 2)
	assert.Equal(t, results[0].RiskScore, results[1].RiskScore)
	assert.Equal(t, "cam-b", results[0].CameraID, "ties keep grouping order")
}

func TestRiskScore(t *testing.T) {
	tests := []struct {
		name      string
		count     int
		severity  domain.SeverityBreakdown
		timeOfDay domain.TimeOfDayCounts
		want      int
	}{
		{"zero incidents", 0, domain.SeverityBreakdown{}, domain.TimeOfDayCounts{}, 0},
		{"even spread", 4, domain.SeverityBreakdown{}, domain.TimeOfDayCounts{Morning: 1, Afternoon: 1, Evening: 1, Night: 1}, 18},
		// variance exactly 1 takes the scaled branch: 8 + 7.5
		{"variance one", 4, domain.SeverityBreakdown{}, domain.TimeOfDayCounts{Morning: 2, Evening: 2}, 16},
		{"accident cap", 40, domain.SeverityBreakdown{Severe: 40}, domain.TimeOfDayCounts{Morning: 40}, 75},
		{"no parseable times", 2, domain.SeverityBreakdown{Moderate: 2}, domain.TimeOfDayCounts{}, 29},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RiskScore(tt.count, tt.severity, tt.timeOfDay))
		})
	}
}

func TestRiskScore_AlwaysInRange(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 8))
	for i := 0; i < 500; i++ {
		var tod domain.TimeOfDayCounts
		count := 1 + rng.IntN(60)
		for j := 0; j < count; j++ {
			switch rng.IntN(5) {
			case 0:
				tod.Morning++
			case 1:
				tod.Afternoon++
			case 2:
				tod.Evening++
			case 3:
				tod.Night++
			}
		}
		severe := rng.IntN(count + 1)
		moderate := rng.IntN(count - severe + 1)
		score := RiskScore(count, domain.SeverityBreakdown{Severe: severe, Moderate: moderate}, tod)
		assert.True(t, score >= 0 && score <= 100, fmt.Sprintf("score %d out of range", score))
	}
}

func TestDominantCategory(t *testing.T) {
	assert.Equal(t, "", DominantCategory(nil))
	assert.Equal(t, "b", DominantCategory([]domain.Incident{
		{Category: "a"}, {Category: "b"}, {Category: "b"}, {Category: "a"}, {Category: "b"},
	}))
}
