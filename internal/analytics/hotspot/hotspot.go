// Package hotspot scores cameras by the accidents detected around them.
package hotspot

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/smartcity/traffic-analytics/internal/domain"
	"github.com/smartcity/traffic-analytics/pkg/utils"
)

// Analyze groups incidents by camera and returns one hotspot per camera
// with at least minThreshold incidents, sorted by descending risk score.
// Incidents without a camera reference, and groups whose camera is
// unknown, never appear in the output.
func Analyze(incidents []domain.Incident, cameras []domain.Camera, minThreshold int) []domain.HotspotResult {
	byID := make(map[string]domain.Camera, len(cameras))
	for _, c := range cameras {
		byID[c.ID] = c
	}

	// Groups keep first-seen order so that later ties stay stable
	var order []string
	groups := make(map[string][]domain.Incident)
	for _, inc := range incidents {
		if inc.AssociatedCameraID == "" {
			continue
		}
		if _, ok := groups[inc.AssociatedCameraID]; !ok {
			order = append(order, inc.AssociatedCameraID)
		}
		groups[inc.AssociatedCameraID] = append(groups[inc.AssociatedCameraID], inc)
	}

	results := make([]domain.HotspotResult, 0, len(order))
	for _, cameraID := range order {
		group := groups[cameraID]
		if len(group) < minThreshold {
			continue
		}
		camera, ok := byID[cameraID]
		if !ok {
			continue
		}

		severity := domain.CountSeverities(group)
		timeOfDay := TimeOfDay(group)
		results = append(results, domain.HotspotResult{
			CameraID:          camera.ID,
			CameraName:        camera.Name,
			Location:          camera.Location,
			IncidentCount:     len(group),
			SeverityBreakdown: severity,
			DominantCategory:  DominantCategory(group),
			TimeOfDayCounts:   timeOfDay,
			RiskScore:         RiskScore(len(group), severity, timeOfDay),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].RiskScore > results[j].RiskScore
	})

	return results
}

// DominantCategory returns the most frequent category; ties go to the
// category seen first.
func DominantCategory(incidents []domain.Incident) string {
	counts := make(map[string]int)
	var order []string
	for _, inc := range incidents {
		if _, ok := counts[inc.Category]; !ok {
			order = append(order, inc.Category)
		}
		counts[inc.Category]++
	}

	dominant := ""
	best := 0
	for _, category := range order {
		if counts[category] > best {
			dominant = category
			best = counts[category]
		}
	}
	return dominant
}

// TimeOfDay buckets incidents into morning [06,12), afternoon [12,18),
// evening [18,24) and night [00,06). Unparseable timestamps are skipped.
func TimeOfDay(incidents []domain.Incident) domain.TimeOfDayCounts {
	var c domain.TimeOfDayCounts
	for _, inc := range incidents {
		t, err := domain.ParseTimestamp(inc.DetectedAt)
		if err != nil {
			continue
		}
		switch hour := t.Hour(); {
		case hour < 6:
			c.Night++
		case hour < 12:
			c.Morning++
		case hour < 18:
			c.Afternoon++
		default:
			c.Evening++
		}
	}
	return c
}

// RiskScore combines incident volume, severity mix and time concentration
// into an integer in [0, 100].
func RiskScore(count int, severity domain.SeverityBreakdown, timeOfDay domain.TimeOfDayCounts) int {
	if count <= 0 {
		return 0
	}
	n := float64(count)

	accident := math.Min((n/20)*40, 40)
	severityComponent := float64(severity.Severe)*35/n + float64(severity.Moderate)*15/n

	buckets := []float64{
		float64(timeOfDay.Morning),
		float64(timeOfDay.Afternoon),
		float64(timeOfDay.Evening),
		float64(timeOfDay.Night),
	}
	// population variance of the four window counts
	variance := stat.Moment(2, buckets, nil)

	// NOTE: the flat bonus below variance 1 is a discontinuity carried
	// over from the product heuristic and is kept as-is.
	timeComponent := 10.0
	if variance >= 1 {
		timeComponent = math.Max(10-(variance/n)*10, 0)
	}

	score := math.Round(accident + severityComponent + timeComponent)
	return int(utils.Clamp(score, 0, 100))
}
