package postgres

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/smartcity/traffic-analytics/internal/domain"
)

// MemoryRepository implements domain.DataRepository over in-memory slices.
// It backs demo mode when no database is reachable.
type MemoryRepository struct {
	cameras      []domain.Camera
	incidents    []domain.Incident
	patterns     []domain.Pattern
	observations []domain.WeatherObservation
}

// NewMemoryRepository creates a repository serving the given records
func NewMemoryRepository(
	cameras []domain.Camera,
	incidents []domain.Incident,
	patterns []domain.Pattern,
	observations []domain.WeatherObservation,
) *MemoryRepository {
	return &MemoryRepository{
		cameras:      cameras,
		incidents:    incidents,
		patterns:     patterns,
		observations: observations,
	}
}

// GetCameras returns every camera
func (r *MemoryRepository) GetCameras(ctx context.Context) ([]domain.Camera, error) {
	return append([]domain.Camera(nil), r.cameras...), nil
}

// GetIncidents returns incidents detected between from and to.
// Incidents with an unparseable timestamp are always returned.
func (r *MemoryRepository) GetIncidents(ctx context.Context, from, to time.Time) ([]domain.Incident, error) {
	var results []domain.Incident
	for _, inc := range r.incidents {
		t, err := domain.ParseTimestamp(inc.DetectedAt)
		if err == nil && (t.Before(from) || t.After(to)) {
			continue
		}
		results = append(results, inc)
	}
	return results, nil
}

// GetPatterns returns all patterns
func (r *MemoryRepository) GetPatterns(ctx context.Context) ([]domain.Pattern, error) {
	return append([]domain.Pattern(nil), r.patterns...), nil
}

// GetWeatherObservations returns observations made between from and to
func (r *MemoryRepository) GetWeatherObservations(ctx context.Context, from, to time.Time) ([]domain.WeatherObservation, error) {
	var results []domain.WeatherObservation
	for _, w := range r.observations {
		if w.ObservedAt.Before(from) || w.ObservedAt.After(to) {
			continue
		}
		results = append(results, w)
	}
	return results, nil
}

// Health always returns nil in memory mode
func (r *MemoryRepository) Health(ctx context.Context) error {
	return nil
}

// Key intersections in Almaty with camera coverage
var demoCameras = []domain.Camera{
	{ID: "cam-01", Name: "Al-Farabi/Dostyk", Location: domain.Point{Lat: 43.2567, Lng: 76.9286}},
	{ID: "cam-02", Name: "Mega Center", Location: domain.Point{Lat: 43.2380, Lng: 76.9450}},
	{ID: "cam-03", Name: "Alatau", Location: domain.Point{Lat: 43.2700, Lng: 76.9500}},
	{ID: "cam-04", Name: "Baraholka", Location: domain.Point{Lat: 43.2220, Lng: 76.8510}},
	{ID: "cam-05", Name: "City Center", Location: domain.Point{Lat: domain.AlmatyCenterLat, Lng: domain.AlmatyCenterLng}},
	{ID: "cam-06", Name: "Medeu Direction", Location: domain.Point{Lat: 43.2600, Lng: 76.9100}},
	{ID: "cam-07", Name: "Airport Road", Location: domain.Point{Lat: 43.2150, Lng: 76.9200}},
	{ID: "cam-08", Name: "Almaty-1 Station", Location: domain.Point{Lat: 43.2800, Lng: 76.8800}},
}

var (
	workdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday"}
	weekend  = []string{"saturday", "sunday"}
)

var demoPatterns = []domain.Pattern{
	{
		ID: "pat-morning-rush", PatternType: "morning_rush", TimeRange: "07:00-10:00",
		DaysOfWeek: workdays, AverageVehicleCount: 140, CongestionLevel: domain.CongestionHigh,
		AssociatedCameraIDs: []string{"cam-01", "cam-02", "cam-05", "cam-07"},
	},
	{
		ID: "pat-evening-rush", PatternType: "evening_rush", TimeRange: "17:00-20:00",
		DaysOfWeek: workdays, AverageVehicleCount: 155, CongestionLevel: domain.CongestionHigh,
		AssociatedCameraIDs: []string{"cam-01", "cam-04", "cam-06"},
	},
	{
		ID: "pat-weekend-market", PatternType: "weekend_market", TimeRange: "10:00-16:00",
		DaysOfWeek: weekend, AverageVehicleCount: 90, CongestionLevel: domain.CongestionMedium,
		AssociatedCameraIDs: []string{"cam-02", "cam-04", "cam-05"},
	},
	{
		ID: "pat-night-freight", PatternType: "night_freight", TimeRange: "22:00-05:00",
		DaysOfWeek: append(append([]string(nil), workdays...), weekend...), AverageVehicleCount: 35,
		CongestionLevel:     domain.CongestionLow,
		AssociatedCameraIDs: []string{"cam-04", "cam-07", "cam-08"},
	},
}

// Hours weighted toward the rush periods
var demoHours = []int{7, 8, 8, 9, 12, 13, 15, 17, 18, 18, 19, 23, 2}

var (
	demoSeverities = []string{domain.SeveritySevere, domain.SeverityModerate, domain.SeverityModerate, domain.SeverityMinor, domain.SeverityMinor, domain.SeverityMinor}
	demoCategories = []string{"collision", "collision", "rear_end", "pedestrian", "skid"}
)

// NewDemoRepository creates a memory repository with deterministic Almaty
// sample data covering the 30 days before now.
func NewDemoRepository(now time.Time) *MemoryRepository {
	rng := rand.New(rand.NewPCG(2024, 43))

	incidents := make([]domain.Incident, 0, 160)
	for i := 0; i < 160; i++ {
		day := now.AddDate(0, 0, -rng.IntN(30))
		hour := demoHours[rng.IntN(len(demoHours))]
		at := time.Date(day.Year(), day.Month(), day.Day(), hour, rng.IntN(60), 0, 0, now.Location())
		if at.After(now) {
			at = at.AddDate(0, 0, -1)
		}

		inc := domain.Incident{
			ID:         fmt.Sprintf("inc-%03d", i+1),
			Severity:   demoSeverities[rng.IntN(len(demoSeverities))],
			Category:   demoCategories[rng.IntN(len(demoCategories))],
			DetectedAt: at.Format(time.RFC3339),
		}
		// every tenth incident was reported without a camera
		if i%10 != 9 {
			inc.AssociatedCameraID = demoCameras[rng.IntN(len(demoCameras))].ID
		}
		incidents = append(incidents, inc)
	}

	observations := make([]domain.WeatherObservation, 0, 12)
	for i := 0; i < 12; i++ {
		observations = append(observations, domain.WeatherObservation{
			StationID: fmt.Sprintf("station-%02d", i+1),
			Location: domain.Point{
				Lat: domain.AlmatyCenterLat + (rng.Float64()-0.5)*0.12,
				Lng: domain.AlmatyCenterLng + (rng.Float64()-0.5)*0.16,
			},
			Temperature: -8 + rng.Float64()*6,
			Humidity:    60 + rng.IntN(30),
			AQI:         60 + rng.IntN(120),
			ObservedAt:  now.Add(-time.Duration(i*5) * time.Minute),
		})
	}

	return NewMemoryRepository(demoCameras, incidents, demoPatterns, observations)
}
