package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcity/traffic-analytics/internal/analytics/correlation"
	"github.com/smartcity/traffic-analytics/internal/domain"
)

var now = time.Date(2026, 3, 16, 12, 0, 0, 0, time.UTC)

func TestMemoryRepository_GetIncidentsFiltersByRange(t *testing.T) {
	repo := NewMemoryRepository(nil, []domain.Incident{
		{ID: "old", DetectedAt: "2026-01-01T08:00:00Z"},
		{ID: "recent", DetectedAt: "2026-03-15T08:00:00Z"},
		{ID: "broken", DetectedAt: "yesterday"},
	}, nil, nil)

	got, err := repo.GetIncidents(context.Background(), now.AddDate(0, 0, -7), now)
	require.NoError(t, err)

	ids := make([]string, 0, len(got))
	for _, inc := range got {
		ids = append(ids, inc.ID)
	}
	assert.Equal(t, []string{"recent", "broken"}, ids)
}

func TestMemoryRepository_GetWeatherObservationsFiltersByRange(t *testing.T) {
	repo := NewMemoryRepository(nil, nil, nil, []domain.WeatherObservation{
		{StationID: "a", ObservedAt: now.Add(-time.Hour)},
		{StationID: "b", ObservedAt: now.Add(-48 * time.Hour)},
	})

	got, err := repo.GetWeatherObservations(context.Background(), now.Add(-24*time.Hour), now)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].StationID)
}

func TestNewDemoRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewDemoRepository(now)

	cameras, err := repo.GetCameras(ctx)
	require.NoError(t, err)
	assert.Len(t, cameras, 8)

	incidents, err := repo.GetIncidents(ctx, now.AddDate(0, 0, -31), now)
	require.NoError(t, err)
	assert.Len(t, incidents, 160)
	for _, inc := range incidents {
		_, err := domain.ParseTimestamp(inc.DetectedAt)
		assert.NoError(t, err, inc.ID)
	}

	patterns, err := repo.GetPatterns(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, patterns)
	for _, p := range patterns {
		_, err := correlation.ParseTimeRange(p.TimeRange)
		assert.NoError(t, err, p.ID)
	}

	observations, err := repo.GetWeatherObservations(ctx, now.Add(-time.Hour), now)
	require.NoError(t, err)
	assert.Len(t, observations, 12)

	assert.NoError(t, repo.Health(ctx))
}

func TestNewDemoRepository_Deterministic(t *testing.T) {
	a, _ := NewDemoRepository(now).GetIncidents(context.Background(), now.AddDate(0, 0, -31), now)
	b, _ := NewDemoRepository(now).GetIncidents(context.Background(), now.AddDate(0, 0, -31), now)
	assert.Equal(t, a, b)
}
