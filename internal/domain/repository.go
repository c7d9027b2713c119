package domain

import (
	"context"
	"time"
)

// DataRepository defines the interface for the upstream record store
// This follows the Dependency Inversion Principle - domain defines the interface
type DataRepository interface {
	// GetCameras returns every known camera
	GetCameras(ctx context.Context) ([]Camera, error)

	// GetIncidents returns incidents detected between from and to
	GetIncidents(ctx context.Context, from, to time.Time) ([]Incident, error)

	// GetPatterns returns all recurring traffic patterns
	GetPatterns(ctx context.Context) ([]Pattern, error)

	// GetWeatherObservations returns station readings between from and to
	GetWeatherObservations(ctx context.Context, from, to time.Time) ([]WeatherObservation, error)

	// Health checks store connectivity
	Health(ctx context.Context) error
}
