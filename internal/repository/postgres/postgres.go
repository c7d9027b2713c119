package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/smartcity/traffic-analytics/internal/domain"
)

// PostgresRepository implements domain.DataRepository
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// GetCameras retrieves every camera
func (r *PostgresRepository) GetCameras(ctx context.Context) ([]domain.Camera, error) {
	query := `
		SELECT id, name, latitude, longitude
		FROM cameras
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query cameras: %w", err)
	}
	defer rows.Close()

	var results []domain.Camera
	for rows.Next() {
		var c domain.Camera
		if err := rows.Scan(&c.ID, &c.Name, &c.Location.Lat, &c.Location.Lng); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan camera row: %w", err)
		}
		results = append(results, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: failed to read cameras: %w", err)
	}

	return results, nil
}

// GetIncidents retrieves incidents detected within a time range.
// detected_at is rendered as RFC3339 in the server's local zone.
func (r *PostgresRepository) GetIncidents(ctx context.Context, from, to time.Time) ([]domain.Incident, error) {
	query := `
		SELECT id, COALESCE(camera_id, ''), severity, category, detected_at
		FROM incidents
		WHERE detected_at BETWEEN $1 AND $2
		ORDER BY detected_at
	`

	rows, err := r.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query incidents: %w", err)
	}
	defer rows.Close()

	var results []domain.Incident
	for rows.Next() {
		var (
			inc        domain.Incident
			detectedAt time.Time
		)
		if err := rows.Scan(&inc.ID, &inc.AssociatedCameraID, &inc.Severity, &inc.Category, &detectedAt); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan incident row: %w", err)
		}
		inc.DetectedAt = detectedAt.Local().Format(time.RFC3339)
		results = append(results, inc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: failed to read incidents: %w", err)
	}

	return results, nil
}

// GetPatterns retrieves all recurring traffic patterns
func (r *PostgresRepository) GetPatterns(ctx context.Context) ([]domain.Pattern, error) {
	query := `
		SELECT id, pattern_type, time_range, days_of_week,
			   average_vehicle_count, congestion_level, camera_ids
		FROM traffic_patterns
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query traffic patterns: %w", err)
	}
	defer rows.Close()

	var results []domain.Pattern
	for rows.Next() {
		var p domain.Pattern
		err := rows.Scan(
			&p.ID, &p.PatternType, &p.TimeRange, &p.DaysOfWeek,
			&p.AverageVehicleCount, &p.CongestionLevel, &p.AssociatedCameraIDs,
		)
		if err != nil {
			return nil, fmt.Errorf("postgres: failed to scan traffic pattern row: %w", err)
		}
		results = append(results, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: failed to read traffic patterns: %w", err)
	}

	return results, nil
}

// GetWeatherObservations retrieves station readings within a time range
func (r *PostgresRepository) GetWeatherObservations(ctx context.Context, from, to time.Time) ([]domain.WeatherObservation, error) {
	query := `
		SELECT DISTINCT ON (station_id)
			   station_id, latitude, longitude, temperature, humidity, aqi, observed_at
		FROM weather_observations
		WHERE observed_at BETWEEN $1 AND $2
		ORDER BY station_id, observed_at DESC
	`

	rows, err := r.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query weather observations: %w", err)
	}
	defer rows.Close()

	var results []domain.WeatherObservation
	for rows.Next() {
		var w domain.WeatherObservation
		err := rows.Scan(
			&w.StationID, &w.Location.Lat, &w.Location.Lng,
			&w.Temperature, &w.Humidity, &w.AQI, &w.ObservedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("postgres: failed to scan weather observation row: %w", err)
		}
		results = append(results, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: failed to read weather observations: %w", err)
	}

	return results, nil
}

// Health checks database connectivity
func (r *PostgresRepository) Health(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres: health check failed: %w", err)
	}
	return nil
}
