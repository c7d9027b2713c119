package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/smartcity/traffic-analytics/internal/analytics/cluster"
	"github.com/smartcity/traffic-analytics/internal/analytics/correlation"
	"github.com/smartcity/traffic-analytics/internal/analytics/geometry"
	analyticsgeo "github.com/smartcity/traffic-analytics/internal/analytics/geojson"
	"github.com/smartcity/traffic-analytics/internal/analytics/hotspot"
	"github.com/smartcity/traffic-analytics/internal/analytics/temporal"
	"github.com/smartcity/traffic-analytics/internal/config"
	"github.com/smartcity/traffic-analytics/internal/domain"
	"github.com/smartcity/traffic-analytics/internal/logging"
)

// HotspotQuery selects hotspot candidates. Zero values fall back to config defaults.
type HotspotQuery struct {
	MinThreshold int
	Days         int
}

// ZoneQuery configures zone clustering. Zero values fall back to config defaults.
type ZoneQuery struct {
	K         int
	Algorithm string
	Days      int
}

// TemporalQuery configures the incident histograms
type TemporalQuery struct {
	Dimensions []string
	WindowDays int
}

// AnalyticsService runs the analytics over repository data
type AnalyticsService struct {
	repo DataRepository
	cfg  config.AnalyticsConfig
	log  zerolog.Logger
	now  func() time.Time
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(repo DataRepository, cfg config.AnalyticsConfig) *AnalyticsService {
	return &AnalyticsService{
		repo: repo,
		cfg:  cfg,
		log:  logging.WithComponent("analytics"),
		now:  time.Now,
	}
}

// Health checks the underlying repository
func (s *AnalyticsService) Health(ctx context.Context) error {
	return s.repo.Health(ctx)
}

// Hotspots ranks cameras by accident risk
func (s *AnalyticsService) Hotspots(ctx context.Context, q HotspotQuery) ([]domain.HotspotResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	threshold := q.MinThreshold
	if threshold <= 0 {
		threshold = s.cfg.HotspotMinThreshold
	}

	from, to := s.window(q.Days)
	data, err := s.load(ctx, loadCameras|loadIncidents, from, to)
	if err != nil {
		return nil, err
	}

	results := hotspot.Analyze(data.incidents, data.cameras, threshold)
	s.log.Debug().
		Int("incidents", len(data.incidents)).
		Int("min_threshold", threshold).
		Int("hotspots", len(results)).
		Msg("hotspots analyzed")
	return results, nil
}

// Zones clusters the latest weather observations into spatial zones
func (s *AnalyticsService) Zones(ctx context.Context, q ZoneQuery) ([]domain.ZoneResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	k := q.K
	if k == 0 {
		k = s.cfg.DefaultK
	}

	from, to := s.window(q.Days)
	data, err := s.load(ctx, loadObservations, from, to)
	if err != nil {
		return nil, err
	}

	records := make([]domain.LocatedRecord, 0, len(data.observations))
	for _, w := range data.observations {
		if !w.Location.Valid() {
			s.log.Warn().Str("station_id", w.StationID).Msg("skipping observation with invalid location")
			continue
		}
		records = append(records, w.LocatedRecord())
	}

	opts := cluster.Options{Algorithm: q.Algorithm, K: k}
	if s.cfg.KMeansSeed != 0 {
		opts.Rand = rand.New(rand.NewPCG(s.cfg.KMeansSeed, s.cfg.KMeansSeed))
	}

	zones, err := cluster.Run(records, opts)
	if err != nil {
		return nil, err
	}

	s.log.Debug().
		Int("records", len(records)).
		Int("k", k).
		Int("zones", len(zones)).
		Msg("zones clustered")
	return zones, nil
}

// ZonesGeoJSON renders Zones as a feature collection
func (s *AnalyticsService) ZonesGeoJSON(ctx context.Context, q ZoneQuery) (*geojson.FeatureCollection, error) {
	zones, err := s.Zones(ctx, q)
	if err != nil {
		return nil, err
	}
	return analyticsgeo.ZonesToFeatureCollection(zones), nil
}

// Temporal builds hour and day-of-week incident histograms
func (s *AnalyticsService) Temporal(ctx context.Context, q TemporalQuery) (temporal.Histogram, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	windowDays := q.WindowDays
	if windowDays == 0 {
		windowDays = s.cfg.WindowDays
	}

	now := s.now()
	from, to := s.window(windowDays)
	data, err := s.load(ctx, loadIncidents, from, to)
	if err != nil {
		return temporal.Histogram{}, err
	}

	timestamps := make([]string, 0, len(data.incidents))
	for _, inc := range data.incidents {
		timestamps = append(timestamps, inc.DetectedAt)
	}

	return temporal.Bucketize(timestamps, temporal.Options{
		Dimensions: q.Dimensions,
		WindowDays: windowDays,
		Now:        now,
	})
}

// Correlation matches incidents against recurring traffic patterns
func (s *AnalyticsService) Correlation(ctx context.Context, days int) (domain.CorrelationResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	from, to := s.window(days)
	data, err := s.load(ctx, loadIncidents|loadPatterns, from, to)
	if err != nil {
		return domain.CorrelationResult{}, err
	}

	result, err := correlation.Correlate(data.incidents, data.patterns)
	if err != nil {
		return domain.CorrelationResult{}, err
	}

	s.log.Debug().
		Int("incidents", result.TotalIncidents).
		Int("correlated", result.CorrelatedIncidents).
		Int("patterns", len(data.patterns)).
		Msg("incidents correlated")
	return result, nil
}

// PatternAreas computes the convex area covered by each pattern's cameras.
// Unknown camera ids and invalid locations are ignored.
func (s *AnalyticsService) PatternAreas(ctx context.Context) ([]domain.PatternArea, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	data, err := s.load(ctx, loadCameras|loadPatterns, time.Time{}, time.Time{})
	if err != nil {
		return nil, err
	}

	locations := make(map[string]domain.Point, len(data.cameras))
	for _, c := range data.cameras {
		if c.Location.Valid() {
			locations[c.ID] = c.Location
		}
	}

	areas := make([]domain.PatternArea, 0, len(data.patterns))
	for _, p := range data.patterns {
		var points []domain.Point
		for _, id := range p.AssociatedCameraIDs {
			if loc, ok := locations[id]; ok {
				points = append(points, loc)
			}
		}

		ring := geometry.ConvexHull(points)
		areas = append(areas, domain.PatternArea{
			PatternID:       p.ID,
			PatternType:     p.PatternType,
			CongestionLevel: p.CongestionLevel,
			TimeRange:       p.TimeRange,
			CameraCount:     len(points),
			Area:            geometry.Area(ring),
			Polygon:         ring,
		})
	}
	return areas, nil
}

// PatternAreasGeoJSON renders PatternAreas as a feature collection
func (s *AnalyticsService) PatternAreasGeoJSON(ctx context.Context) (*geojson.FeatureCollection, error) {
	areas, err := s.PatternAreas(ctx)
	if err != nil {
		return nil, err
	}
	return analyticsgeo.PatternAreasToFeatureCollection(areas), nil
}

// window returns the load range for the last days days.
// Non-positive days use the configured window; a zero window is unbounded.
func (s *AnalyticsService) window(days int) (time.Time, time.Time) {
	if days <= 0 {
		days = s.cfg.WindowDays
	}
	to := s.now()
	if days <= 0 {
		return time.Time{}, to
	}
	return to.AddDate(0, 0, -days), to
}

type loadSet uint8

const (
	loadCameras loadSet = 1 << iota
	loadIncidents
	loadPatterns
	loadObservations
)

type dataset struct {
	cameras      []domain.Camera
	incidents    []domain.Incident
	patterns     []domain.Pattern
	observations []domain.WeatherObservation
}

// load fetches the requested record sets concurrently
func (s *AnalyticsService) load(ctx context.Context, want loadSet, from, to time.Time) (dataset, error) {
	var d dataset
	start := time.Now()
	g, ctx := errgroup.WithContext(ctx)

	if want&loadCameras != 0 {
		g.Go(func() error {
			var err error
			d.cameras, err = s.repo.GetCameras(ctx)
			return err
		})
	}
	if want&loadIncidents != 0 {
		g.Go(func() error {
			var err error
			d.incidents, err = s.repo.GetIncidents(ctx, from, to)
			return err
		})
	}
	if want&loadPatterns != 0 {
		g.Go(func() error {
			var err error
			d.patterns, err = s.repo.GetPatterns(ctx)
			return err
		})
	}
	if want&loadObservations != 0 {
		g.Go(func() error {
			var err error
			d.observations, err = s.repo.GetWeatherObservations(ctx, from, to)
			return err
		})
	}

	if err := g.Wait(); err != nil {
		s.log.Error().Err(err).Msg("failed to load analytics inputs")
		return dataset{}, fmt.Errorf("service: failed to load analytics inputs: %w", err)
	}

	s.log.Debug().Dur("took", time.Since(start)).Msg("analytics inputs loaded")
	return d, nil
}
