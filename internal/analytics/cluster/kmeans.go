// Package cluster groups located records into spatial zones.
//
// Only k-means is implemented. Distances are planar Euclidean on
// (lat, lng) degrees, not geodesic. Centroid seeding draws from a
// caller-supplied random source so that concurrent calls never share
// state and tests can fix the seed.
package cluster

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/smartcity/traffic-analytics/internal/analytics/geometry"
	"github.com/smartcity/traffic-analytics/internal/domain"
	"github.com/smartcity/traffic-analytics/pkg/utils"
)

// AlgorithmKMeans is the only supported clustering algorithm
const AlgorithmKMeans = "kmeans"

// MaxIterations caps the assign / update loop
const MaxIterations = 100

var (
	// ErrUnsupportedAlgorithm is returned for any algorithm other than kmeans
	ErrUnsupportedAlgorithm = errors.New("cluster: unsupported algorithm")

	// ErrInvalidK is returned when fewer than one cluster is requested
	ErrInvalidK = errors.New("cluster: k must be at least 1")
)

// Rand is the subset of *rand.Rand used for seeding
type Rand interface {
	IntN(n int) int
}

// Options configures a clustering run
type Options struct {
	Algorithm string // defaults to kmeans
	K         int
	Rand      Rand // nil means a fresh, randomly seeded source for this call
}

// Run validates the options and clusters the records
func Run(records []domain.LocatedRecord, opts Options) ([]domain.ZoneResult, error) {
	algorithm := opts.Algorithm
	if algorithm == "" {
		algorithm = AlgorithmKMeans
	}
	if algorithm != AlgorithmKMeans {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, opts.Algorithm)
	}
	if opts.K < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidK, opts.K)
	}

	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	return KMeans(records, opts.K, rng), nil
}

// KMeans clusters records into at most k zones. Clusters that end up
// empty are dropped from the result.
func KMeans(records []domain.LocatedRecord, k int, rng Rand) []domain.ZoneResult {
	if len(records) == 0 || k < 1 {
		return []domain.ZoneResult{}
	}

	centroids := seedCentroids(records, k, rng)

	assignment := make([]int, len(records))
	for i := range assignment {
		assignment[i] = -1
	}

	for iter := 0; iter < MaxIterations; iter++ {
		changed := false
		for i, r := range records {
			c := nearest(r.Location, centroids)
			if c != assignment[i] {
				assignment[i] = c
				changed = true
			}
		}
		if !changed {
			break
		}

		// Empty clusters keep their previous centroid
		members := groupPoints(records, assignment, len(centroids))
		for c, pts := range members {
			if len(pts) > 0 {
				centroids[c] = geometry.Centroid(pts)
			}
		}
	}

	return buildZones(records, assignment, centroids)
}

// seedCentroids samples min(k, distinct) distinct locations uniformly
// without replacement (partial Fisher-Yates over first-seen order).
func seedCentroids(records []domain.LocatedRecord, k int, rng Rand) []domain.Point {
	seen := make(map[domain.Point]struct{}, len(records))
	distinct := make([]domain.Point, 0, len(records))
	for _, r := range records {
		if _, ok := seen[r.Location]; ok {
			continue
		}
		seen[r.Location] = struct{}{}
		distinct = append(distinct, r.Location)
	}

	n := min(k, len(distinct))
	for i := 0; i < n; i++ {
		j := i + rng.IntN(len(distinct)-i)
		distinct[i], distinct[j] = distinct[j], distinct[i]
	}

	centroids := make([]domain.Point, n)
	copy(centroids, distinct[:n])
	return centroids
}

// nearest returns the index of the closest centroid; ties go to the lower index
func nearest(p domain.Point, centroids []domain.Point) int {
	best := 0
	bestDist := squaredDistance(p, centroids[0])
	for i := 1; i < len(centroids); i++ {
		if d := squaredDistance(p, centroids[i]); d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best
}

func squaredDistance(a, b domain.Point) float64 {
	dLat := a.Lat - b.Lat
	dLng := a.Lng - b.Lng
	return dLat*dLat + dLng*dLng
}

func groupPoints(records []domain.LocatedRecord, assignment []int, k int) [][]domain.Point {
	groups := make([][]domain.Point, k)
	for i, c := range assignment {
		groups[c] = append(groups[c], records[i].Location)
	}
	return groups
}

func buildZones(records []domain.LocatedRecord, assignment []int, centroids []domain.Point) []domain.ZoneResult {
	members := make([][]domain.LocatedRecord, len(centroids))
	for i, c := range assignment {
		members[c] = append(members[c], records[i])
	}

	zones := make([]domain.ZoneResult, 0, len(centroids))
	for c, group := range members {
		if len(group) == 0 {
			continue
		}

		points := make([]domain.Point, len(group))
		for i, r := range group {
			points[i] = r.Location
		}

		centroid := centroids[c]
		var radius float64
		for _, p := range points {
			radius = max(radius, utils.Haversine(centroid.Lat, centroid.Lng, p.Lat, p.Lng))
		}

		zones = append(zones, domain.ZoneResult{
			ZoneID:      fmt.Sprintf("zone-%d", len(zones)+1),
			Members:     group,
			MemberCount: len(group),
			Centroid:    centroid,
			RadiusKm:    utils.RoundTo(radius, 3),
			Attributes:  attributeStats(group),
			Polygon:     geometry.ConvexHull(points),
		})
	}

	return zones
}

// attributeStats computes min/avg/max for every attribute present on at
// least one member, over the members that carry it.
func attributeStats(group []domain.LocatedRecord) map[string]domain.AttributeStats {
	values := make(map[string][]float64)
	for _, r := range group {
		for name, v := range r.Attributes {
			values[name] = append(values[name], v)
		}
	}

	out := make(map[string]domain.AttributeStats, len(values))
	for name, vs := range values {
		out[name] = domain.AttributeStats{
			Min: floats.Min(vs),
			Avg: stat.Mean(vs, nil),
			Max: floats.Max(vs),
		}
	}
	return out
}
