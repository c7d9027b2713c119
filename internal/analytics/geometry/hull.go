// Package geometry holds the planar geometry shared by zone clustering and
// pattern-area reporting. Coordinates are treated as a flat (lng, lat)
// plane; no projection is applied.
package geometry

import (
	"math"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/smartcity/traffic-analytics/internal/domain"
)

// ConvexHull returns the closed convex hull ring of the points using a
// Graham scan, with coordinates in [lng, lat] order. It returns nil when
// fewer than three hull vertices remain (too few points, duplicates or a
// collinear set).
func ConvexHull(points []domain.Point) orb.Ring {
	if len(points) < 3 {
		return nil
	}

	pts := make([]orb.Point, len(points))
	for i, p := range points {
		pts[i] = p.Orb()
	}

	// Anchor: lowest lat, ties broken by lowest lng
	a := 0
	for i := 1; i < len(pts); i++ {
		if pts[i].Lat() < pts[a].Lat() ||
			(pts[i].Lat() == pts[a].Lat() && pts[i].Lon() < pts[a].Lon()) {
			a = i
		}
	}
	anchor := pts[a]

	rest := make([]orb.Point, 0, len(pts)-1)
	rest = append(rest, pts[:a]...)
	rest = append(rest, pts[a+1:]...)

	// Every point lies at or above the anchor, so polar angles fall in
	// [0, pi) and the orientation of (anchor, i, j) orders them.
	sort.SliceStable(rest, func(i, j int) bool {
		if c := cross(anchor, rest[i], rest[j]); c != 0 {
			return c > 0
		}
		return distance(anchor, rest[i]) < distance(anchor, rest[j])
	})

	hull := make([]orb.Point, 0, len(pts))
	hull = append(hull, anchor)
	for _, p := range rest {
		// only strict left turns survive
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}

	if len(hull) < 3 {
		return nil
	}

	ring := make(orb.Ring, 0, len(hull)+1)
	ring = append(ring, hull...)
	ring = append(ring, hull[0])
	return ring
}

// Centroid returns the arithmetic mean of the points
func Centroid(points []domain.Point) domain.Point {
	if len(points) == 0 {
		return domain.Point{}
	}

	var sumLat, sumLng float64
	for _, p := range points {
		sumLat += p.Lat
		sumLng += p.Lng
	}

	return domain.Point{
		Lat: sumLat / float64(len(points)),
		Lng: sumLng / float64(len(points)),
	}
}

// Area returns the planar area of a closed ring in squared degrees.
// A nil ring has zero area.
func Area(ring orb.Ring) float64 {
	if len(ring) < 4 {
		return 0
	}
	return math.Abs(planar.Area(ring))
}

func distance(a, b orb.Point) float64 {
	dx := b.Lon() - a.Lon()
	dy := b.Lat() - a.Lat()
	return math.Sqrt(dx*dx + dy*dy)
}

// cross is the z component of (a-o) x (b-o); positive means a left turn
func cross(o, a, b orb.Point) float64 {
	return (a.Lon()-o.Lon())*(b.Lat()-o.Lat()) - (a.Lat()-o.Lat())*(b.Lon()-o.Lon())
}
