// Package geojson wraps analytics results into GeoJSON feature collections
// for map consumers.
//
// Zone and pattern consumers treat missing geometry differently: zones
// always render, so a zone without a hull becomes a single-point polygon
// at its centroid; pattern areas without a hull are left out.
package geojson

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/smartcity/traffic-analytics/internal/domain"
)

// ZonesToFeatureCollection converts clustering zones into polygon features
func ZonesToFeatureCollection(zones []domain.ZoneResult) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, z := range zones {
		ring := z.Polygon
		if ring == nil {
			ring = orb.Ring{z.Centroid.Orb()}
		}

		f := geojson.NewFeature(orb.Polygon{ring})
		f.Properties["zone_id"] = z.ZoneID
		f.Properties["member_count"] = z.MemberCount
		f.Properties["centroid"] = []float64{z.Centroid.Lng, z.Centroid.Lat}
		f.Properties["radius_km"] = z.RadiusKm
		for name, s := range z.Attributes {
			f.Properties[name+"_min"] = s.Min
			f.Properties[name+"_avg"] = s.Avg
			f.Properties[name+"_max"] = s.Max
		}
		fc.Append(f)
	}
	return fc
}

// PatternAreasToFeatureCollection converts pattern areas into polygon
// features, omitting areas without a polygon.
func PatternAreasToFeatureCollection(areas []domain.PatternArea) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, a := range areas {
		if a.Polygon == nil {
			continue
		}

		f := geojson.NewFeature(orb.Polygon{a.Polygon})
		f.ID = a.PatternID
		f.Properties["pattern_id"] = a.PatternID
		f.Properties["pattern_type"] = a.PatternType
		f.Properties["congestion_level"] = a.CongestionLevel
		f.Properties["time_range"] = a.TimeRange
		f.Properties["camera_count"] = a.CameraCount
		f.Properties["area"] = a.Area
		fc.Append(f)
	}
	return fc
}
