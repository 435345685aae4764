// Package track derives a driven path from stored samples: distance, speed
// and bounds, plus a GeoJSON rendering of the line.
package track

import (
	"time"

	"github.com/golang/geo/s2"

	"github.com/redgreat/racewong/internal/models"
)

// EarthRadiusMeters is the mean Earth radius used for distances.
const EarthRadiusMeters = 6371008.8

// Bounds is the lat/lon bounding box of a track, in degrees.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

// Summary describes the fixed positions of one session.
type Summary struct {
	Points     int       `json:"points"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	DurationMS int64     `json:"duration_ms"`
	DistanceM  float64   `json:"distance_m"`
	MaxSpeed   float64   `json:"max_speed"`
	Bounds     *Bounds   `json:"bounds,omitempty"`
}

// Summarize walks samples in the order given. Samples without a fix are
// skipped.
func Summarize(samples []models.Sample) Summary {
	var (
		sum  Summary
		prev s2.LatLng
		rect = s2.EmptyRect()
	)
	for _, s := range samples {
		if !s.HasFix() {
			continue
		}
		ll := s2.LatLngFromDegrees(s.Latitude, s.Longitude)
		if sum.Points == 0 {
			sum.Start = s.Time()
		} else {
			sum.DistanceM += prev.Distance(ll).Radians() * EarthRadiusMeters
		}
		sum.End = s.Time()
		sum.MaxSpeed = max(sum.MaxSpeed, s.Speed)
		rect = rect.AddPoint(ll)
		prev = ll
		sum.Points++
	}
	if sum.Points == 0 {
		return sum
	}
	sum.DurationMS = sum.End.Sub(sum.Start).Milliseconds()
	lo, hi := rect.Lo(), rect.Hi()
	sum.Bounds = &Bounds{
		MinLat: lo.Lat.Degrees(),
		MinLon: lo.Lng.Degrees(),
		MaxLat: hi.Lat.Degrees(),
		MaxLon: hi.Lng.Degrees(),
	}
	return sum
}

// Geometry is a GeoJSON geometry object.
type Geometry struct {
	Type        string      `json:"type"`
	Coordinates [][]float64 `json:"coordinates"`
}

// Feature is a GeoJSON feature.
type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

// GeoJSON renders the fixed positions as a LineString feature with
// [lon, lat, msl_altitude] coordinates.
func GeoJSON(samples []models.Sample) Feature {
	coords := make([][]float64, 0, len(samples))
	for _, s := range samples {
		if s.HasFix() {
			coords = append(coords, []float64{s.Longitude, s.Latitude, s.MSLAltitude})
		}
	}
	props := map[string]any{"points": len(coords)}
	if len(samples) > 0 {
		props["imp_stamp"] = samples[0].ImpStamp.String()
	}
	return Feature{
		Type:       "Feature",
		Geometry:   Geometry{Type: "LineString", Coordinates: coords},
		Properties: props,
	}
}
