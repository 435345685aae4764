package track_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/redgreat/racewong/internal/models"
	"github.com/redgreat/racewong/internal/track"
)

func point(lat, lon, speed float64, second int, fix models.FixStatus) models.Sample {
	return models.Sample{
		Year: 2025, Month: 1, Day: 15, Hour: 8, Minute: 0, Second: second,
		FixStatus: fix,
		Latitude:  lat,
		Longitude: lon,
		Speed:     speed,
	}
}

func TestSummarize(t *testing.T) {
	samples := []models.Sample{
		point(0, 0, 10, 0, models.Fix3D),
		point(45, 45, 999, 1, models.FixNone), // no fix, ignored
		point(0, 1, 30, 2, models.Fix3D),
		point(0.5, 1, 20, 4, models.Fix2D),
	}
	sum := track.Summarize(samples)

	if sum.Points != 3 {
		t.Errorf("points = %d, want 3", sum.Points)
	}
	// one degree of longitude at the equator plus half a degree of latitude
	want := 1.5 * math.Pi / 180 * track.EarthRadiusMeters
	if math.Abs(sum.DistanceM-want) > 1 {
		t.Errorf("distance = %.1f m, want %.1f m", sum.DistanceM, want)
	}
	if sum.MaxSpeed != 30 {
		t.Errorf("max speed = %v, want 30", sum.MaxSpeed)
	}
	if sum.DurationMS != 4000 {
		t.Errorf("duration = %d ms, want 4000", sum.DurationMS)
	}
	b := sum.Bounds
	if b == nil {
		t.Fatal("expected bounds")
	}
	if math.Abs(b.MinLat) > 1e-9 || math.Abs(b.MaxLat-0.5) > 1e-9 || math.Abs(b.MinLon) > 1e-9 || math.Abs(b.MaxLon-1) > 1e-9 {
		t.Errorf("bounds = %+v", *b)
	}
}

func TestSummarize_NoFix(t *testing.T) {
	sum := track.Summarize([]models.Sample{point(1, 1, 5, 0, models.FixNone)})
	if sum.Points != 0 || sum.Bounds != nil || sum.DistanceM != 0 {
		t.Errorf("expected empty summary, got %+v", sum)
	}
}

func TestGeoJSON(t *testing.T) {
	f := track.GeoJSON([]models.Sample{
		point(31.2, 121.4, 0, 0, models.Fix3D),
		point(31.3, 121.5, 0, 1, models.FixNone),
		point(31.4, 121.6, 0, 2, models.Fix3D),
	})
	raw, err := json.Marshal(f)
	if err != nil {
		t.Fatal(err)
	}
	var decoded struct {
		Type     string `json:"type"`
		Geometry struct {
			Type        string      `json:"type"`
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Type != "Feature" || decoded.Geometry.Type != "LineString" {
		t.Errorf("unexpected types %q / %q", decoded.Type, decoded.Geometry.Type)
	}
	if n := len(decoded.Geometry.Coordinates); n != 2 {
		t.Fatalf("coordinates = %d, want 2", n)
	}
	if c := decoded.Geometry.Coordinates[1]; c[0] != 121.6 || c[1] != 31.4 {
		t.Errorf("second coordinate = %v, want lon/lat order", c)
	}
}
