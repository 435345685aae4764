package models_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/redgreat/racewong/internal/models"
)

func validSample() models.Sample {
	return models.Sample{
		ITOW:      345_600_000,
		Year:      2025,
		Month:     1,
		Day:       15,
		Hour:      8,
		Minute:    30,
		Second:    12,
		FixStatus: models.Fix3D,
		NumSVs:    14,
		Longitude: 121.4737,
		Latitude:  31.2304,
	}
}

func TestSampleValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*models.Sample)
		wantErr bool
	}{
		{name: "valid", mutate: func(*models.Sample) {}},
		{name: "no fix is storable", mutate: func(s *models.Sample) { s.FixStatus = models.FixNone }},
		{name: "negative itow", mutate: func(s *models.Sample) { s.ITOW = -1 }, wantErr: true},
		{name: "itow past end of week", mutate: func(s *models.Sample) { s.ITOW = models.MaxITOW }, wantErr: true},
		{name: "unknown fix status", mutate: func(s *models.Sample) { s.FixStatus = 1 }, wantErr: true},
		{name: "month zero", mutate: func(s *models.Sample) { s.Month = 0 }, wantErr: true},
		{name: "day 32", mutate: func(s *models.Sample) { s.Day = 32 }, wantErr: true},
		{name: "hour 24", mutate: func(s *models.Sample) { s.Hour = 24 }, wantErr: true},
		{name: "leap second", mutate: func(s *models.Sample) { s.Second = 60 }},
		{name: "latitude out of range", mutate: func(s *models.Sample) { s.Latitude = 91 }, wantErr: true},
		{name: "longitude out of range", mutate: func(s *models.Sample) { s.Longitude = -181 }, wantErr: true},
		{name: "fix status not exported", mutate: func(s *models.Sample) { s.FixStatus = models.FixUnknown }},
		{name: "year zero", mutate: func(s *models.Sample) { s.Year = 0 }, wantErr: true},
		{name: "year past 9999", mutate: func(s *models.Sample) { s.Year = 10000 }, wantErr: true},
		{name: "february 30", mutate: func(s *models.Sample) { s.Month, s.Day = 2, 30 }, wantErr: true},
		{name: "february 29 non-leap", mutate: func(s *models.Sample) { s.Month, s.Day = 2, 29 }, wantErr: true},
		{name: "february 29 leap", mutate: func(s *models.Sample) { s.Year, s.Month, s.Day = 2024, 2, 29 }},
		{name: "april 31", mutate: func(s *models.Sample) { s.Month, s.Day = 4, 31 }, wantErr: true},
		{name: "time accuracy past int32", mutate: func(s *models.Sample) { s.TimeAccuracy = 3_000_000_000 }, wantErr: true},
		{name: "nanoseconds below int32", mutate: func(s *models.Sample) { s.Nanoseconds = -3_000_000_000 }, wantErr: true},
		{name: "pdop past int32", mutate: func(s *models.Sample) { s.PDOP = 1 << 31 }, wantErr: true},
		{name: "altitude past decimal(10,3)", mutate: func(s *models.Sample) { s.WGSAltitude = 2e7 }, wantErr: true},
		{name: "altitude rounds past decimal(10,3)", mutate: func(s *models.Sample) { s.MSLAltitude = 9_999_999.9996 }, wantErr: true},
		{name: "altitude at decimal(10,3) edge", mutate: func(s *models.Sample) { s.MSLAltitude = -9_999_999.999 }},
		{name: "heading past decimal(10,5)", mutate: func(s *models.Sample) { s.Heading = 100_000 }, wantErr: true},
		{name: "rotation past decimal(10,2)", mutate: func(s *models.Sample) { s.RotationRateZ = 1e8 }, wantErr: true},
		{name: "speed not a number", mutate: func(s *models.Sample) { s.Speed = math.NaN() }, wantErr: true},
		{name: "gforce infinite", mutate: func(s *models.Sample) { s.GForceX = math.Inf(1) }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSample()
			tt.mutate(&s)
			err := s.Validate()
			if tt.wantErr {
				if !errors.Is(err, models.ErrInvalidSample) {
					t.Fatalf("expected ErrInvalidSample, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestSampleTime(t *testing.T) {
	s := validSample()
	s.Nanoseconds = -250_000_000

	want := time.Date(2025, 1, 15, 8, 30, 11, 750_000_000, time.UTC)
	if got := s.Time(); !got.Equal(want) {
		t.Errorf("Time() = %v, want %v", got, want)
	}
}

func TestSessionName(t *testing.T) {
	first := validSample()
	last := validSample()
	last.Hour, last.Minute, last.Second = 9, 5, 7

	if got, want := models.SessionName(first, last), "20250115083012_20250115090507"; got != want {
		t.Errorf("SessionName = %q, want %q", got, want)
	}
}

func TestHasFix(t *testing.T) {
	tests := []struct {
		name     string
		fix      models.FixStatus
		lat, lon float64
		want     bool
	}{
		{"3D", models.Fix3D, 31.2, 121.4, true},
		{"no fix", models.FixNone, 31.2, 121.4, false},
		{"unknown with position", models.FixUnknown, 31.2, 121.4, true},
		{"unknown at null island", models.FixUnknown, 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSample()
			s.FixStatus, s.Latitude, s.Longitude = tt.fix, tt.lat, tt.lon
			if got := s.HasFix(); got != tt.want {
				t.Errorf("HasFix() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFixStatusString(t *testing.T) {
	if models.Fix3D.String() != "3D" || models.FixNone.String() != "no fix" {
		t.Errorf("unexpected names: %q %q", models.Fix3D, models.FixNone)
	}
	if got := models.FixStatus(5).String(); got != "FixStatus(5)" {
		t.Errorf("String() = %q", got)
	}
}
