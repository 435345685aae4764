// Package models contains the telemetry domain types shared by the store,
// loader and HTTP layers.
package models

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// HealthResponse is returned by /healthz and /readyz endpoints.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// FixStatus is the GNSS receiver lock quality.
type FixStatus int

const (
	FixNone FixStatus = 0
	Fix2D   FixStatus = 2
	Fix3D   FixStatus = 3

	// FixUnknown marks samples from exports without a fix status column.
	// It is stored as NULL.
	FixUnknown FixStatus = -1
)

// Valid reports whether f is one of the states the device emits, or unknown.
func (f FixStatus) Valid() bool {
	return f == FixNone || f == Fix2D || f == Fix3D || f == FixUnknown
}

func (f FixStatus) String() string {
	switch f {
	case FixUnknown:
		return "unknown"
	case FixNone:
		return "no fix"
	case Fix2D:
		return "2D"
	case Fix3D:
		return "3D"
	default:
		return fmt.Sprintf("FixStatus(%d)", int(f))
	}
}

// MaxITOW is one GPS week in milliseconds. ITOW values are in [0, MaxITOW).
const MaxITOW = 7 * 24 * 60 * 60 * 1000

// ErrInvalidSample is wrapped by every Sample.Validate failure.
var ErrInvalidSample = errors.New("invalid sample")

// Sample is one GPS/IMU reading, stored in lc_racebox and keyed by ITOW.
type Sample struct {
	ITOW     int64     `json:"itow"`      // GPS time of week, ms
	ImpStamp uuid.UUID `json:"imp_stamp"` // import batch that last wrote the row

	Year   int `json:"year"`
	Month  int `json:"month"`
	Day    int `json:"day"`
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
	Second int `json:"second"`

	TimeAccuracy int64 `json:"time_accuracy"` // ns
	Nanoseconds  int64 `json:"nanoseconds"`   // signed offset from Second

	FixStatus FixStatus `json:"fix_status"`
	NumSVs    int       `json:"numberof_svs"`

	Longitude          float64 `json:"longitude"`
	Latitude           float64 `json:"latitude"`
	WGSAltitude        float64 `json:"wgs_altitude"` // m
	MSLAltitude        float64 `json:"msl_altitude"` // m
	HorizontalAccuracy float64 `json:"horizontal_accuracy"`
	VerticalAccuracy   float64 `json:"vertical_accuracy"`
	Speed              float64 `json:"speed"`
	Heading            float64 `json:"heading"` // degrees
	SpeedAccuracy      int     `json:"speed_accuracy"`
	HeadingAccuracy    int     `json:"heading_accuracy"`
	PDOP               int     `json:"pdop"`

	GForceX float64 `json:"gforce_x"` // g
	GForceY float64 `json:"gforce_y"`
	GForceZ float64 `json:"gforce_z"`

	RotationRateX float64 `json:"rotation_rate_x"` // deg/s
	RotationRateY float64 `json:"rotation_rate_y"`
	RotationRateZ float64 `json:"rotation_rate_z"`
}

// decimal is a DECIMAL(precision, scale) column bound.
type decimal struct {
	name      string
	value     float64
	precision int
	scale     int
}

// fits reports whether v survives rounding to the column without overflow.
func (d decimal) fits() bool {
	if math.IsNaN(d.value) || math.IsInf(d.value, 0) {
		return false
	}
	unit := math.Pow10(d.scale)
	return math.Abs(math.Round(d.value*unit)/unit) < math.Pow10(d.precision-d.scale)
}

func (s Sample) decimals() []decimal {
	return []decimal{
		{"longitude", s.Longitude, 18, 7},
		{"latitude", s.Latitude, 18, 7},
		{"wgs_altitude", s.WGSAltitude, 10, 3},
		{"msl_altitude", s.MSLAltitude, 10, 3},
		{"horizontal_accuracy", s.HorizontalAccuracy, 10, 3},
		{"vertical_accuracy", s.VerticalAccuracy, 10, 3},
		{"speed", s.Speed, 10, 3},
		{"heading", s.Heading, 10, 5},
		{"gforce_x", s.GForceX, 10, 3},
		{"gforce_y", s.GForceY, 10, 3},
		{"gforce_z", s.GForceZ, 10, 3},
		{"rotation_rate_x", s.RotationRateX, 10, 2},
		{"rotation_rate_y", s.RotationRateY, 10, 2},
		{"rotation_rate_z", s.RotationRateZ, 10, 2},
	}
}

func inInt32(v int64) bool {
	return v >= math.MinInt32 && v <= math.MaxInt32
}

// Validate rejects samples that must not reach storage: every value must
// fit its lc_racebox column and the calendar fields must name a real date.
func (s Sample) Validate() error {
	switch {
	case s.ITOW < 0 || s.ITOW >= MaxITOW:
		return fmt.Errorf("%w: itow %d outside [0, %d)", ErrInvalidSample, s.ITOW, MaxITOW)
	case !s.FixStatus.Valid():
		return fmt.Errorf("%w: itow %d: fix_status %d", ErrInvalidSample, s.ITOW, int(s.FixStatus))
	case s.Year < 1 || s.Year > 9999:
		return fmt.Errorf("%w: itow %d: year %d", ErrInvalidSample, s.ITOW, s.Year)
	case s.Month < 1 || s.Month > 12:
		return fmt.Errorf("%w: itow %d: month %d", ErrInvalidSample, s.ITOW, s.Month)
	case s.Day < 1 || time.Date(s.Year, time.Month(s.Month), s.Day, 0, 0, 0, 0, time.UTC).Day() != s.Day:
		return fmt.Errorf("%w: itow %d: no day %d in %04d-%02d", ErrInvalidSample, s.ITOW, s.Day, s.Year, s.Month)
	case s.Hour < 0 || s.Hour > 23, s.Minute < 0 || s.Minute > 59, s.Second < 0 || s.Second > 60:
		return fmt.Errorf("%w: itow %d: time %02d:%02d:%02d", ErrInvalidSample, s.ITOW, s.Hour, s.Minute, s.Second)
	case s.Latitude < -90 || s.Latitude > 90:
		return fmt.Errorf("%w: itow %d: latitude %f", ErrInvalidSample, s.ITOW, s.Latitude)
	case s.Longitude < -180 || s.Longitude > 180:
		return fmt.Errorf("%w: itow %d: longitude %f", ErrInvalidSample, s.ITOW, s.Longitude)
	}

	for name, v := range map[string]int64{
		"time_accuracy":    s.TimeAccuracy,
		"nanoseconds":      s.Nanoseconds,
		"numberof_svs":     int64(s.NumSVs),
		"speed_accuracy":   int64(s.SpeedAccuracy),
		"heading_accuracy": int64(s.HeadingAccuracy),
		"pdop":             int64(s.PDOP),
	} {
		if !inInt32(v) {
			return fmt.Errorf("%w: itow %d: %s %d out of INT range", ErrInvalidSample, s.ITOW, name, v)
		}
	}
	for _, d := range s.decimals() {
		if !d.fits() {
			return fmt.Errorf("%w: itow %d: %s %v does not fit DECIMAL(%d,%d)",
				ErrInvalidSample, s.ITOW, d.name, d.value, d.precision, d.scale)
		}
	}
	return nil
}

// HasFix reports whether the receiver had a position lock. Without a
// recorded fix status, a non-zero position counts as a lock.
func (s Sample) HasFix() bool {
	if s.FixStatus == FixUnknown {
		return s.Latitude != 0 || s.Longitude != 0
	}
	return s.FixStatus != FixNone
}

// Time returns the UTC instant of the sample.
func (s Sample) Time() time.Time {
	return time.Date(s.Year, time.Month(s.Month), s.Day, s.Hour, s.Minute, s.Second, 0, time.UTC).
		Add(time.Duration(s.Nanoseconds))
}

// SessionName builds the default batch file name from the first and last
// samples of an import: YYYYMMDDhhmmss_YYYYMMDDhhmmss.
func SessionName(first, last Sample) string {
	return calendarStamp(first) + "_" + calendarStamp(last)
}

func calendarStamp(s Sample) string {
	return fmt.Sprintf("%04d%02d%02d%02d%02d%02d", s.Year, s.Month, s.Day, s.Hour, s.Minute, s.Second)
}

// Batch is one import run, stored in imp_racebox.
type Batch struct {
	ID          int64     `json:"id"`
	ImpStamp    uuid.UUID `json:"imp_stamp"`
	FileName    string    `json:"file_name"`
	DurationMS  int64     `json:"duration_ms"`
	InsertTime  time.Time `json:"insert_time"`
	SampleCount int64     `json:"sample_count"`
}

// Duration returns the recorded import duration.
func (b Batch) Duration() time.Duration {
	return time.Duration(b.DurationMS) * time.Millisecond
}

// BatchCount is the number of samples currently carrying an imp_stamp.
// HasBatch is false for orphaned samples whose batch row is gone.
type BatchCount struct {
	ImpStamp uuid.UUID `json:"imp_stamp"`
	Samples  int64     `json:"samples"`
	HasBatch bool      `json:"has_batch"`
}
