package racecsv

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/redgreat/racewong/internal/models"
)

// column binds one CSV column to a Sample field.
type column struct {
	name string
	set  func(*models.Sample, string) error
	get  func(models.Sample) string
}

// columns is the export column order, named after the lc_racebox columns.
// Device display headers ("iTOW", "G-Force X", "Number of SVs") normalize to
// the same keys, see normalize.
var columns = []column{
	intCol("itow", func(s *models.Sample) *int64 { return &s.ITOW }),
	smallCol("year", func(s *models.Sample) *int { return &s.Year }),
	smallCol("month", func(s *models.Sample) *int { return &s.Month }),
	smallCol("day", func(s *models.Sample) *int { return &s.Day }),
	smallCol("hour", func(s *models.Sample) *int { return &s.Hour }),
	smallCol("minute", func(s *models.Sample) *int { return &s.Minute }),
	smallCol("second", func(s *models.Sample) *int { return &s.Second }),
	intCol("time_accuracy", func(s *models.Sample) *int64 { return &s.TimeAccuracy }),
	intCol("nanoseconds", func(s *models.Sample) *int64 { return &s.Nanoseconds }),
	{
		name: "fix_status",
		set: func(s *models.Sample, v string) error {
			n, err := strconv.Atoi(v)
			s.FixStatus = models.FixStatus(n)
			return err
		},
		get: func(s models.Sample) string {
			if s.FixStatus == models.FixUnknown {
				return ""
			}
			return strconv.Itoa(int(s.FixStatus))
		},
	},
	smallCol("numberof_svs", func(s *models.Sample) *int { return &s.NumSVs }),
	floatCol("longitude", func(s *models.Sample) *float64 { return &s.Longitude }),
	floatCol("latitude", func(s *models.Sample) *float64 { return &s.Latitude }),
	floatCol("wgs_altitude", func(s *models.Sample) *float64 { return &s.WGSAltitude }),
	floatCol("msl_altitude", func(s *models.Sample) *float64 { return &s.MSLAltitude }),
	floatCol("horizontal_accuracy", func(s *models.Sample) *float64 { return &s.HorizontalAccuracy }),
	floatCol("vertical_accuracy", func(s *models.Sample) *float64 { return &s.VerticalAccuracy }),
	floatCol("speed", func(s *models.Sample) *float64 { return &s.Speed }),
	floatCol("heading", func(s *models.Sample) *float64 { return &s.Heading }),
	smallCol("speed_accuracy", func(s *models.Sample) *int { return &s.SpeedAccuracy }),
	smallCol("heading_accuracy", func(s *models.Sample) *int { return &s.HeadingAccuracy }),
	smallCol("pdop", func(s *models.Sample) *int { return &s.PDOP }),
	floatCol("gforce_x", func(s *models.Sample) *float64 { return &s.GForceX }),
	floatCol("gforce_y", func(s *models.Sample) *float64 { return &s.GForceY }),
	floatCol("gforce_z", func(s *models.Sample) *float64 { return &s.GForceZ }),
	floatCol("rotation_rate_x", func(s *models.Sample) *float64 { return &s.RotationRateX }),
	floatCol("rotation_rate_y", func(s *models.Sample) *float64 { return &s.RotationRateY }),
	floatCol("rotation_rate_z", func(s *models.Sample) *float64 { return &s.RotationRateZ }),
}

var columnsByKey = func() map[string]*column {
	m := make(map[string]*column, len(columns))
	for i := range columns {
		m[normalize(columns[i].name)] = &columns[i]
	}
	return m
}()

// Header returns the column names written by WriteCSV.
func Header() []string {
	h := make([]string, len(columns))
	for i, c := range columns {
		h[i] = c.name
	}
	return h
}

// normalize folds a header cell to a lookup key: lower case with spaces,
// dashes and underscores removed.
func normalize(name string) string {
	name = strings.TrimPrefix(name, "\ufeff")
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch r {
		case ' ', '-', '_':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func intCol(name string, field func(*models.Sample) *int64) column {
	return column{
		name: name,
		set: func(s *models.Sample, v string) error {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return err
			}
			*field(s) = n
			return nil
		},
		get: func(s models.Sample) string { return strconv.FormatInt(*field(&s), 10) },
	}
}

func smallCol(name string, field func(*models.Sample) *int) column {
	return column{
		name: name,
		set: func(s *models.Sample, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return err
			}
			*field(s) = n
			return nil
		},
		get: func(s models.Sample) string { return strconv.Itoa(*field(&s)) },
	}
}

func floatCol(name string, field func(*models.Sample) *float64) column {
	return column{
		name: name,
		set: func(s *models.Sample, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return err
			}
			*field(s) = f
			return nil
		},
		get: func(s models.Sample) string { return strconv.FormatFloat(*field(&s), 'f', -1, 64) },
	}
}

func (c *column) parse(s *models.Sample, raw string) error {
	v := strings.TrimSpace(raw)
	if v == "" {
		return nil
	}
	if err := c.set(s, v); err != nil {
		return fmt.Errorf("column %s: %w", c.name, err)
	}
	return nil
}
