// Package racecsv reads and writes RaceBox session exports: one CSV row per
// sample with a header row naming the columns.
package racecsv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/redgreat/racewong/internal/models"
)

// ErrNoITOW is returned by NewReader when the header has no itow column.
var ErrNoITOW = errors.New("racecsv: header has no itow column")

// RecordError is a malformed data row. It only affects that row; the
// Reader can keep going.
type RecordError struct {
	Line int
	Err  error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("csv line %d: %v", e.Line, e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }

// Reader decodes samples from a session export.
type Reader struct {
	r      *csv.Reader
	cols   []*column // by field index, nil for ignored columns
	itowAt int
}

// NewReader reads the header row and maps columns by name. Unknown columns
// (including imp_stamp) are ignored.
func NewReader(r io.Reader) (*Reader, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read csv header: empty input")
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	rd := &Reader{r: cr, cols: make([]*column, len(header)), itowAt: -1}
	for i, name := range header {
		c, ok := columnsByKey[normalize(name)]
		if !ok {
			continue
		}
		rd.cols[i] = c
		if c.name == "itow" {
			rd.itowAt = i
		}
	}
	if rd.itowAt < 0 {
		return nil, ErrNoITOW
	}
	return rd, nil
}

// Next returns the next sample. It returns io.EOF at the end of input and a
// *RecordError for a row that cannot be decoded.
func (r *Reader) Next() (models.Sample, error) {
	record, err := r.r.Read()
	if err != nil {
		var pe *csv.ParseError
		if errors.As(err, &pe) {
			return models.Sample{}, &RecordError{Line: pe.Line, Err: pe.Err}
		}
		return models.Sample{}, err
	}
	line, _ := r.r.FieldPos(0)

	if r.itowAt >= len(record) || strings.TrimSpace(record[r.itowAt]) == "" {
		return models.Sample{}, &RecordError{Line: line, Err: errors.New("itow missing")}
	}

	s := models.Sample{FixStatus: models.FixUnknown}
	for i, c := range r.cols {
		if c == nil || i >= len(record) {
			continue
		}
		if err := c.parse(&s, record[i]); err != nil {
			return models.Sample{}, &RecordError{Line: line, Err: err}
		}
	}
	return s, nil
}

// ReadAll decodes every row of r. Malformed rows are returned separately and
// do not stop the read; only header or I/O failures produce an error.
func ReadAll(r io.Reader) ([]models.Sample, []*RecordError, error) {
	rd, err := NewReader(r)
	if err != nil {
		return nil, nil, err
	}

	var (
		samples []models.Sample
		bad     []*RecordError
	)
	for {
		s, err := rd.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		var re *RecordError
		if errors.As(err, &re) {
			bad = append(bad, re)
			continue
		}
		if err != nil {
			return nil, nil, err
		}
		samples = append(samples, s)
	}
	return samples, bad, nil
}

// WriteCSV writes samples with the lc_racebox column names as header.
func WriteCSV(w io.Writer, samples []models.Sample) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Header()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	record := make([]string, len(columns))
	for _, s := range samples {
		for i, c := range columns {
			record[i] = c.get(s)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write itow %d: %w", s.ITOW, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("csv flush: %w", err)
	}
	return nil
}
