package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/redgreat/racewong/internal/models"
)

// ErrNotFound is returned by single-row lookups that match nothing.
var ErrNotFound = errors.New("not found")

// maxFileName is the width of imp_racebox.file_name.
const maxFileName = 100

// Store reads and writes lc_racebox and imp_racebox. It is safe for
// concurrent use; PostgreSQL resolves concurrent upserts of the same itow
// as last write wins.
type Store struct {
	db *sql.DB
}

// New creates a Store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// ---------------------------------------------------------------------------
// Write side
// ---------------------------------------------------------------------------

// UpsertSamples writes samples in a single transaction, tagging each with
// stamp. An existing itow is overwritten column by column. Returns how many
// rows were new and how many were overwritten.
func (s *Store) UpsertSamples(ctx context.Context, stamp uuid.UUID, samples []models.Sample) (inserted, updated int, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, queryUpsertSample)
	if err != nil {
		return 0, 0, fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, smp := range samples {
		var isNew bool
		err := stmt.QueryRowContext(ctx,
			smp.ITOW, stamp,
			smp.Year, smp.Month, smp.Day, smp.Hour, smp.Minute, smp.Second,
			smp.TimeAccuracy, smp.Nanoseconds, fixArg(smp.FixStatus), smp.NumSVs,
			smp.Longitude, smp.Latitude, smp.WGSAltitude, smp.MSLAltitude,
			smp.HorizontalAccuracy, smp.VerticalAccuracy, smp.Speed, smp.Heading,
			smp.SpeedAccuracy, smp.HeadingAccuracy, smp.PDOP,
			smp.GForceX, smp.GForceY, smp.GForceZ,
			smp.RotationRateX, smp.RotationRateY, smp.RotationRateZ,
		).Scan(&isNew)
		if err != nil {
			return 0, 0, fmt.Errorf("upsert itow %d: %w", smp.ITOW, err)
		}
		if isNew {
			inserted++
		} else {
			updated++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("commit: %w", err)
	}
	return inserted, updated, nil
}

// RecordBatch inserts one imp_racebox row. A zero insertTime lets the
// database default it to now(). File names longer than the column are cut.
func (s *Store) RecordBatch(ctx context.Context, stamp uuid.UUID, fileName string, duration time.Duration, insertTime time.Time) (models.Batch, error) {
	fileName = truncateRunes(fileName, maxFileName)
	b := models.Batch{
		ImpStamp:   stamp,
		FileName:   fileName,
		DurationMS: duration.Milliseconds(),
	}

	var at sql.NullTime
	if !insertTime.IsZero() {
		at = sql.NullTime{Time: insertTime, Valid: true}
	}

	err := s.db.QueryRowContext(ctx, queryInsertBatch, stamp, fileName, b.DurationMS, at).
		Scan(&b.ID, &b.InsertTime)
	if err != nil {
		return models.Batch{}, fmt.Errorf("insert batch %s: %w", stamp, err)
	}
	return b, nil
}

// BatchExists reports whether a batch with fileName was already recorded.
func (s *Store) BatchExists(ctx context.Context, fileName string) (bool, error) {
	var exists bool
	if err := s.db.QueryRowContext(ctx, queryBatchExists, truncateRunes(fileName, maxFileName)).Scan(&exists); err != nil {
		return false, fmt.Errorf("batch exists %q: %w", fileName, err)
	}
	return exists, nil
}

// ---------------------------------------------------------------------------
// Read side
// ---------------------------------------------------------------------------

// SamplesByBatch returns every sample carrying stamp, ordered by itow.
// An unknown stamp yields an empty slice.
func (s *Store) SamplesByBatch(ctx context.Context, stamp uuid.UUID) ([]models.Sample, error) {
	rows, err := s.db.QueryContext(ctx, querySamplesByBatch, stamp)
	if err != nil {
		return nil, fmt.Errorf("samples by batch: %w", err)
	}
	return collectSamples(rows)
}

// TrackByBatch returns the samples of one batch in recording order.
func (s *Store) TrackByBatch(ctx context.Context, stamp uuid.UUID) ([]models.Sample, error) {
	rows, err := s.db.QueryContext(ctx, queryTrackByBatch, stamp)
	if err != nil {
		return nil, fmt.Errorf("track by batch: %w", err)
	}
	return collectSamples(rows)
}

// SampleByITOW returns the sample stored under itow.
func (s *Store) SampleByITOW(ctx context.Context, itow int64) (models.Sample, error) {
	smp, err := scanSample(s.db.QueryRowContext(ctx, querySampleByITOW, itow))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Sample{}, ErrNotFound
	}
	if err != nil {
		return models.Sample{}, fmt.Errorf("sample %d: %w", itow, err)
	}
	return smp, nil
}

// DateFilter selects samples by their UTC calendar fields. Nil or empty
// fields do not constrain the query. From and To bound the calendar date
// inclusively; only their year, month and day are used.
type DateFilter struct {
	Year  *int
	Month *int
	Days  []int
	From  time.Time
	To    time.Time
	Limit int
}

// SamplesByDate returns the samples matching f in calendar order.
func (s *Store) SamplesByDate(ctx context.Context, f DateFilter) ([]models.Sample, error) {
	query, args := f.build()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("samples by date: %w", err)
	}
	return collectSamples(rows)
}

func (f DateFilter) build() (string, []any) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Year != nil {
		conds = append(conds, "year = "+arg(*f.Year))
	}
	if f.Month != nil {
		conds = append(conds, "month = "+arg(*f.Month))
	}
	switch len(f.Days) {
	case 0:
	case 1:
		conds = append(conds, "day = "+arg(f.Days[0]))
	default:
		ph := make([]string, len(f.Days))
		for i, d := range f.Days {
			ph[i] = arg(d)
		}
		conds = append(conds, "day IN ("+strings.Join(ph, ", ")+")")
	}
	if !f.From.IsZero() {
		conds = append(conds, "make_date(year, month, day) >= "+arg(f.From.Format(time.DateOnly))+"::date")
	}
	if !f.To.IsZero() {
		conds = append(conds, "make_date(year, month, day) <= "+arg(f.To.Format(time.DateOnly))+"::date")
	}

	var b strings.Builder
	b.WriteString(selectSample)
	if len(conds) > 0 {
		b.WriteString("\nWHERE ")
		b.WriteString(strings.Join(conds, "\n  AND "))
	}
	b.WriteString(calendarOrder)
	if f.Limit > 0 {
		b.WriteString("\nLIMIT " + arg(f.Limit))
	}
	return b.String(), args
}

// CountSamples returns how many samples carry stamp.
func (s *Store) CountSamples(ctx context.Context, stamp uuid.UUID) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, queryCountSamples, stamp).Scan(&n); err != nil {
		return 0, fmt.Errorf("count samples %s: %w", stamp, err)
	}
	return n, nil
}

// CountsPerBatch returns the sample count of every imp_stamp known to
// either table.
func (s *Store) CountsPerBatch(ctx context.Context) ([]models.BatchCount, error) {
	rows, err := s.db.QueryContext(ctx, queryCountsPerBatch)
	if err != nil {
		return nil, fmt.Errorf("counts per batch: %w", err)
	}
	defer rows.Close()

	var counts []models.BatchCount
	for rows.Next() {
		var c models.BatchCount
		if err := rows.Scan(&c.ImpStamp, &c.Samples, &c.HasBatch); err != nil {
			return nil, fmt.Errorf("scan batch count: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// ListBatches returns batches most recent first. limit <= 0 lists all.
func (s *Store) ListBatches(ctx context.Context, limit int) ([]models.Batch, error) {
	var lim sql.NullInt64
	if limit > 0 {
		lim = sql.NullInt64{Int64: int64(limit), Valid: true}
	}

	rows, err := s.db.QueryContext(ctx, queryListBatches, lim)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	defer rows.Close()

	var batches []models.Batch
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		batches = append(batches, b)
	}
	return batches, rows.Err()
}

// Batch returns the batch row for stamp.
func (s *Store) Batch(ctx context.Context, stamp uuid.UUID) (models.Batch, error) {
	b, err := scanBatch(s.db.QueryRowContext(ctx, queryBatchByStamp, stamp))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Batch{}, ErrNotFound
	}
	if err != nil {
		return models.Batch{}, fmt.Errorf("batch %s: %w", stamp, err)
	}
	return b, nil
}

// ---------------------------------------------------------------------------
// Deletes
// ---------------------------------------------------------------------------

// Purge deletes all samples carrying stamp and then its batch row, in one
// transaction. An unknown stamp deletes nothing and is not an error.
func (s *Store) Purge(ctx context.Context, stamp uuid.UUID) (samples, batches int64, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if samples, err = execCount(ctx, tx, queryDeleteSamples, stamp); err != nil {
		return 0, 0, fmt.Errorf("delete samples %s: %w", stamp, err)
	}
	if batches, err = execCount(ctx, tx, queryDeleteBatch, stamp); err != nil {
		return 0, 0, fmt.Errorf("delete batch %s: %w", stamp, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("commit: %w", err)
	}
	return samples, batches, nil
}

// DeleteSamples removes the samples carrying stamp and leaves the batch row.
func (s *Store) DeleteSamples(ctx context.Context, stamp uuid.UUID) (int64, error) {
	n, err := execCount(ctx, s.db, queryDeleteSamples, stamp)
	if err != nil {
		return 0, fmt.Errorf("delete samples %s: %w", stamp, err)
	}
	return n, nil
}

// DeleteBatch removes the batch row for stamp and leaves its samples.
func (s *Store) DeleteBatch(ctx context.Context, stamp uuid.UUID) (int64, error) {
	n, err := execCount(ctx, s.db, queryDeleteBatch, stamp)
	if err != nil {
		return 0, fmt.Errorf("delete batch %s: %w", stamp, err)
	}
	return n, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func execCount(ctx context.Context, e execer, query string, args ...any) (int64, error) {
	res, err := e.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSample(row scanner) (models.Sample, error) {
	var (
		s     models.Sample
		stamp uuid.NullUUID
		fix   sql.NullInt32
	)
	err := row.Scan(
		&s.ITOW, &stamp,
		&s.Year, &s.Month, &s.Day, &s.Hour, &s.Minute, &s.Second,
		&s.TimeAccuracy, &s.Nanoseconds, &fix, &s.NumSVs,
		&s.Longitude, &s.Latitude, &s.WGSAltitude, &s.MSLAltitude,
		&s.HorizontalAccuracy, &s.VerticalAccuracy, &s.Speed, &s.Heading,
		&s.SpeedAccuracy, &s.HeadingAccuracy, &s.PDOP,
		&s.GForceX, &s.GForceY, &s.GForceZ,
		&s.RotationRateX, &s.RotationRateY, &s.RotationRateZ,
	)
	if err != nil {
		return models.Sample{}, err
	}
	s.ImpStamp = stamp.UUID
	s.FixStatus = models.FixUnknown
	if fix.Valid {
		s.FixStatus = models.FixStatus(fix.Int32)
	}
	return s, nil
}

func fixArg(f models.FixStatus) any {
	if f == models.FixUnknown {
		return nil
	}
	return int(f)
}

func collectSamples(rows *sql.Rows) ([]models.Sample, error) {
	defer rows.Close()

	var samples []models.Sample
	for rows.Next() {
		smp, err := scanSample(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sample: %w", err)
		}
		samples = append(samples, smp)
	}
	return samples, rows.Err()
}

func scanBatch(row scanner) (models.Batch, error) {
	var (
		b     models.Batch
		stamp uuid.NullUUID
		at    sql.NullTime
	)
	if err := row.Scan(&b.ID, &stamp, &b.FileName, &b.DurationMS, &at, &b.SampleCount); err != nil {
		return models.Batch{}, err
	}
	b.ImpStamp = stamp.UUID
	b.InsertTime = at.Time
	return b, nil
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
