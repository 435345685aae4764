// Package loader imports RaceBox session exports: it validates samples,
// upserts them by itow and records one import batch per run.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/redgreat/racewong/internal/config"
	"github.com/redgreat/racewong/internal/models"
	"github.com/redgreat/racewong/internal/racecsv"
)

// Writer is the storage the loader writes to. *store.Store implements it.
type Writer interface {
	UpsertSamples(ctx context.Context, stamp uuid.UUID, samples []models.Sample) (inserted, updated int, err error)
	RecordBatch(ctx context.Context, stamp uuid.UUID, fileName string, duration time.Duration, insertTime time.Time) (models.Batch, error)
	BatchExists(ctx context.Context, fileName string) (bool, error)
}

// Options tunes an import run.
type Options struct {
	ChunkSize    int           // samples per upsert transaction
	Workers      int           // concurrent chunk writers
	MaxRetries   int           // attempts per chunk
	RetryBackoff time.Duration // first retry delay, doubled per attempt
	KeepNoFix    bool          // store samples without a GNSS fix
	SkipExisting bool          // skip files whose name is already recorded
}

// OptionsFrom maps the environment configuration onto Options.
func OptionsFrom(cfg config.Import) Options {
	return Options{
		ChunkSize:    cfg.ChunkSize,
		Workers:      cfg.Workers,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
		KeepNoFix:    cfg.KeepNoFix,
		SkipExisting: cfg.SkipExisting,
	}
}

func (o Options) withDefaults() Options {
	if o.ChunkSize <= 0 {
		o.ChunkSize = 1000
	}
	if o.Workers <= 0 {
		o.Workers = 1
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = 1
	}
	if o.RetryBackoff <= 0 {
		o.RetryBackoff = 50 * time.Millisecond
	}
	return o
}

// Result summarises one import run.
type Result struct {
	ImpStamp        uuid.UUID     `json:"imp_stamp"`
	FileName        string        `json:"file_name"`
	Received        int           `json:"received"`
	Malformed       int           `json:"malformed"`
	Invalid         int           `json:"invalid"`
	NoFix           int           `json:"no_fix"`
	Inserted        int           `json:"inserted"`
	Updated         int           `json:"updated"`
	DurationMS      int64         `json:"duration_ms"`
	AlreadyImported bool          `json:"already_imported"`
	Empty           bool          `json:"empty"`
	Batch           *models.Batch `json:"batch,omitempty"`
}

// Loader runs imports against a Writer.
type Loader struct {
	w        Writer
	opts     Options
	newStamp func() (uuid.UUID, error)
	now      func() time.Time
}

// New creates a Loader.
func New(w Writer, opts Options) *Loader {
	return &Loader{
		w:        w,
		opts:     opts.withDefaults(),
		newStamp: uuid.NewUUID,
		now:      time.Now,
	}
}

// Force returns a copy of l that imports files even when a batch with the
// same file name already exists.
func (l *Loader) Force() *Loader {
	cp := *l
	cp.opts.SkipExisting = false
	return &cp
}

// KeepNoFix returns a copy of l that stores samples without a position fix.
func (l *Loader) KeepNoFix() *Loader {
	cp := *l
	cp.opts.KeepNoFix = true
	return &cp
}

// ImportCSV decodes a session export and imports it. Malformed rows are
// logged and skipped.
func (l *Loader) ImportCSV(ctx context.Context, fileName string, r io.Reader) (Result, error) {
	rd, err := racecsv.NewReader(r)
	if err != nil {
		return Result{FileName: fileName}, fmt.Errorf("%w %q: %w", ErrBadExport, fileName, err)
	}

	var (
		samples   []models.Sample
		malformed int
	)
	for {
		s, err := rd.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		var re *racecsv.RecordError
		if errors.As(err, &re) {
			malformed++
			slog.Warn("skipping malformed row", "file_name", fileName, "line", re.Line, "error", re.Err)
			continue
		}
		if err != nil {
			return Result{FileName: fileName}, fmt.Errorf("%w %q: %w", ErrBadExport, fileName, err)
		}
		samples = append(samples, s)
	}

	res, err := l.Import(ctx, fileName, samples)
	res.Malformed = malformed
	return res, err
}

// Import validates samples, upserts them under a fresh import stamp and
// records the batch. An empty fileName is derived from the first and last
// samples. The batch row is written only after every sample is stored.
func (l *Loader) Import(ctx context.Context, fileName string, samples []models.Sample) (Result, error) {
	start := l.now()
	res := Result{FileName: fileName, Received: len(samples)}

	stamp, err := l.newStamp()
	if err != nil {
		return res, fmt.Errorf("new import stamp: %w", err)
	}
	res.ImpStamp = stamp

	keep := make([]models.Sample, 0, len(samples))
	for _, s := range samples {
		if err := s.Validate(); err != nil {
			res.Invalid++
			slog.Warn("skipping invalid sample", "file_name", fileName, "error", err)
			continue
		}
		if !s.HasFix() && !l.opts.KeepNoFix {
			res.NoFix++
			continue
		}
		s.ImpStamp = stamp
		keep = append(keep, s)
	}

	if len(keep) == 0 {
		res.Empty = true
		slog.Info("nothing to import",
			"file_name", fileName,
			"received", res.Received,
			"invalid", res.Invalid,
			"no_fix", res.NoFix,
		)
		return res, nil
	}

	if res.FileName == "" {
		res.FileName = models.SessionName(keep[0], keep[len(keep)-1])
	}

	if l.opts.SkipExisting {
		exists, err := l.w.BatchExists(ctx, res.FileName)
		if err != nil {
			return res, fmt.Errorf("check existing batch: %w", err)
		}
		if exists {
			res.AlreadyImported = true
			slog.Info("already imported, skipping", "file_name", res.FileName)
			return res, nil
		}
	}

	res.Inserted, res.Updated, err = l.writeChunks(ctx, stamp, keep)
	if err != nil {
		return res, err
	}

	elapsed := l.now().Sub(start)
	var batch models.Batch
	err = l.retry(ctx, "record batch", func(ctx context.Context) error {
		var err error
		batch, err = l.w.RecordBatch(ctx, stamp, res.FileName, elapsed, time.Time{})
		return err
	})
	if err != nil {
		return res, err
	}
	res.Batch = &batch
	res.DurationMS = elapsed.Milliseconds()

	slog.Info("import complete",
		"imp_stamp", stamp,
		"file_name", res.FileName,
		"inserted", res.Inserted,
		"updated", res.Updated,
		"invalid", res.Invalid,
		"no_fix", res.NoFix,
		"duration_ms", res.DurationMS,
	)
	return res, nil
}

type chunkResult struct {
	inserted int
	updated  int
	err      error
}

// writeChunks upserts samples in ChunkSize transactions spread over Workers
// goroutines. The first failure cancels the chunks not yet started.
func (l *Loader) writeChunks(ctx context.Context, stamp uuid.UUID, samples []models.Sample) (inserted, updated int, err error) {
	var chunks [][]models.Sample
	for i := 0; i < len(samples); i += l.opts.ChunkSize {
		chunks = append(chunks, samples[i:min(i+l.opts.ChunkSize, len(samples))])
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan []models.Sample)
	results := make(chan chunkResult, len(chunks))

	var wg sync.WaitGroup
	for range min(l.opts.Workers, len(chunks)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for c := range jobs {
				var r chunkResult
				r.err = l.retry(ctx, "upsert samples", func(ctx context.Context) error {
					var err error
					r.inserted, r.updated, err = l.w.UpsertSamples(ctx, stamp, c)
					return err
				})
				if r.err != nil {
					cancel()
				}
				results <- r
			}
		}()
	}

feed:
	for _, c := range chunks {
		select {
		case jobs <- c:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()
	close(results)

	var cancelled error
	for r := range results {
		switch {
		case r.err == nil:
			inserted += r.inserted
			updated += r.updated
		case errors.Is(r.err, context.Canceled) || errors.Is(r.err, context.DeadlineExceeded):
			cancelled = r.err
		case err == nil:
			err = r.err
		}
	}
	if err == nil {
		err = cancelled
	}
	if err == nil {
		err = ctx.Err()
	}
	return inserted, updated, err
}

// retry runs op up to MaxRetries times with exponential backoff. Context
// cancellation is returned as is; exhausted retries become a *WriteError.
func (l *Loader) retry(ctx context.Context, name string, op func(context.Context) error) error {
	backoff := l.opts.RetryBackoff

	var err error
	for attempt := range l.opts.MaxRetries {
		if err = op(ctx); err == nil {
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		slog.Warn("write retry", "op", name, "attempt", attempt+1, "error", err)

		if attempt < l.opts.MaxRetries-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}
	}
	return &WriteError{Op: name, Attempts: l.opts.MaxRetries, Err: err}
}
