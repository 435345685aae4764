// Package api serves stored RaceBox sessions over HTTP: batch listings,
// sample queries, track summaries, CSV export, purge and upload.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/redgreat/racewong/internal/loader"
	"github.com/redgreat/racewong/internal/models"
	"github.com/redgreat/racewong/internal/racecsv"
	"github.com/redgreat/racewong/internal/store"
	"github.com/redgreat/racewong/internal/track"
)

// Reader is the read and purge side of the store.
type Reader interface {
	ListBatches(ctx context.Context, limit int) ([]models.Batch, error)
	Batch(ctx context.Context, stamp uuid.UUID) (models.Batch, error)
	SamplesByBatch(ctx context.Context, stamp uuid.UUID) ([]models.Sample, error)
	TrackByBatch(ctx context.Context, stamp uuid.UUID) ([]models.Sample, error)
	SamplesByDate(ctx context.Context, f store.DateFilter) ([]models.Sample, error)
	SampleByITOW(ctx context.Context, itow int64) (models.Sample, error)
	CountsPerBatch(ctx context.Context) ([]models.BatchCount, error)
	Purge(ctx context.Context, stamp uuid.UUID) (samples, batches int64, err error)
}

// Handler exposes the RaceBox HTTP endpoints.
type Handler struct {
	store     Reader
	importer  *loader.Loader
	forced    *loader.Loader
	maxUpload int64
}

// NewHandler creates a Handler. Uploads larger than maxUpload bytes are
// rejected; maxUpload <= 0 disables the limit.
func NewHandler(store Reader, imp *loader.Loader, maxUpload int64) *Handler {
	return &Handler{
		store:     store,
		importer:  imp,
		forced:    imp.Force(),
		maxUpload: maxUpload,
	}
}

// Routes registers the API endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/batches", h.ListBatches)
		r.Get("/batches/{stamp}", h.GetBatch)
		r.Delete("/batches/{stamp}", h.PurgeBatch)
		r.Get("/batches/{stamp}/samples", h.BatchSamples)
		r.Get("/batches/{stamp}/track", h.BatchTrack)
		r.Get("/batches/{stamp}/export", h.ExportBatch)
		r.Get("/counts", h.Counts)
		r.Get("/samples", h.SamplesByDate)
		r.Get("/samples/{itow}", h.GetSample)
		r.Post("/imports", h.Import)
	})
}

// ---------------------------------------------------------------------------
// Response types
// ---------------------------------------------------------------------------

// BatchesResponse is the response for GET /api/v1/batches.
type BatchesResponse struct {
	Batches []models.Batch `json:"batches"`
}

// SamplesResponse lists samples, ordered by itow or by calendar fields.
type SamplesResponse struct {
	ImpStamp *uuid.UUID      `json:"imp_stamp,omitempty"`
	Count    int             `json:"count" example:"1200"`
	Samples  []models.Sample `json:"samples"`
}

// TrackResponse is the response for GET /api/v1/batches/{stamp}/track.
type TrackResponse struct {
	ImpStamp uuid.UUID     `json:"imp_stamp"`
	Summary  track.Summary `json:"summary"`
	GeoJSON  track.Feature `json:"geojson"`
}

// CountsResponse is the response for GET /api/v1/counts.
type CountsResponse struct {
	Counts []models.BatchCount `json:"counts"`
}

// PurgeResponse is the response for DELETE /api/v1/batches/{stamp}.
type PurgeResponse struct {
	ImpStamp       uuid.UUID `json:"imp_stamp"`
	SamplesDeleted int64     `json:"samples_deleted" example:"1200"`
	BatchesDeleted int64     `json:"batches_deleted" example:"1"`
}

type errorResponse struct {
	Error string `json:"error" example:"invalid imp_stamp"`
}

// ---------------------------------------------------------------------------
// Batches
// ---------------------------------------------------------------------------

// ListBatches godoc
//
//	@Summary		List import batches
//	@Description	Returns import batches most recent first with their sample counts.
//	@Tags			batches
//	@Produce		json
//	@Param			limit	query		int	false	"Maximum number of batches (0 lists all)"	example(20)
//	@Success		200		{object}	BatchesResponse
//	@Failure		400		{object}	errorResponse
//	@Failure		500		{object}	errorResponse
//	@Router			/api/v1/batches [get]
func (h *Handler) ListBatches(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0, 0, 1_000_000)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}

	batches, err := h.store.ListBatches(r.Context(), limit)
	if err != nil {
		slog.Error("list batches", "error", err)
		writeErr(w, http.StatusInternalServerError, "failed to list batches")
		return
	}
	if batches == nil {
		batches = []models.Batch{}
	}
	writeJSON(w, http.StatusOK, BatchesResponse{Batches: batches})
}

// GetBatch godoc
//
//	@Summary		Get one import batch
//	@Tags			batches
//	@Produce		json
//	@Param			stamp	path		string	true	"imp_stamp"	example(6f1c3a52-d2f1-11ef-9cd2-0242ac120002)
//	@Success		200		{object}	models.Batch
//	@Failure		400		{object}	errorResponse
//	@Failure		404		{object}	errorResponse
//	@Failure		500		{object}	errorResponse
//	@Router			/api/v1/batches/{stamp} [get]
func (h *Handler) GetBatch(w http.ResponseWriter, r *http.Request) {
	stamp, ok := stampParam(w, r)
	if !ok {
		return
	}

	b, err := h.store.Batch(r.Context(), stamp)
	if errors.Is(err, store.ErrNotFound) {
		writeErr(w, http.StatusNotFound, "batch not found")
		return
	}
	if err != nil {
		slog.Error("get batch", "imp_stamp", stamp, "error", err)
		writeErr(w, http.StatusInternalServerError, "failed to fetch batch")
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// PurgeBatch godoc
//
//	@Summary		Purge an import
//	@Description	Deletes every sample carrying the imp_stamp and then its batch row.
//	@Description	An unknown imp_stamp deletes nothing.
//	@Tags			batches
//	@Produce		json
//	@Param			stamp	path		string	true	"imp_stamp"
//	@Success		200		{object}	PurgeResponse
//	@Failure		400		{object}	errorResponse
//	@Failure		500		{object}	errorResponse
//	@Router			/api/v1/batches/{stamp} [delete]
func (h *Handler) PurgeBatch(w http.ResponseWriter, r *http.Request) {
	stamp, ok := stampParam(w, r)
	if !ok {
		return
	}

	samples, batches, err := h.store.Purge(r.Context(), stamp)
	if err != nil {
		slog.Error("purge batch", "imp_stamp", stamp, "error", err)
		writeErr(w, http.StatusInternalServerError, "failed to purge batch")
		return
	}
	slog.Info("batch purged", "imp_stamp", stamp, "samples", samples, "batches", batches)
	writeJSON(w, http.StatusOK, PurgeResponse{
		ImpStamp:       stamp,
		SamplesDeleted: samples,
		BatchesDeleted: batches,
	})
}

// BatchSamples godoc
//
//	@Summary		List samples of an import
//	@Description	Returns the samples carrying the imp_stamp ordered by itow.
//	@Tags			batches
//	@Produce		json
//	@Param			stamp	path		string	true	"imp_stamp"
//	@Success		200		{object}	SamplesResponse
//	@Failure		400		{object}	errorResponse
//	@Failure		500		{object}	errorResponse
//	@Router			/api/v1/batches/{stamp}/samples [get]
func (h *Handler) BatchSamples(w http.ResponseWriter, r *http.Request) {
	stamp, ok := stampParam(w, r)
	if !ok {
		return
	}

	samples, err := h.store.SamplesByBatch(r.Context(), stamp)
	if err != nil {
		slog.Error("batch samples", "imp_stamp", stamp, "error", err)
		writeErr(w, http.StatusInternalServerError, "failed to fetch samples")
		return
	}
	if samples == nil {
		samples = []models.Sample{}
	}
	writeJSON(w, http.StatusOK, SamplesResponse{ImpStamp: &stamp, Count: len(samples), Samples: samples})
}

// BatchTrack godoc
//
//	@Summary		Track of an import
//	@Description	Summarises the fixed positions of an import and renders them as a GeoJSON LineString.
//	@Tags			batches
//	@Produce		json
//	@Param			stamp	path		string	true	"imp_stamp"
//	@Success		200		{object}	TrackResponse
//	@Failure		400		{object}	errorResponse
//	@Failure		404		{object}	errorResponse
//	@Failure		500		{object}	errorResponse
//	@Router			/api/v1/batches/{stamp}/track [get]
func (h *Handler) BatchTrack(w http.ResponseWriter, r *http.Request) {
	stamp, ok := stampParam(w, r)
	if !ok {
		return
	}

	samples, err := h.store.TrackByBatch(r.Context(), stamp)
	if err != nil {
		slog.Error("batch track", "imp_stamp", stamp, "error", err)
		writeErr(w, http.StatusInternalServerError, "failed to fetch samples")
		return
	}
	if len(samples) == 0 {
		writeErr(w, http.StatusNotFound, "no samples for imp_stamp")
		return
	}
	writeJSON(w, http.StatusOK, TrackResponse{
		ImpStamp: stamp,
		Summary:  track.Summarize(samples),
		GeoJSON:  track.GeoJSON(samples),
	})
}

// ExportBatch godoc
//
//	@Summary		Export an import as CSV
//	@Tags			batches
//	@Produce		text/csv
//	@Param			stamp	path		string	true	"imp_stamp"
//	@Success		200		{string}	string	"CSV with one row per sample"
//	@Failure		400		{object}	errorResponse
//	@Failure		404		{object}	errorResponse
//	@Failure		500		{object}	errorResponse
//	@Router			/api/v1/batches/{stamp}/export [get]
func (h *Handler) ExportBatch(w http.ResponseWriter, r *http.Request) {
	stamp, ok := stampParam(w, r)
	if !ok {
		return
	}

	samples, err := h.store.SamplesByBatch(r.Context(), stamp)
	if err != nil {
		slog.Error("export batch", "imp_stamp", stamp, "error", err)
		writeErr(w, http.StatusInternalServerError, "failed to fetch samples")
		return
	}
	if len(samples) == 0 {
		writeErr(w, http.StatusNotFound, "no samples for imp_stamp")
		return
	}

	name := stamp.String() + ".csv"
	if b, err := h.store.Batch(r.Context(), stamp); err == nil && b.FileName != "" {
		name = b.FileName
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	if err := racecsv.WriteCSV(w, samples); err != nil {
		slog.Error("write export", "imp_stamp", stamp, "error", err)
	}
}

// Counts godoc
//
//	@Summary		Sample counts per import
//	@Description	Returns the number of samples per imp_stamp, including samples without a batch row and batches without samples.
//	@Tags			batches
//	@Produce		json
//	@Success		200	{object}	CountsResponse
//	@Failure		500	{object}	errorResponse
//	@Router			/api/v1/counts [get]
func (h *Handler) Counts(w http.ResponseWriter, r *http.Request) {
	counts, err := h.store.CountsPerBatch(r.Context())
	if err != nil {
		slog.Error("counts per batch", "error", err)
		writeErr(w, http.StatusInternalServerError, "failed to count samples")
		return
	}
	if counts == nil {
		counts = []models.BatchCount{}
	}
	writeJSON(w, http.StatusOK, CountsResponse{Counts: counts})
}

// ---------------------------------------------------------------------------
// Samples
// ---------------------------------------------------------------------------

// SamplesByDate godoc
//
//	@Summary		Query samples by calendar date
//	@Description	Filters on the UTC calendar fields. day may be repeated to select several days.
//	@Description	from and to bound the calendar date inclusively (YYYY-MM-DD).
//	@Tags			samples
//	@Produce		json
//	@Param			year	query		int		false	"Year"					example(2025)
//	@Param			month	query		int		false	"Month (1-12)"			example(1)
//	@Param			day		query		[]int	false	"Day (1-31), repeatable"	collectionFormat(multi)
//	@Param			from	query		string	false	"First date"			example(2025-01-15)
//	@Param			to		query		string	false	"Last date"				example(2025-01-17)
//	@Param			limit	query		int		false	"Maximum number of samples"
//	@Success		200		{object}	SamplesResponse
//	@Failure		400		{object}	errorResponse
//	@Failure		500		{object}	errorResponse
//	@Router			/api/v1/samples [get]
func (h *Handler) SamplesByDate(w http.ResponseWriter, r *http.Request) {
	f, err := parseDateFilter(r)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}

	samples, err := h.store.SamplesByDate(r.Context(), f)
	if err != nil {
		slog.Error("samples by date", "error", err)
		writeErr(w, http.StatusInternalServerError, "failed to fetch samples")
		return
	}
	if samples == nil {
		samples = []models.Sample{}
	}
	writeJSON(w, http.StatusOK, SamplesResponse{Count: len(samples), Samples: samples})
}

// GetSample godoc
//
//	@Summary		Get one sample
//	@Tags			samples
//	@Produce		json
//	@Param			itow	path		int	true	"GPS time of week (ms)"	example(290412000)
//	@Success		200		{object}	models.Sample
//	@Failure		400		{object}	errorResponse
//	@Failure		404		{object}	errorResponse
//	@Failure		500		{object}	errorResponse
//	@Router			/api/v1/samples/{itow} [get]
func (h *Handler) GetSample(w http.ResponseWriter, r *http.Request) {
	itow, err := strconv.ParseInt(chi.URLParam(r, "itow"), 10, 64)
	if err != nil || itow < 0 || itow >= models.MaxITOW {
		writeErr(w, http.StatusBadRequest, "invalid itow")
		return
	}

	s, err := h.store.SampleByITOW(r.Context(), itow)
	if errors.Is(err, store.ErrNotFound) {
		writeErr(w, http.StatusNotFound, "sample not found")
		return
	}
	if err != nil {
		slog.Error("get sample", "itow", itow, "error", err)
		writeErr(w, http.StatusInternalServerError, "failed to fetch sample")
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// ---------------------------------------------------------------------------
// Imports
// ---------------------------------------------------------------------------

// Import godoc
//
//	@Summary		Upload a session export
//	@Description	Imports a RaceBox CSV export. Samples upsert by itow; one batch row is recorded per import.
//	@Description	A file name that was already imported is skipped unless force is set.
//	@Tags			imports
//	@Accept			text/csv
//	@Produce		json
//	@Param			file_name	query		string	false	"Batch file name; derived from the first and last samples when empty"
//	@Param			force		query		bool	false	"Import even if the file name was already imported"
//	@Param			keep_no_fix	query		bool	false	"Store samples recorded without a position fix"
//	@Success		200			{object}	loader.Result	"Nothing written: empty or already imported"
//	@Success		201			{object}	loader.Result
//	@Failure		400			{object}	errorResponse
//	@Failure		413			{object}	errorResponse
//	@Failure		500			{object}	errorResponse
//	@Failure		503			{object}	errorResponse
//	@Router			/api/v1/imports [post]
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	force, err := queryBool(r, "force")
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid force")
		return
	}
	keepNoFix, err := queryBool(r, "keep_no_fix")
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid keep_no_fix")
		return
	}

	body := r.Body
	if h.maxUpload > 0 {
		body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	}

	imp := h.importer
	if force {
		imp = h.forced
	}
	if keepNoFix {
		imp = imp.KeepNoFix()
	}
	res, err := imp.ImportCSV(r.Context(), q.Get("file_name"), body)

	var tooBig *http.MaxBytesError
	switch {
	case errors.As(err, &tooBig):
		writeErr(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("upload exceeds %d bytes", tooBig.Limit))
	case errors.Is(err, loader.ErrBadExport):
		writeErr(w, http.StatusBadRequest, err.Error())
	case loader.IsRetryable(err):
		slog.Error("import write failed", "file_name", res.FileName, "error", err)
		w.Header().Set("Retry-After", "5")
		writeErr(w, http.StatusServiceUnavailable, "storage unavailable, retry the upload")
	case err != nil:
		slog.Error("import failed", "file_name", res.FileName, "error", err)
		writeErr(w, http.StatusInternalServerError, "import failed")
	case res.Empty || res.AlreadyImported:
		writeJSON(w, http.StatusOK, res)
	default:
		writeJSON(w, http.StatusCreated, res)
	}
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func stampParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	stamp, err := uuid.Parse(chi.URLParam(r, "stamp"))
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid imp_stamp")
		return uuid.Nil, false
	}
	return stamp, true
}

// queryInt reads an optional integer query param bounded by [lo, hi].
func queryInt(r *http.Request, name string, def, lo, hi int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < lo || n > hi {
		return 0, fmt.Errorf("invalid %s: %q", name, v)
	}
	return n, nil
}

// queryBool reads an optional boolean query param, false when absent.
func queryBool(r *http.Request, name string) (bool, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return false, nil
	}
	return strconv.ParseBool(v)
}

func parseDateFilter(r *http.Request) (store.DateFilter, error) {
	var f store.DateFilter
	q := r.URL.Query()

	if q.Has("year") {
		y, err := queryInt(r, "year", 0, 1, 9999)
		if err != nil {
			return f, err
		}
		f.Year = &y
	}
	if q.Has("month") {
		m, err := queryInt(r, "month", 0, 1, 12)
		if err != nil {
			return f, err
		}
		f.Month = &m
	}
	for _, v := range q["day"] {
		d, err := strconv.Atoi(v)
		if err != nil || d < 1 || d > 31 {
			return f, fmt.Errorf("invalid day: %q", v)
		}
		f.Days = append(f.Days, d)
	}

	var err error
	if f.From, err = queryDate(r, "from"); err != nil {
		return f, err
	}
	if f.To, err = queryDate(r, "to"); err != nil {
		return f, err
	}
	if !f.From.IsZero() && !f.To.IsZero() && f.To.Before(f.From) {
		return f, fmt.Errorf("from must be on or before to")
	}

	if f.Limit, err = queryInt(r, "limit", 0, 0, 10_000_000); err != nil {
		return f, err
	}
	return f, nil
}

func queryDate(r *http.Request, name string) (time.Time, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.DateOnly, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s: %w", name, err)
	}
	return t, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
