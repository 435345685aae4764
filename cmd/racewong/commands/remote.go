package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/redgreat/racewong/internal/httpx"
	"github.com/redgreat/racewong/internal/loader"
	"github.com/redgreat/racewong/internal/models"
)

// remoteClient drives a racewong-api instance over HTTP.
type remoteClient struct {
	http   *httpx.Client
	base   string
	upload httpx.UploadOptions
}

type apiError struct {
	Error string `json:"error"`
}

func (c *remoteClient) ImportCSV(ctx context.Context, fileName string, r io.Reader) (loader.Result, error) {
	resp, err := c.http.PostCSV(ctx, c.base, fileName, c.upload, r)
	if err != nil {
		return loader.Result{FileName: fileName}, err
	}
	var res loader.Result
	if err := decode(resp, &res); err != nil {
		return loader.Result{FileName: fileName}, fmt.Errorf("upload %s: %w", fileName, err)
	}
	return res, nil
}

func (c *remoteClient) ListBatches(ctx context.Context, limit int) ([]models.Batch, error) {
	resp, err := c.http.Get(ctx, fmt.Sprintf("%s/api/v1/batches?limit=%d", c.base, limit))
	if err != nil {
		return nil, err
	}
	var out struct {
		Batches []models.Batch `json:"batches"`
	}
	if err := decode(resp, &out); err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	return out.Batches, nil
}

func (c *remoteClient) CountsPerBatch(ctx context.Context) ([]models.BatchCount, error) {
	resp, err := c.http.Get(ctx, c.base+"/api/v1/counts")
	if err != nil {
		return nil, err
	}
	var out struct {
		Counts []models.BatchCount `json:"counts"`
	}
	if err := decode(resp, &out); err != nil {
		return nil, fmt.Errorf("counts: %w", err)
	}
	return out.Counts, nil
}

func (c *remoteClient) Purge(ctx context.Context, stamp uuid.UUID) (int64, int64, error) {
	resp, err := c.http.Delete(ctx, c.base+"/api/v1/batches/"+stamp.String())
	if err != nil {
		return 0, 0, err
	}
	var out struct {
		SamplesDeleted int64 `json:"samples_deleted"`
		BatchesDeleted int64 `json:"batches_deleted"`
	}
	if err := decode(resp, &out); err != nil {
		return 0, 0, fmt.Errorf("purge %s: %w", stamp, err)
	}
	return out.SamplesDeleted, out.BatchesDeleted, nil
}

// decode reads a JSON response into v, turning non-2xx statuses into errors.
func decode(resp *http.Response, v any) error {
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e apiError
		if err := json.NewDecoder(resp.Body).Decode(&e); err != nil || e.Error == "" {
			return fmt.Errorf("status %d", resp.StatusCode)
		}
		return fmt.Errorf("status %d: %s", resp.StatusCode, e.Error)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
