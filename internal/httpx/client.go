// Package httpx provides a small HTTP client wrapper with retries, timeouts,
// and exponential back-off. The Client is safe for concurrent use because its
// fields are immutable after construction.
package httpx

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client wraps net/http.Client with retry and timeout behaviour.
type Client struct {
	http       *http.Client
	maxRetries int
	baseDelay  time.Duration
}

// NewClient creates a Client with the given timeout and retry count.
func NewClient(timeout time.Duration, maxRetries int) *Client {
	return &Client{
		http: &http.Client{
			Timeout: timeout,
		},
		maxRetries: maxRetries,
		baseDelay:  500 * time.Millisecond,
	}
}

// WithBaseDelay returns a copy of c that waits d before the first retry.
func (c *Client) WithBaseDelay(d time.Duration) *Client {
	cp := *c
	cp.baseDelay = d
	return &cp
}

// Do executes the request with retries on transient failures (5xx or network errors).
// It uses exponential back-off between attempts. Requests with a body must
// set GetBody so each attempt can resend it.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	var (
		resp *http.Response
		err  error
	)

	for attempt := range c.maxRetries + 1 {
		r := req.Clone(ctx)
		if req.GetBody != nil {
			if r.Body, err = req.GetBody(); err != nil {
				return nil, fmt.Errorf("httpx: rewind body: %w", err)
			}
		}

		resp, err = c.http.Do(r)
		if err == nil && resp.StatusCode < 500 {
			return resp, nil
		}

		if attempt < c.maxRetries {
			// Drain body on retry to allow connection reuse.
			if resp != nil {
				_, _ = io.Copy(io.Discard, resp.Body)
				resp.Body.Close()
			}

			delay := c.baseDelay * (1 << uint(attempt))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	if err != nil {
		return nil, fmt.Errorf("httpx: all %d retries failed: %w", c.maxRetries+1, err)
	}
	return resp, nil
}

// Get is a convenience method for GET requests.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("httpx: new request: %w", err)
	}
	return c.Do(ctx, req)
}

// Delete is a convenience method for DELETE requests.
func (c *Client) Delete(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return nil, fmt.Errorf("httpx: new request: %w", err)
	}
	return c.Do(ctx, req)
}

// UploadOptions are the import flags forwarded as query params.
type UploadOptions struct {
	Force     bool
	KeepNoFix bool
}

// PostCSV uploads a session export to the import endpoint under baseURL.
// The body is buffered so retries can resend it.
func (c *Client) PostCSV(ctx context.Context, baseURL, fileName string, opts UploadOptions, body io.Reader) (*http.Response, error) {
	buf, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("httpx: read upload: %w", err)
	}

	q := url.Values{}
	q.Set("file_name", fileName)
	if opts.Force {
		q.Set("force", "true")
	}
	if opts.KeepNoFix {
		q.Set("keep_no_fix", "true")
	}
	target := baseURL + "/api/v1/imports?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("httpx: new request: %w", err)
	}
	req.Header.Set("Content-Type", "text/csv")
	return c.Do(ctx, req)
}
