// Package client talks to a running pacematch server over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/pacematch/internal/app"
	"github.com/okian/pacematch/pkg/logger"
)

const (
	defaultTimeout      = 30 * time.Second
	defaultPollInterval = 250 * time.Millisecond
)

// Client calls the pacematch HTTP API.
type Client struct {
	baseURL      string
	http         *http.Client
	pollInterval time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithPollInterval sets how often WaitJob polls.
func WithPollInterval(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.pollInterval = d
		}
	}
}

// New returns a Client for the server at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		http:         &http.Client{Timeout: defaultTimeout},
		pollInterval: defaultPollInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Average is the response of GET /average.
type Average struct {
	AverageSeconds float64 `json:"average_seconds"`
	AverageTime    string  `json:"average_time"`
	Count          int     `json:"count"`
}

// Race is one entry of GET /races.
type Race struct {
	ID            string `json:"id"`
	City          string `json:"city"`
	Year          int    `json:"year"`
	OfficialFile  string `json:"official_file"`
	CommunityFile string `json:"community_file"`
}

// Health checks that /healthz answers 200.
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, "/healthz", nil)
	if err != nil {
		return err
	}
	defer drain(resp)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnhealthy, resp.StatusCode)
	}
	return nil
}

// Submit queues a run for raceID.
func (c *Client) Submit(ctx context.Context, raceID string) (app.Job, error) {
	var job app.Job
	err := c.call(ctx, http.MethodPost, "/runs", map[string]string{"race_id": raceID}, &job)
	return job, err
}

// Job fetches a job snapshot.
func (c *Client) Job(ctx context.Context, id string) (app.Job, error) {
	var job app.Job
	err := c.call(ctx, http.MethodGet, "/runs/"+url.PathEscape(id), nil, &job)
	return job, err
}

// WaitJob polls until the job is done or failed. A failed job is returned
// together with ErrJobFailed.
func (c *Client) WaitJob(ctx context.Context, id string) (app.Job, error) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()
	for {
		job, err := c.Job(ctx, id)
		if err != nil {
			return app.Job{}, err
		}
		switch job.Status {
		case app.JobDone:
			return job, nil
		case app.JobFailed:
			return job, fmt.Errorf("%w: %s: %s", ErrJobFailed, job.RaceID, job.Error)
		}
		select {
		case <-ctx.Done():
			return job, ctx.Err()
		case <-ticker.C:
		}
	}
}

// Races lists the server's race catalog.
func (c *Client) Races(ctx context.Context) ([]Race, error) {
	var body struct {
		Races []Race `json:"races"`
	}
	if err := c.call(ctx, http.MethodGet, "/races", nil, &body); err != nil {
		return nil, err
	}
	return body.Races, nil
}

// Average queries the mean finish time. Empty race or sex and a nil age
// leave that dimension unfiltered.
func (c *Client) Average(ctx context.Context, raceID, sex string, age *int) (Average, error) {
	q := url.Values{}
	if raceID != "" {
		q.Set("race", raceID)
	}
	if sex != "" {
		q.Set("sex", sex)
	}
	if age != nil {
		q.Set("age", strconv.Itoa(*age))
	}
	path := "/average"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var avg Average
	err := c.call(ctx, http.MethodGet, path, nil, &avg)
	return avg, err
}

// SubmitAll submits every race and waits for each job with up to workers
// requests in flight. Jobs are returned in raceIDs order; the first error
// cancels the rest.
func (c *Client) SubmitAll(ctx context.Context, raceIDs []string, workers int) ([]app.Job, error) {
	if workers <= 0 {
		workers = 1
	}
	log := logger.Get().Named("client")
	jobs := make([]app.Job, len(raceIDs))
	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, id := range raceIDs {
		g.Go(func() error {
			job, err := c.Submit(gctx, id)
			if err != nil {
				return fmt.Errorf("submit %s: %w", id, err)
			}
			job, err = c.WaitJob(gctx, job.ID)
			jobs[i] = job
			if err != nil {
				return err
			}
			log.Debug(gctx, "run finished",
				logger.String("race", id),
				logger.String("job", job.ID),
				logger.Int("done", int(done.Add(1))),
				logger.Int("total", len(raceIDs)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return jobs, err
	}
	return jobs, nil
}

func (c *Client) call(ctx context.Context, method, path string, in, out any) error {
	resp, err := c.do(ctx, method, path, in)
	if err != nil {
		return err
	}
	defer drain(resp)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		data, _ := io.ReadAll(resp.Body)
		var body struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		if json.Unmarshal(data, &body) == nil && body.Code != "" {
			apiErr.Code, apiErr.Message = body.Code, body.Message
		} else {
			apiErr.Message = strings.TrimSpace(string(data))
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, in any) (*http.Response, error) {
	var body io.Reader = http.NoBody
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}
