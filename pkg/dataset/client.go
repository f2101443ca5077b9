// Package dataset calls the company-dataset filter API used for
// enrichment lookups.
package dataset

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/adrata/crm-ops/internal/resilience"
)

// Record is one company profile from the dataset.
type Record struct {
	ID          string          `json:"id"`
	CompanyName string          `json:"company_name"`
	Website     string          `json:"website"`
	LinkedInURL string          `json:"linkedin_url"`
	Raw         json.RawMessage `json:"-"`
}

// Client is a rate-limited HTTP client for the dataset filter endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	datasetID  string
	limiter    *rate.Limiter
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRateLimit caps requests per second. The dataset API bills per
// lookup and throttles hard, so every production caller sets this.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
		}
	}
}

// NewClient creates a dataset client.
func NewClient(baseURL, apiKey, datasetID string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		apiKey:     apiKey,
		datasetID:  datasetID,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type filterRequest struct {
	Dataset string `json:"dataset_id"`
	Filter  filter `json:"filter"`
	Limit   int    `json:"records_limit"`
}

type filter struct {
	Name     string `json:"name"`
	Operator string `json:"operator"`
	Value    string `json:"value"`
}

type filterResponse struct {
	Records []json.RawMessage `json:"records"`
}

// FilterByDomain returns the first dataset record whose website matches
// domain. Returns resilience.ErrNotFound (wrapped) when the dataset has
// no record; transient HTTP failures come back as TransientError so the
// caller's retry policy applies.
func (c *Client) FilterByDomain(ctx context.Context, domain string) (*Record, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "dataset: rate limit wait")
		}
	}

	body, err := json.Marshal(filterRequest{
		Dataset: c.datasetID,
		Filter:  filter{Name: "website", Operator: "includes", Value: domain},
		Limit:   1,
	})
	if err != nil {
		return nil, eris.Wrap(err, "dataset: marshal filter")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/filter", bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "dataset: build request")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, resilience.NewTransientError(eris.Wrap(err, "dataset: http"), 0)
	}
	defer resp.Body.Close()

	if resilience.IsTransientHTTPStatus(resp.StatusCode) {
		return nil, resilience.NewTransientError(
			eris.Errorf("dataset: filter returned %d", resp.StatusCode), resp.StatusCode)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, eris.Wrapf(resilience.ErrNotFound, "dataset: domain %s", domain)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("dataset: filter returned %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "dataset: read response")
	}

	var fr filterResponse
	if err := json.Unmarshal(data, &fr); err != nil {
		return nil, eris.Wrap(err, "dataset: decode response")
	}
	if len(fr.Records) == 0 {
		return nil, eris.Wrapf(resilience.ErrNotFound, "dataset: domain %s", domain)
	}

	var rec Record
	if err := json.Unmarshal(fr.Records[0], &rec); err != nil {
		return nil, eris.Wrap(err, "dataset: decode record")
	}
	rec.Raw = fr.Records[0]
	if rec.ID == "" {
		rec.ID = fmt.Sprintf("dataset:%s", domain)
	}
	return &rec, nil
}
