package httputil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client talks to a remote irvaudit solve service. Transient failures
// (network errors, 5xx responses other than 504) are retried with backoff;
// definitive answers, including solver errors and timeouts, are returned as-is.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the service at baseURL
// (e.g. "http://audit.example.org:8080").
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 5 * time.Minute},
	}
}

// SolveReply mirrors the service's POST /solve response body.
type SolveReply struct {
	ID       string          `json:"id"`
	Contest  string          `json:"contest"`
	CacheHit bool            `json:"cache_hit"`
	Result   json.RawMessage `json:"result"`
}

// Solve posts a problem document to the service and returns its reply along
// with the HTTP status. Statuses below 500 and 504 are definitive (422 carries
// the solver's typed error in Result); other 5xx and transport errors are
// retried.
func (c *Client) Solve(ctx context.Context, problemJSON []byte, contest string) (*SolveReply, int, error) {
	endpoint := c.baseURL + "/api/v1/solve"
	if contest != "" {
		endpoint += "?contest=" + url.QueryEscape(contest)
	}

	var reply SolveReply
	var status int
	err := RetryWithBackoff(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(problemJSON))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return Retryable(err)
		}
		defer resp.Body.Close()

		status = resp.StatusCode
		if resp.StatusCode >= 500 && resp.StatusCode != http.StatusGatewayTimeout {
			return Retryable(fmt.Errorf("service returned %s", resp.Status))
		}
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return Retryable(err)
		}
		if err := json.Unmarshal(body, &reply); err != nil {
			return fmt.Errorf("decode reply: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, status, err
	}
	return &reply, status, nil
}

// Health checks the service's liveness endpoint.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("service unhealthy: %s", resp.Status)
	}
	return nil
}
