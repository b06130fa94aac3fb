// Package transport is the coordinator-side HTTP client (C9 in
// SPEC_FULL.md §4), grounded on zexfrost/client/dkg.py and
// zexfrost/client/sa.py's shared `_send_request` helper: a thin wrapper
// that posts JSON, decodes a JSON response, and classifies the outcome
// into the error class (success / 4xx / 5xx / transport-timeout) the
// selection-weight EMA (spec.md §4.8) needs, without the coordinator
// package having to inspect *http.Response itself.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/threshold-frost/frostd/internal/frosterr"
	"github.com/threshold-frost/frostd/internal/wire"
)

// DefaultDKGTimeout and DefaultSignTimeout are spec.md §5's default
// per-request deadlines.
const (
	DefaultDKGTimeout  = 10 * time.Second
	DefaultSignTimeout = 20 * time.Second
)

// Client posts JSON requests to node URLs and reports each call's outcome
// class alongside any error.
type Client struct {
	http *http.Client
}

// NewClient builds a Client with the given default per-request timeout.
// Individual calls may still supply a shorter-lived context.
func NewClient(timeout time.Duration) *Client {
	return &Client{http: &http.Client{Timeout: timeout}}
}

// Outcome classifies one HTTP round trip for the selection-weight EMA.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeClientError
	OutcomeServerError
	OutcomeTransportError
)

// Result carries everything the caller needs to both use a decoded
// response and feed the weight-update rule.
type Result struct {
	Outcome Outcome
	Latency time.Duration
	Status  int
}

// HTTPError wraps a non-2xx JSON error body returned by a node.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("node returned %d: %s", e.StatusCode, e.Body)
}

// PostJSON posts body as JSON to url, decodes a 2xx response into out (if
// non-nil), and returns a Result describing the outcome regardless of
// whether an error is also returned — callers update selection weight from
// Result even on failure.
func (c *Client) PostJSON(ctx context.Context, node wire.Node, url string, body, out any) (Result, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return Result{Outcome: OutcomeTransportError}, fmt.Errorf("transport: encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return Result{Outcome: OutcomeTransportError}, fmt.Errorf("transport: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	latency := time.Since(start)
	if err != nil {
		return Result{Outcome: OutcomeTransportError, Latency: latency},
			&frosterr.NodeTimeoutError{Node: node.ID, Err: err}
	}
	defer resp.Body.Close()

	result := Result{Latency: latency, Status: resp.StatusCode}
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		result.Outcome = OutcomeSuccess
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		result.Outcome = OutcomeClientError
	default:
		result.Outcome = OutcomeServerError
	}

	if result.Outcome != OutcomeSuccess {
		var body bytes.Buffer
		_, _ = body.ReadFrom(resp.Body)
		return result, &HTTPError{StatusCode: resp.StatusCode, Body: body.String()}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return result, fmt.Errorf("transport: decoding response from %s: %w", node.ID, err)
		}
	}
	return result, nil
}
