// Package httpx holds the JSON-over-HTTP plumbing shared by the third-party API clients.
package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// maxErrorBody caps how much of a failed response body is kept for diagnostics.
const maxErrorBody = 512

// maxResponseBody caps how much of any response body is read.
const maxResponseBody = 1 << 20

// UpstreamError reports a failed call to a third-party service: either a
// transport failure (Status == 0) or a non-success response.
type UpstreamError struct {
	Op     string
	Status int
	Body   string
	Err    error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.Err != nil && e.Status != 0:
		return fmt.Sprintf("%s: upstream status %d: %v", e.Op, e.Status, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: upstream status %d", e.Op, e.Status)
	}
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// IsUpstream reports whether err carries an *UpstreamError.
func IsUpstream(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}

// Request describes one JSON call.
type Request struct {
	Op       string
	Method   string
	URL      string
	Header   http.Header
	Body     any
	Decorate func(*http.Request)
}

// Do performs the request and returns the raw response status and body.
// Transport failures are returned as *UpstreamError; the caller decides which
// statuses are failures.
func Do(ctx context.Context, client *http.Client, r Request) (int, []byte, error) {
	var body io.Reader
	if r.Body != nil {
		raw, err := json.Marshal(r.Body)
		if err != nil {
			return 0, nil, fmt.Errorf("%s: marshal body: %w", r.Op, err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, r.Method, r.URL, body)
	if err != nil {
		return 0, nil, fmt.Errorf("%s: create request: %w", r.Op, err)
	}
	for k, vs := range r.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	if r.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.Decorate != nil {
		r.Decorate(req)
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, &UpstreamError{Op: r.Op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody+1))
	if err != nil {
		return resp.StatusCode, nil, &UpstreamError{Op: r.Op, Status: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}
	if len(raw) > maxResponseBody {
		return resp.StatusCode, nil, &UpstreamError{Op: r.Op, Status: resp.StatusCode, Err: fmt.Errorf("response body exceeds %d bytes", maxResponseBody)}
	}
	return resp.StatusCode, raw, nil
}

// DoJSON performs the request and decodes a 2xx body into out. Any other
// status becomes an *UpstreamError carrying a truncated copy of the body.
func DoJSON(ctx context.Context, client *http.Client, r Request, out any) error {
	status, raw, err := Do(ctx, client, r)
	if err != nil {
		return err
	}
	if status < 200 || status > 299 {
		return &UpstreamError{Op: r.Op, Status: status, Body: truncate(raw)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &UpstreamError{Op: r.Op, Status: status, Err: fmt.Errorf("decode body: %w", err)}
	}
	return nil
}

func truncate(raw []byte) string {
	if len(raw) > maxErrorBody {
		return string(raw[:maxErrorBody])
	}
	return string(raw)
}
