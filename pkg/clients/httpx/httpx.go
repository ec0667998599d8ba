// Package httpx provides the shared pieces of the thin platform HTTP
// clients: a rate-limited http.Client and JSON request/response helpers.
package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"time"

	"golang.org/x/time/rate"
)

// DefaultTimeout is the maximum time to wait for a platform response.
const DefaultTimeout = 30 * time.Second

// rateLimitedTransport blocks until the limiter grants a token before each
// request, so every caller of the client respects the platform's rate limit.
type rateLimitedTransport struct {
	base    http.RoundTripper
	limiter *rate.Limiter
}

func (t *rateLimitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return t.base.RoundTrip(req)
}

// NewClient builds an http.Client limited to rps requests per second.
// rps <= 0 disables limiting. withCookies attaches a cookie jar for
// session-based platforms (Frappe, Teable).
func NewClient(rps float64, withCookies bool) *http.Client {
	transport := http.DefaultTransport
	if rps > 0 {
		transport = &rateLimitedTransport{
			base:    http.DefaultTransport,
			limiter: rate.NewLimiter(rate.Limit(rps), 1),
		}
	}

	client := &http.Client{
		Timeout:   DefaultTimeout,
		Transport: transport,
	}
	if withCookies {
		jar, _ := cookiejar.New(nil)
		client.Jar = jar
	}
	return client
}

// StatusError is returned for non-2xx platform responses, keeping the status
// code available for structured duplicate/permission checks instead of
// string matching.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// IsRetryable implements retry.RetryableError: rate limits and server-side
// errors are transient, everything else is not.
func (e *StatusError) IsRetryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// DoJSON issues a request with an optional JSON body and decodes a JSON
// response into out (skipped when out is nil). Non-2xx responses return a
// *StatusError with a truncated body.
func DoJSON(ctx context.Context, client *http.Client, method, url string, headers http.Header, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{
			StatusCode: resp.StatusCode,
			Body:       readSnippet(resp.Body),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// readSnippet reads at most 512 bytes of an error body for diagnostics.
func readSnippet(r io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(r, 512))
	return string(data)
}
