package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// StatusError is returned for every response with a 4xx/5xx status.
// Error() yields the upstream message unmodified so it can be shown to users.
type StatusError struct {
	Code    int
	Body    string
	Message string
}

func (e *StatusError) Error() string {
	return e.Message
}

// Client wraps http.Client with auth headers and retry/backoff for transient failures.
// It is safe for concurrent use.
type Client struct {
	session     *http.Client
	apiKey      string
	maxAttempts int
	backoff     time.Duration
}

type Option func(*Client)

// WithAPIKey sends key in the Authorization header of every request.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithMaxAttempts bounds retries; 1 disables retrying.
func WithMaxAttempts(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

func WithBackoff(d time.Duration) Option {
	return func(c *Client) { c.backoff = d }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.session = hc }
}

func New(timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		session:     &http.Client{Timeout: timeout},
		maxAttempts: 4,
		backoff:     200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) NewRequest(
	ctx context.Context,
	method string,
	url string,
	body io.Reader,
) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	if c.apiKey != "" {
		req.Header.Set("Authorization", c.apiKey)
	}
	req.Header.Set("Accept", "application/json")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	resp, err := c.session.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		resp.Body.Close()
		body := strings.TrimSpace(string(b))
		return nil, &StatusError{
			Code:    resp.StatusCode,
			Body:    body,
			Message: errorMessage(resp.StatusCode, body),
		}
	}
	return resp, nil
}

// DoWithRetry retries transient failures (network errors, 429 and 502-504 responses)
// using exponential backoff while respecting context cancellation.
// A plain 500 is treated as an application error and returned immediately.
func (c *Client) DoWithRetry(
	ctx context.Context,
	makeReq func() (*http.Request, error),
) (*http.Response, error) {
	backoff := c.backoff

	var lastErr error

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := makeReq()
		if err != nil {
			return nil, fmt.Errorf("make request: %w", err)
		}

		resp, err := c.do(req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !retryable(err) || attempt == c.maxAttempts {
			return nil, lastErr
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		backoff *= 2
	}

	return nil, lastErr
}

func retryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		switch se.Code {
		case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return true
		}
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

// errorMessage extracts a user-facing message from an error body.
// JSON bodies may carry "error" or "message"; anything else is used as plain text.
func errorMessage(code int, body string) string {
	if strings.HasPrefix(body, "{") {
		var payload struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if err := json.Unmarshal([]byte(body), &payload); err == nil {
			if payload.Error != "" {
				return payload.Error
			}
			if payload.Message != "" {
				return payload.Message
			}
		}
	}
	if body != "" {
		return body
	}
	return http.StatusText(code)
}

// BackendMessage implements ports.BackendError.
func (e *StatusError) BackendMessage() string {
	return e.Message
}
