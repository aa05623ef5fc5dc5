package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/secretnote/client-go/internal/apierrors"
)

// DefaultTimeout is the per-request timeout of the default HTTP client.
const DefaultTimeout = 30 * time.Second

// ErrMissingBaseURL is returned by New when no relay URL was configured.
var ErrMissingBaseURL = errors.New("relay base URL is required")

// Client is the HTTP client for the note relay.
type Client struct {
	baseURL    string
	httpClient *http.Client
	retry      *RetryPolicy
	logger     logrus.FieldLogger
}

// Option configures the API client.
type Option func(*Client)

// WithBaseURL sets the relay base URL, e.g. "https://relay.example.com".
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithRetries sets the maximum number of retries.
func WithRetries(retries int) Option {
	return func(c *Client) {
		c.retry.MaxRetries = retries
	}
}

// WithRetryDelay sets the base delay between retries.
func WithRetryDelay(delay time.Duration) Option {
	return func(c *Client) {
		c.retry.BaseDelay = delay
	}
}

// WithRetryOn replaces the set of status codes that trigger a retry.
func WithRetryOn(statusCodes []int) Option {
	return func(c *Client) {
		c.retry.SetStatuses(statusCodes)
	}
}

// WithLogger sets the logger for request diagnostics.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a relay client. WithBaseURL is required.
func New(opts ...Option) (*Client, error) {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		retry:      DefaultRetryPolicy(),
		logger:     logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.baseURL == "" {
		return nil, ErrMissingBaseURL
	}
	return c, nil
}

// BaseURL returns the relay base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// HTTPClient returns the underlying HTTP client.
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

// SetHTTPClient sets a custom HTTP client.
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// Do sends a JSON request and decodes a JSON response into result.
// Retryable statuses and network failures are retried per the client's
// RetryPolicy; other error statuses become *apierrors.APIError.
func (c *Client) Do(ctx context.Context, method, path string, body, result any) error {
	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		payload = data
	}

	url := c.baseURL + path
	log := c.logger.WithFields(logrus.Fields{"method": method, "url": url})

	for attempt := 0; ; attempt++ {
		var bodyReader io.Reader
		if payload != nil {
			bodyReader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if !c.retry.ShouldRetry(attempt, 0) {
				return &apierrors.NetworkError{Err: err, URL: url, Attempt: attempt + 1}
			}
			log.WithError(err).WithField("attempt", attempt+1).Debug("request failed, retrying")
			if err := sleep(ctx, c.retry.Backoff(attempt, 0)); err != nil {
				return err
			}
			continue
		}

		if resp.StatusCode >= 400 && c.retry.ShouldRetry(attempt, resp.StatusCode) {
			retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"))
			drainAndClose(resp.Body)
			log.WithFields(logrus.Fields{"status": resp.StatusCode, "attempt": attempt + 1}).Debug("retryable status")
			if err := sleep(ctx, c.retry.Backoff(attempt, retryAfter)); err != nil {
				return err
			}
			continue
		}

		return c.handleResponse(resp, result)
	}
}

func (c *Client) handleResponse(resp *http.Response, result any) error {
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return parseErrorResponse(resp)
	}
	if result == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func parseErrorResponse(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var errResp apierrors.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Message != "" {
		return &apierrors.APIError{
			StatusCode: resp.StatusCode,
			Message:    errResp.Message,
			RequestID:  resp.Header.Get("X-Request-Id"),
		}
	}

	return &apierrors.APIError{
		StatusCode: resp.StatusCode,
		Message:    strings.TrimSpace(string(body)),
		RequestID:  resp.Header.Get("X-Request-Id"),
	}
}

func drainAndClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, 64<<10))
	_ = body.Close()
}
