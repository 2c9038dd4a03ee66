package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"linkboard/internal/metrics"

	"go.uber.org/zap"
)

const maxErrorBody = 64 << 10

// Client performs calls against the backend REST API. Every call makes exactly
// one attempt: there is no retry and no backoff.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client. Its transport is used as is.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTimeout sets an overall per-call timeout. Zero keeps the transport default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// New creates a Client for baseURL, e.g. "http://localhost:8081/api".
func New(baseURL string, logger *zap.Logger, opts ...Option) (*Client, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid api base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("api base url must be http or https, got %q", baseURL)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("api base url must have a host, got %q", baseURL)
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Transport: NewLoggingTransport(nil, logger)},
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the configured base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) Get(ctx context.Context, cred Credential, path string, query url.Values, out any) error {
	return c.Do(ctx, cred, http.MethodGet, path, query, nil, out)
}

func (c *Client) Post(ctx context.Context, cred Credential, path string, body, out any) error {
	return c.Do(ctx, cred, http.MethodPost, path, nil, body, out)
}

func (c *Client) Put(ctx context.Context, cred Credential, path string, body, out any) error {
	return c.Do(ctx, cred, http.MethodPut, path, nil, body, out)
}

func (c *Client) Patch(ctx context.Context, cred Credential, path string, body, out any) error {
	return c.Do(ctx, cred, http.MethodPatch, path, nil, body, out)
}

func (c *Client) Delete(ctx context.Context, cred Credential, path string) error {
	return c.Do(ctx, cred, http.MethodDelete, path, nil, nil, nil)
}

// Do sends one request and decodes a 2xx JSON body into out (skipped when out
// is nil or the body is empty). A 401 clears cred before the error is returned.
func (c *Client) Do(ctx context.Context, cred Credential, method, path string, query url.Values, body, out any) error {
	if cred == nil {
		cred = Anonymous
	}

	endpoint := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s body: %w", method, path, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("build %s %s request: %w", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token := cred.Token(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	route := routeLabel(path)
	start := time.Now()

	resp, err := c.http.Do(req)
	metrics.UpstreamRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(method, route, "error").Inc()
		return fmt.Errorf("%w: %s %s: %w", ErrTransport, method, path, err)
	}
	defer resp.Body.Close()

	metrics.UpstreamRequestsTotal.WithLabelValues(method, route, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode == http.StatusUnauthorized {
		cred.Clear(ctx)
		metrics.CredentialsClearedTotal.Inc()
		c.logger.Info("backend rejected credentials, stored token cleared",
			zap.String("method", method),
			zap.String("path", path),
		)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{
			Method:  method,
			Path:    path,
			Status:  resp.StatusCode,
			Problem: decodeProblem(resp.StatusCode, resp.Header.Get("Content-Type"), data),
		}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read %s %s response: %w", ErrTransport, method, path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

// routeLabel collapses numeric path segments so metrics stay low-cardinality:
// "/links/42/analytics" becomes "/links/{id}/analytics".
func routeLabel(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i, s := range segments {
		if _, err := strconv.ParseInt(s, 10, 64); err == nil {
			segments[i] = "{id}"
		}
	}
	return "/" + strings.Join(segments, "/")
}
