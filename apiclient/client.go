package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RequestOptions holds the per-call parts of a request. The zero value and
// nil are both valid.
type RequestOptions struct {
	// Headers override the default headers key by key for this call only.
	Headers map[string]string
	// Body is encoded as JSON. []byte and json.RawMessage are sent as-is.
	Body any
	// Query is appended to any query already present in the path.
	Query url.Values
}

// Client issues requests against one base URL with a bounded retry policy
// and a shared set of default headers. It is safe for concurrent use.
type Client struct {
	cfg        Config
	httpClient *http.Client
	headers    *headerStore
	retry      *retryer
	closed     atomic.Bool
	closeOnce  sync.Once
}

// NewClient creates a client. The transport is acquired here and held
// until Close.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	cfg = cfg.normalized()
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: base URL is required", ErrInvalidConfig)
	}
	if u, err := url.Parse(cfg.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: invalid base URL %q", ErrInvalidConfig, cfg.BaseURL)
	}

	var o clientOptions
	for _, opt := range opts {
		opt(&o)
	}

	httpClient := &http.Client{Timeout: cfg.Timeout}
	if o.httpClient != nil {
		hc := *o.httpClient
		hc.Timeout = cfg.Timeout
		httpClient = &hc
	}

	return &Client{
		cfg:        cfg,
		httpClient: httpClient,
		headers:    newHeaderStore(o.defaultHeaders),
		retry: &retryer{
			maxRetries: cfg.MaxRetries,
			interval:   cfg.RetryInterval,
			events:     emitter{sink: resolveSink(cfg, o)},
		},
	}, nil
}

func resolveSink(cfg Config, o clientOptions) EventSink {
	if !cfg.LoggingEnabled {
		return nopSink{}
	}

	var sinks []EventSink
	if o.logger != nil {
		sinks = append(sinks, NewLogSink(*o.logger))
	}
	if o.sink != nil {
		sinks = append(sinks, o.sink)
	}
	if len(sinks) == 0 {
		return NewLogSink(zerolog.New(os.Stderr).With().Timestamp().Logger())
	}
	return MultiSink(sinks...)
}

// Scoped creates a client, passes it to fn and closes it when fn returns,
// whether normally, with an error, or by panicking.
func Scoped(cfg Config, fn func(*Client) error, opts ...Option) error {
	c, err := NewClient(cfg, opts...)
	if err != nil {
		return err
	}
	defer c.Close()

	return fn(c)
}

// Config returns the normalized configuration
func (c *Client) Config() Config {
	return c.cfg
}

// Close releases the transport. It is safe to call more than once; only
// the first call has an effect. Requests issued afterwards, and pending
// retries of requests already in flight, fail with *ClosedClientError.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		c.httpClient.CloseIdleConnections()
	})
	return nil
}

// Closed reports whether Close has been called
func (c *Client) Closed() bool {
	return c.closed.Load()
}

// Get issues a GET request
func (c *Client) Get(ctx context.Context, path string, opts *RequestOptions) (*Response, error) {
	return c.Do(ctx, http.MethodGet, path, opts)
}

// Post issues a POST request
func (c *Client) Post(ctx context.Context, path string, opts *RequestOptions) (*Response, error) {
	return c.Do(ctx, http.MethodPost, path, opts)
}

// Put issues a PUT request
func (c *Client) Put(ctx context.Context, path string, opts *RequestOptions) (*Response, error) {
	return c.Do(ctx, http.MethodPut, path, opts)
}

// Patch issues a PATCH request
func (c *Client) Patch(ctx context.Context, path string, opts *RequestOptions) (*Response, error) {
	return c.Do(ctx, http.MethodPatch, path, opts)
}

// Delete issues a DELETE request
func (c *Client) Delete(ctx context.Context, path string, opts *RequestOptions) (*Response, error) {
	return c.Do(ctx, http.MethodDelete, path, opts)
}

// Do issues a request with the given method. path is joined to the base
// URL; leading slashes are ignored. HTTP error statuses are retried up to
// Config.MaxRetries times; every other failure is returned immediately.
func (c *Client) Do(ctx context.Context, method, path string, opts *RequestOptions) (*Response, error) {
	if c.closed.Load() {
		return nil, &ClosedClientError{BaseURL: c.cfg.BaseURL}
	}
	if opts == nil {
		opts = &RequestOptions{}
	}

	method = strings.ToUpper(method)
	info := requestInfo{id: uuid.NewString(), method: method}

	target, prepErr := c.resolve(path, opts.Query)
	info.url = target

	var body []byte
	if prepErr == nil {
		body, prepErr = encodeBody(opts.Body)
	}
	headers := c.effectiveHeaders(opts.Headers, body != nil, info.id)

	return c.retry.run(ctx, info, func(ctx context.Context, n int) (*Response, error) {
		// Close may have run while waiting to retry
		if c.closed.Load() {
			return nil, &ClosedClientError{BaseURL: c.cfg.BaseURL}
		}
		if prepErr != nil {
			return nil, &TransportError{Method: method, URL: target, Attempt: n, Err: prepErr}
		}
		return c.send(ctx, method, target, headers, body, n)
	})
}

// resolve joins path to the base URL and appends query.
func (c *Client) resolve(path string, query url.Values) (string, error) {
	target := c.cfg.BaseURL
	if p := strings.TrimLeft(path, "/"); p != "" {
		target += "/" + p
	}

	u, err := url.Parse(target)
	if err != nil {
		return target, fmt.Errorf("malformed request URL: %w", err)
	}
	if len(query) == 0 {
		return target, nil
	}

	q := u.Query()
	for k, vs := range query {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// effectiveHeaders computes the header set for one logical request:
// protocol defaults, then the default headers, then per-call headers.
func (c *Client) effectiveHeaders(perCall map[string]string, hasBody bool, requestID string) map[string]string {
	base := map[string]string{"Accept": "application/json"}
	if hasBody {
		base["Content-Type"] = "application/json"
	}
	if c.cfg.RequestIDHeader != "" {
		base[http.CanonicalHeaderKey(c.cfg.RequestIDHeader)] = requestID
	}
	return merge(merge(base, c.headers.snapshot()), perCall)
}

func encodeBody(body any) ([]byte, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		return b, nil
	case []byte:
		return b, nil
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}
	return data, nil
}

// send performs a single attempt.
func (c *Client) send(ctx context.Context, method, target string, headers map[string]string, body []byte, n int) (*Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, &TransportError{Method: method, URL: target, Attempt: n, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Method: method, URL: target, Attempt: n, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Method: method, URL: target, Attempt: n, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	if !IsSuccessStatus(resp.StatusCode) {
		return nil, &HTTPStatusError{
			Method:     method,
			URL:        target,
			StatusCode: resp.StatusCode,
			Body:       data,
			Attempts:   n,
		}
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
		Method:     method,
		URL:        target,
		Elapsed:    time.Since(start),
	}, nil
}
