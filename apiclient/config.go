package apiclient

import (
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	// DefaultMaxRetries is the number of retries after the first attempt
	DefaultMaxRetries = 3
	// DefaultRetryInterval is the fixed delay between attempts
	DefaultRetryInterval = time.Second
	// DefaultTimeout bounds each individual attempt
	DefaultTimeout = 10 * time.Second
)

// Config holds the client configuration. It is copied and normalized by
// NewClient and never changes afterwards.
type Config struct {
	// BaseURL is joined with every request path. Required.
	BaseURL string
	// MaxRetries is the number of additional attempts after the first one
	// for requests failing with an HTTP error status. Negative values are
	// treated as zero.
	MaxRetries int
	// RetryInterval is the fixed delay between attempts. Negative values are
	// treated as zero.
	RetryInterval time.Duration
	// LoggingEnabled switches the observability channel on or off.
	LoggingEnabled bool
	// Timeout applies to each attempt, not to the whole retry sequence.
	Timeout time.Duration
	// RequestIDHeader, when set, carries a per-request ID that stays the
	// same across the attempts of one logical request.
	RequestIDHeader string
}

// DefaultConfig returns the default configuration for baseURL
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:        baseURL,
		MaxRetries:     DefaultMaxRetries,
		RetryInterval:  DefaultRetryInterval,
		LoggingEnabled: true,
		Timeout:        DefaultTimeout,
	}
}

// MaxAttempts is the attempt budget for one logical request
func (c Config) MaxAttempts() int {
	return c.MaxRetries + 1
}

func (c Config) normalized() Config {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	c.MaxRetries = max(c.MaxRetries, 0)
	c.RetryInterval = max(c.RetryInterval, 0)
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}

// Option configures a Client.
type Option func(*clientOptions)

type clientOptions struct {
	httpClient     *http.Client
	sink           EventSink
	logger         *zerolog.Logger
	defaultHeaders map[string]string
}

// WithHTTPClient sets the transport used for every attempt. The client's
// Timeout is overridden by Config.Timeout.
func WithHTTPClient(client *http.Client) Option {
	return func(o *clientOptions) {
		o.httpClient = client
	}
}

// WithLogger sends observability events to logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *clientOptions) {
		o.logger = &logger
	}
}

// WithEventSink sends observability events to sink. Combined with
// WithLogger, both receive every event.
func WithEventSink(sink EventSink) Option {
	return func(o *clientOptions) {
		o.sink = sink
	}
}

// WithDefaultHeaders seeds the default header set.
func WithDefaultHeaders(headers map[string]string) Option {
	return func(o *clientOptions) {
		o.defaultHeaders = headers
	}
}
