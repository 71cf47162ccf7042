package metrics

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/s0up4200/restkit/apiclient"
)

// Collector turns client events into Prometheus metrics. It implements
// apiclient.EventSink and is safe for concurrent use.
type Collector struct {
	attemptsTotal   *prometheus.CounterVec
	retriesTotal    *prometheus.CounterVec
	failuresTotal   *prometheus.CounterVec
	attemptDuration *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

var _ apiclient.EventSink = (*Collector)(nil)

// NewCollector creates a collector on a fresh registry
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()
	return NewCollectorWithRegistry(registry, registry)
}

// NewCollectorWithRegistry registers the metrics on registerer. gatherer is
// read by WriteTextfile and may be nil when that is not used.
func NewCollectorWithRegistry(registerer prometheus.Registerer, gatherer prometheus.Gatherer) *Collector {
	factory := promauto.With(registerer)
	return &Collector{
		attemptsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "restkit_attempts_total",
				Help: "Total number of request attempts by outcome",
			},
			[]string{"method", "outcome"},
		),
		retriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "restkit_retries_total",
				Help: "Total number of retries scheduled",
			},
			[]string{"method"},
		),
		failuresTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "restkit_failures_total",
				Help: "Total number of requests that ended in an error",
			},
			[]string{"method", "kind"},
		),
		attemptDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "restkit_attempt_duration_seconds",
				Help:    "Duration of individual request attempts in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		gatherer: gatherer,
	}
}

// Emit implements apiclient.EventSink
func (c *Collector) Emit(e apiclient.Event) {
	switch e.Phase {
	case apiclient.PhaseSuccess:
		c.recordAttempt(e, "success")
	case apiclient.PhaseRetry:
		c.recordAttempt(e, ErrorKind(e.Err))
		c.retriesTotal.WithLabelValues(e.Method).Inc()
	case apiclient.PhaseFailure:
		kind := ErrorKind(e.Err)
		c.recordAttempt(e, kind)
		c.failuresTotal.WithLabelValues(e.Method, kind).Inc()
	case apiclient.PhaseAbandoned:
		c.failuresTotal.WithLabelValues(e.Method, "cancelled").Inc()
	}
}

func (c *Collector) recordAttempt(e apiclient.Event, outcome string) {
	c.attemptsTotal.WithLabelValues(e.Method, outcome).Inc()
	c.attemptDuration.WithLabelValues(e.Method).Observe(e.Duration.Seconds())
}

// WriteTextfile writes every gathered metric to path in the text format
// read by the node_exporter textfile collector.
func (c *Collector) WriteTextfile(path string) error {
	if c.gatherer == nil {
		return fmt.Errorf("collector has no gatherer")
	}
	if err := prometheus.WriteToTextfile(path, c.gatherer); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}

// ErrorKind names the class of a request error for metric labels
func ErrorKind(err error) string {
	var (
		statusErr    *apiclient.HTTPStatusError
		transportErr *apiclient.TransportError
		closedErr    *apiclient.ClosedClientError
	)
	switch {
	case err == nil:
		return "none"
	case errors.As(err, &statusErr):
		return "http_status"
	case errors.As(err, &transportErr):
		return "transport"
	case errors.As(err, &closedErr):
		return "closed"
	case errors.Is(err, apiclient.ErrValidation):
		return "validation"
	default:
		return "other"
	}
}
