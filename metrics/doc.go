// Package metrics exports apiclient events as Prometheus metrics.
//
//	collector := metrics.NewCollector()
//	client, err := apiclient.NewClient(cfg, apiclient.WithEventSink(collector))
//	...
//	_ = collector.WriteTextfile("/var/lib/node_exporter/restkit.prom")
//
// Metrics:
//
//   - restkit_attempts_total{method,outcome}
//   - restkit_retries_total{method}
//   - restkit_failures_total{method,kind}
//   - restkit_attempt_duration_seconds{method}
package metrics
