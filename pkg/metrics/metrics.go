// Package metrics provides the Prometheus metrics registry for the
// availability optimizer. Metrics are defined with promauto in the packages
// that own them; this package documents the full metric set.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the optimizer.
// All metrics are automatically registered via promauto in their packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Upstream API Metrics (pkg/healthie):
//   - healthie_requests_total{status} (Counter): Requests by HTTP status
//     (or "network_error" when no response was received)
//   - healthie_request_duration_seconds (Histogram): Request round-trip duration
//   - healthie_errors_total{class} (Counter): Errors by class
//     (client, server, network, graphql)
//
// Example Prometheus Queries:
//
//   # Request Error Rate
//   rate(healthie_errors_total[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(healthie_request_duration_seconds_bucket[5m]))
