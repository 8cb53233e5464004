// Package metrics provides Prometheus metrics registry and recording utilities.
//
// This package centralizes the HTTP boundary metrics:
//   - HTTP request metrics (duration, count, size, in-flight)
//   - Authentication outcomes
//   - Inbound rate limit rejections and recovered panics
//
// All metrics are registered with the Prometheus default registry and
// exposed via the /metrics endpoint.
//
// Example usage:
//
//	import "streaky-relay/internal/observability/metrics"
//
//	metrics.RecordAuth("api_secret", true)
package metrics
