// Package observability groups the relay's logging, metrics and tracing.
//
// Subpackages:
//   - logging: slog JSON logger with credential redaction and context propagation
//   - metrics: Prometheus collectors for the HTTP boundary
//   - tracing: OpenTelemetry provider setup and server middleware
//
// Dispatch metrics live next to the dispatch router in usecase/notify.
package observability
