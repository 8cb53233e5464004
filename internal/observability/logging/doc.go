// Package logging provides structured logging utilities with context propagation.
//
// This package wraps the standard library's log/slog package with helper functions
// for common logging patterns used throughout the relay.
//
// Key features:
//   - JSON output with credential-named attributes redacted
//   - Request ID propagation
//   - Trace and span IDs from the active OpenTelemetry span
//   - Configurable log levels
//
// Example usage:
//
//	import "streaky-relay/internal/observability/logging"
//
//	func main() {
//	    logger := logging.NewLogger(cfg.LogLevel)
//	    logger.Info("relay started", slog.String("version", "1.0"))
//	}
//
//	func handleRequest(ctx context.Context) {
//	    logging.FromContext(ctx).Info("processing request")
//	}
package logging
