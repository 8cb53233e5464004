// Package tracing provides OpenTelemetry tracing integration.
//
// Init installs W3C trace context propagation and, when enabled, an SDK
// tracer provider exporting over OTLP/HTTP. Middleware creates a server span
// per inbound request. Outbound provider calls are traced by the otelhttp
// transport in the notifier package, and each dispatch gets its own span.
//
// Example usage:
//
//	shutdown, err := tracing.Init(ctx, tracing.Config{Enabled: true, ServiceName: "streaky-relay"})
//	if err != nil {
//	    return err
//	}
//	defer func() { _ = shutdown(context.Background()) }()
//
//	handler := tracing.Middleware(mux)
package tracing
