package tracing

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentationName identifies spans created by the relay.
const InstrumentationName = "streaky-relay"

// GetTracer returns the relay tracer from the current global provider.
// It is resolved on every call so a provider installed after package
// initialization is always picked up.
//
// Example usage:
//
//	ctx, span := tracing.GetTracer().Start(ctx, "operation-name")
//	defer span.End()
func GetTracer() trace.Tracer {
	return otel.Tracer(InstrumentationName)
}
