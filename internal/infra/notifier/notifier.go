// Package notifier delivers streak alerts to external messaging providers.
//
// Each dispatcher performs exactly one outbound HTTP POST per call. Failures
// are reported as *entity.DispatchError values of kind ProviderRejected,
// TransportFailure or ProviderUnavailable; nothing is retried here.
package notifier

import (
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// DefaultTimeout bounds every outbound provider call.
const DefaultTimeout = 10 * time.Second

// Provider display names, used in error messages and metric labels.
const (
	ProviderDiscord  = "Discord"
	ProviderTelegram = "Telegram"
)

// NewHTTPClient returns the client shared by all dispatchers.
//
// Requests are traced with otelhttp. Span names carry only the method so
// that webhook paths and bot tokens never reach the tracing backend.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{
		Timeout: timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport,
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				return "provider " + r.Method
			}),
		),
	}
}
