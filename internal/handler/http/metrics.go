package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"streaky-relay/internal/handler/http/responsewriter"
	"streaky-relay/internal/observability/metrics"
)

// knownRoutes bounds the path label. Anything else is reported as "other" so
// scanners cannot blow up label cardinality.
var knownRoutes = map[string]struct{}{
	"/send-notification": {},
	"/health":            {},
	"/ready":             {},
	"/live":              {},
	"/metrics":           {},
}

// routeLabel maps a request path to a bounded metric label.
func routeLabel(path string) string {
	if _, ok := knownRoutes[path]; ok {
		return path
	}
	if strings.HasPrefix(path, "/swagger/") {
		return "/swagger/"
	}
	return "other"
}

// MetricsMiddleware records request count, latency and sizes.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		metrics.HTTPRequestsInFlight.Inc()
		defer metrics.HTTPRequestsInFlight.Dec()

		rw := responsewriter.Wrap(w)
		next.ServeHTTP(rw, r)

		metrics.RecordHTTPRequest(
			r.Method,
			routeLabel(r.URL.Path),
			strconv.Itoa(rw.StatusCode()),
			time.Since(start),
			r.ContentLength,
			rw.BytesWritten(),
		)
	})
}

// MetricsHandler serves the Prometheus exposition format.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
