package auth

import "strings"

// PublicEndpoints are reachable without credentials.
//
//   - /health, /ready, /live: orchestrator probes
//   - /metrics: Prometheus scraping
//   - /swagger/: API documentation
var PublicEndpoints = []string{
	"/health",
	"/ready",
	"/live",
	"/metrics",
	"/swagger/",
}

// IsPublicEndpoint reports whether path needs no authentication.
//
// Entries ending in '/' match by prefix. Other entries match exactly or with
// one trailing slash, so /health is public but /health/detail and
// /healthcheck are not.
func IsPublicEndpoint(path string) bool {
	for _, endpoint := range PublicEndpoints {
		if strings.HasSuffix(endpoint, "/") {
			if strings.HasPrefix(path, endpoint) {
				return true
			}
			continue
		}
		if path == endpoint || path == endpoint+"/" {
			return true
		}
	}
	return false
}
