// Package http provides the relay's HTTP surface: health probes, request
// middleware, metrics exposition and the router that ties them to the
// notification handler.
package http

import (
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"streaky-relay/internal/handler/http/respond"
	notifyUC "streaky-relay/internal/usecase/notify"
)

// ServiceName is reported by /health.
const ServiceName = "streaky-notification-proxy"

// HealthResponse represents the JSON response for health check endpoints.
type HealthResponse struct {
	Status    string                 `json:"status" example:"healthy"` // "healthy" or "degraded"
	Service   string                 `json:"service" example:"streaky-notification-proxy"`
	Version   string                 `json:"version" example:"1.0.0"`
	Timestamp string                 `json:"timestamp" example:"2025-11-15T12:30:00Z"` // RFC 3339
	Checks    map[string]CheckStatus `json:"checks"`
}

// CheckStatus represents the status of a single health check.
type CheckStatus struct {
	Status  string         `json:"status"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// ProviderHealthReporter exposes provider circuit breaker states.
type ProviderHealthReporter interface {
	ProviderHealth() []notifyUC.ProviderHealthStatus
}

// HealthHandler reports service identity and provider circuit states.
//
// The relay holds no connections of its own, so it is healthy whenever it
// can answer. An open provider circuit makes it "degraded" but still 200:
// the other provider keeps working.
type HealthHandler struct {
	Version   string
	Providers ProviderHealthReporter
	now       func() time.Time
}

// ServeHTTP godoc
// @Summary      Health check
// @Description  Service identity, version and provider circuit breaker states
// @Tags         health
// @Produce      json
// @Success      200 {object} HealthResponse
// @Router       /health [get]
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	now := time.Now
	if h.now != nil {
		now = h.now
	}

	status := "healthy"
	checks := map[string]CheckStatus{}
	if h.Providers != nil {
		providerCheck := checkProviders(h.Providers.ProviderHealth())
		checks["providers"] = providerCheck
		if providerCheck.Status != "healthy" {
			status = "degraded"
		}
	}

	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	respond.JSON(w, http.StatusOK, HealthResponse{
		Status:    status,
		Service:   ServiceName,
		Version:   h.Version,
		Timestamp: now().UTC().Format(time.RFC3339),
		Checks:    checks,
	})
}

func checkProviders(statuses []notifyUC.ProviderHealthStatus) CheckStatus {
	details := make(map[string]any, len(statuses))
	check := CheckStatus{Status: "healthy", Details: details}

	for _, s := range statuses {
		details[s.Kind.String()] = s.CircuitState
		if s.CircuitBreakerOpen {
			check.Status = "degraded"
			check.Message = "one or more provider circuits are open"
		}
	}
	return check
}

// Readiness is flipped by the server lifecycle: ready after startup,
// not ready once shutdown begins so load balancers drain first.
type Readiness struct {
	ready atomic.Bool
}

// SetReady updates the readiness flag.
func (r *Readiness) SetReady(ready bool) {
	r.ready.Store(ready)
}

// IsReady reports the readiness flag.
func (r *Readiness) IsReady() bool {
	return r.ready.Load()
}

// ReadyHandler handles readiness probe requests.
type ReadyHandler struct {
	State *Readiness
}

// ServeHTTP returns 200 "ready" or 503 "not ready".
func (h *ReadyHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	if h.State == nil || !h.State.IsReady() {
		w.WriteHeader(http.StatusServiceUnavailable)
		writeText(w, "not ready")
		return
	}
	w.WriteHeader(http.StatusOK)
	writeText(w, "ready")
}

// LiveHandler handles liveness probe requests.
type LiveHandler struct{}

// ServeHTTP always returns 200 "alive".
func (h *LiveHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	writeText(w, "alive")
}

func writeText(w http.ResponseWriter, s string) {
	if _, err := w.Write([]byte(s)); err != nil {
		slog.Default().Debug("failed to write probe response", slog.Any("error", err))
	}
}
