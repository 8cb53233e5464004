package notify

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker"
)

// Prometheus metrics for dispatch monitoring.
// The provider label is the notification kind ("discord", "telegram") or
// "unsupported", so caller input cannot grow label cardinality.
var (
	// notificationDispatchedTotal tracks dispatch attempts per provider
	notificationDispatchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_dispatched_total",
			Help: "Total number of notifications dispatched",
		},
		[]string{"provider"},
	)

	// notificationSentTotal tracks dispatch results per provider
	notificationSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_sent_total",
			Help: "Total number of notifications sent",
		},
		[]string{"provider", "status"}, // status: success|failure
	)

	// notificationFailuresTotal breaks failures down by error kind
	notificationFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_failures_total",
			Help: "Total number of failed notifications by error kind",
		},
		[]string{"provider", "error_kind"},
	)

	// notificationDuration tracks dispatch duration, decryption included
	notificationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "notification_duration_seconds",
			Help:    "Notification dispatch duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}, // 10ms to the 10s timeout
		},
		[]string{"provider"},
	)

	// circuitBreakerState exposes the breaker state per provider
	circuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "notification_circuit_breaker_state",
			Help: "Circuit breaker state per provider (0=closed, 1=half-open, 2=open)",
		},
		[]string{"provider"},
	)

	// openTargets counts open per-target breakers of providers whose
	// destination is chosen by the caller
	openTargets = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "notification_circuit_breaker_open_targets",
			Help: "Number of destinations with an open circuit breaker per provider",
		},
		[]string{"provider"},
	)

	// circuitBreakerOpenTotal tracks circuit breaker open events
	circuitBreakerOpenTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_circuit_breaker_open_total",
			Help: "Total number of circuit breaker open events",
		},
		[]string{"provider"},
	)

	// notificationDroppedTotal tracks notifications refused before delivery
	notificationDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_dropped_total",
			Help: "Total number of notifications refused without contacting the provider",
		},
		[]string{"provider", "reason"}, // reason: circuit_open
	)
)

// RecordDispatch records a dispatch attempt.
func RecordDispatch(provider string) {
	notificationDispatchedTotal.WithLabelValues(provider).Inc()
}

// RecordSuccess records a successful dispatch and its duration.
func RecordSuccess(provider string, duration time.Duration) {
	notificationSentTotal.WithLabelValues(provider, "success").Inc()
	notificationDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

// RecordFailure records a failed dispatch, its error kind and duration.
func RecordFailure(provider, errorKind string, duration time.Duration) {
	notificationSentTotal.WithLabelValues(provider, "failure").Inc()
	notificationFailuresTotal.WithLabelValues(provider, errorKind).Inc()
	notificationDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

// RecordDropped records a dispatch refused before reaching the provider.
func RecordDropped(provider, reason string) {
	notificationDroppedTotal.WithLabelValues(provider, reason).Inc()
}

// RecordCircuitBreakerState publishes a breaker transition.
func RecordCircuitBreakerState(provider string, state gobreaker.State) {
	circuitBreakerState.WithLabelValues(provider).Set(stateValue(state))
	if state == gobreaker.StateOpen {
		circuitBreakerOpenTotal.WithLabelValues(provider).Inc()
	}
}

// RecordTargetBreakerState publishes a transition of a per-target breaker.
// The target itself is never used as a label.
func RecordTargetBreakerState(provider string, from, to gobreaker.State) {
	if from == gobreaker.StateOpen {
		openTargets.WithLabelValues(provider).Dec()
	}
	if to == gobreaker.StateOpen {
		openTargets.WithLabelValues(provider).Inc()
		circuitBreakerOpenTotal.WithLabelValues(provider).Inc()
	}
}

func stateValue(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
