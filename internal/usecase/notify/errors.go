package notify

import "errors"

// Sentinel errors for notify use case operations.
var (
	// ErrCircuitBreakerOpen is the cause attached to ProviderUnavailable when
	// the provider's circuit breaker refuses the call.
	ErrCircuitBreakerOpen = errors.New("circuit breaker is open")

	// ErrDispatchPanic is reported when a provider panics mid-dispatch.
	ErrDispatchPanic = errors.New("internal error during dispatch")

	// ErrSecretCount indicates a provider received the wrong number of
	// decrypted secrets. It signals a wiring bug, not bad input.
	ErrSecretCount = errors.New("unexpected number of secrets")
)
