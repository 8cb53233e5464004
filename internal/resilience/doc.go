// Package resilience holds fault tolerance helpers for outbound provider calls.
//
// The circuitbreaker subpackage wraps github.com/sony/gobreaker. The relay
// never retries a delivery, so a breaker is the only protection against a
// provider that is down: once it trips, requests fail fast instead of each
// waiting out the outbound timeout.
//
// Usage Example:
//
//	cb := circuitbreaker.New(circuitbreaker.ProviderConfig("discord"))
//	err := cb.Run(func() error {
//	    return dispatcher.Send(ctx, webhookURL, msg)
//	})
package resilience
