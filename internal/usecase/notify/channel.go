// Package notify implements the dispatch router: it resolves the provider for
// a notification kind, decrypts the credentials that provider needs, and
// performs a single delivery through a per-provider circuit breaker.
package notify

import (
	"context"

	"streaky-relay/internal/domain/entity"
)

// Decrypter turns an encrypted request field into its plaintext secret.
// *credential.AESGCM satisfies it.
type Decrypter interface {
	Decrypt(encoded string) (string, error)
}

// Provider is one messaging destination the router can dispatch to.
//
// Adding a provider means adding an entity.NotificationKind and a Provider
// for it; the router itself does not change.
//
// Thread Safety:
//   - All methods must be safe for concurrent use by multiple goroutines
type Provider interface {
	// Kind is the notification type this provider serves.
	Kind() entity.NotificationKind

	// Name is the human-readable provider name used in error messages
	// (e.g. "Discord").
	Name() string

	// Fields lists the encrypted request fields the provider needs, in the
	// order they are decrypted and passed to Deliver.
	Fields() []string

	// Deliver performs exactly one outbound delivery.
	//
	// secrets holds the decrypted values of Fields(), in the same order.
	// Implementations must not log secrets or include them in errors, and
	// must not retry.
	Deliver(ctx context.Context, secrets []string, msg *entity.NotificationMessage) error
}

// Targeted is implemented by providers whose destination host is chosen by
// the caller. The router keeps one circuit breaker per target, so a broken
// destination only fails the requests addressed to it.
type Targeted interface {
	// Target returns the breaker key for the decrypted secrets. ok is false
	// when no target can be derived; the call then runs without a breaker.
	Target(secrets []string) (key string, ok bool)
}
