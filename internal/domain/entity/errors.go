package entity

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// ErrorKind classifies every way a dispatch can fail.
type ErrorKind string

const (
	// InvalidCiphertext: the encrypted field is not decodable or shorter than a nonce.
	InvalidCiphertext ErrorKind = "invalid_ciphertext"
	// DecryptionFailed: AEAD authentication failed (tampering, wrong key or nonce).
	DecryptionFailed ErrorKind = "decryption_failed"
	// InvalidPlaintext: the decrypted bytes are not UTF-8 text.
	InvalidPlaintext ErrorKind = "invalid_plaintext"
	// MissingField: a required encrypted field is absent for the declared type.
	MissingField ErrorKind = "missing_field"
	// UnsupportedType: the notification type has no provider.
	UnsupportedType ErrorKind = "unsupported_type"
	// ProviderRejected: the provider answered with a non-2xx status.
	ProviderRejected ErrorKind = "provider_rejected"
	// TransportFailure: no response was received (DNS, TLS, refused, timeout).
	TransportFailure ErrorKind = "transport_failure"
	// ProviderUnavailable: the relay refused to call the provider (circuit open, rate limit wait aborted).
	ProviderUnavailable ErrorKind = "provider_unavailable"
)

// Sentinel errors, one per ErrorKind. A *DispatchError matches the sentinel of
// its kind under errors.Is.
var (
	ErrInvalidCiphertext   = errors.New("invalid encrypted data")
	ErrDecryptionFailed    = errors.New("decryption failed")
	ErrInvalidPlaintext    = errors.New("decrypted data is not valid UTF-8")
	ErrMissingField        = errors.New("missing required field")
	ErrUnsupportedType     = errors.New("unsupported notification type")
	ErrProviderRejected    = errors.New("provider rejected notification")
	ErrTransportFailure    = errors.New("provider transport failure")
	ErrProviderUnavailable = errors.New("provider unavailable")
)

var kindSentinels = map[ErrorKind]error{
	InvalidCiphertext:   ErrInvalidCiphertext,
	DecryptionFailed:    ErrDecryptionFailed,
	InvalidPlaintext:    ErrInvalidPlaintext,
	MissingField:        ErrMissingField,
	UnsupportedType:     ErrUnsupportedType,
	ProviderRejected:    ErrProviderRejected,
	TransportFailure:    ErrTransportFailure,
	ProviderUnavailable: ErrProviderUnavailable,
}

// DispatchError is the internal representation of a failed dispatch.
// Its Error() text is what the caller eventually sees, so no field may hold
// secrets: Body is provider response text and Detail is a fixed reason. Err
// is only rendered for ProviderUnavailable and must be free of URLs and tokens.
type DispatchError struct {
	Kind       ErrorKind
	Provider   string // "Discord", "Telegram"; empty for cipher and routing errors
	Field      string // encrypted field involved, if any
	Type       string // requested notification type, for UnsupportedType
	StatusCode int
	Body       string
	RetryAfter time.Duration // only set for 429 rejections
	Detail     string
	Err        error
}

func (e *DispatchError) Error() string {
	switch e.Kind {
	case MissingField:
		return fmt.Sprintf("Missing %s for %s notification", e.Field, e.Provider)
	case UnsupportedType:
		return fmt.Sprintf("Invalid notification type: %q", e.Type)
	case ProviderRejected:
		status := strconv.Itoa(e.StatusCode)
		if text := http.StatusText(e.StatusCode); text != "" {
			status += " " + text
		}
		return fmt.Sprintf("%s API error: %s - %s", e.Provider, status, e.Body)
	case TransportFailure:
		reason := e.Detail
		if reason == "" {
			reason = "request failed"
		}
		return fmt.Sprintf("%s notification failed: %s", e.Provider, reason)
	case ProviderUnavailable:
		return fmt.Sprintf("%s provider unavailable: %v", e.Provider, e.Err)
	}

	// cipher kinds
	msg := kindSentinels[e.Kind].Error()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Field != "" {
		msg = "decrypt " + e.Field + ": " + msg
	}
	return msg
}

// Unwrap exposes the underlying cause.
func (e *DispatchError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel error for e.Kind.
func (e *DispatchError) Is(target error) bool {
	s, ok := kindSentinels[e.Kind]
	return ok && s == target
}

// KindOf returns the ErrorKind carried by err, or "" when err is not a dispatch error.
func KindOf(err error) ErrorKind {
	var de *DispatchError
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// IsSecurityRelevant reports whether err came from credential handling rather than delivery.
func IsSecurityRelevant(err error) bool {
	switch KindOf(err) {
	case InvalidCiphertext, DecryptionFailed, InvalidPlaintext:
		return true
	default:
		return false
	}
}
