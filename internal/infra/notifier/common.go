package notifier

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"syscall"
	"time"

	"streaky-relay/internal/domain/entity"
)

// maxErrorBody caps how much of a rejection body is kept in the error.
const maxErrorBody = 2048

// rateLimitBody is the JSON shape both providers use on 429 responses.
// Discord sends retry_after at the top level, Telegram under parameters.
type rateLimitBody struct {
	RetryAfter float64 `json:"retry_after"`
	Parameters struct {
		RetryAfter float64 `json:"retry_after"`
	} `json:"parameters"`
}

// postJSON sends payload to target and maps the outcome onto the dispatch
// error taxonomy. It returns the response status code on success.
func postJSON(ctx context.Context, client *http.Client, provider, target string, payload any) (int, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("marshal %s payload: %w", provider, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(data))
	if err != nil {
		return 0, transportError(provider, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return 0, transportError(provider, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
		return resp.StatusCode, nil
	}

	// best effort; an unreadable body is reported as ""
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		body = nil
	}

	rejected := &entity.DispatchError{
		Kind:       entity.ProviderRejected,
		Provider:   provider,
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(body)),
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		rejected.RetryAfter = extractRetryAfter(resp, body)
	}
	return resp.StatusCode, rejected
}

// transportError wraps a failure that happened before any response arrived.
// The caller only sees a fixed reason: net errors carry the request URL or
// the target address, and the URL embeds the webhook or bot token.
func transportError(provider string, err error) error {
	return &entity.DispatchError{
		Kind:     entity.TransportFailure,
		Provider: provider,
		Detail:   transportReason(err),
		Err:      err,
	}
}

func transportReason(err error) string {
	var (
		dnsErr      *net.DNSError
		netErr      net.Error
		verifyErr   *tls.CertificateVerificationError
		recordErr   tls.RecordHeaderError
		alertErr    tls.AlertError
		unknownCA   x509.UnknownAuthorityError
		hostnameErr x509.HostnameError
		invalidCert x509.CertificateInvalidError
	)

	switch {
	case errors.Is(err, context.Canceled):
		return "request canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.As(err, &dnsErr):
		return "dns lookup failed"
	case errors.Is(err, syscall.ECONNREFUSED):
		return "connection refused"
	case errors.Is(err, syscall.ECONNRESET):
		return "connection reset"
	case errors.As(err, &verifyErr), errors.As(err, &recordErr), errors.As(err, &alertErr),
		errors.As(err, &unknownCA), errors.As(err, &hostnameErr), errors.As(err, &invalidCert):
		return "tls handshake failed"
	case errors.As(err, &netErr) && netErr.Timeout():
		return "timeout"
	case isInvalidURL(err):
		return "invalid url"
	default:
		return "request failed"
	}
}

// isInvalidURL reports errors raised while building the request, before any
// connection attempt.
func isInvalidURL(err error) bool {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Op == "parse"
	}
	var escErr url.EscapeError
	var hostErr url.InvalidHostError
	return errors.As(err, &escErr) || errors.As(err, &hostErr)
}

// extractRetryAfter reads the provider's suggested back-off from the JSON
// body, falling back to the Retry-After header. Zero means unknown.
func extractRetryAfter(resp *http.Response, body []byte) time.Duration {
	var rl rateLimitBody
	if err := json.Unmarshal(body, &rl); err == nil {
		if rl.RetryAfter > 0 {
			return time.Duration(rl.RetryAfter * float64(time.Second))
		}
		if rl.Parameters.RetryAfter > 0 {
			return time.Duration(rl.Parameters.RetryAfter * float64(time.Second))
		}
	}

	if h := resp.Header.Get("Retry-After"); h != "" {
		if seconds, err := strconv.Atoi(h); err == nil && seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
	}
	return 0
}

// truncate shortens text to at most maxRunes runes, appending suffix when cut.
func truncate(text string, maxRunes int, suffix string) string {
	runes := []rune(text)
	if len(runes) <= maxRunes {
		return text
	}

	cut := maxRunes - len([]rune(suffix))
	if cut < 0 {
		cut = 0
	}
	return string(runes[:cut]) + suffix
}
