package notify

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"streaky-relay/internal/domain/entity"
	"streaky-relay/internal/infra/credential"
	"streaky-relay/internal/infra/notifier"
	"streaky-relay/internal/resilience/circuitbreaker"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

// encrypt produces ciphertext the way the external encryptor does.
func encrypt(t *testing.T, plaintext string) string {
	t.Helper()
	block, err := aes.NewCipher(testKey)
	require.NoError(t, err)
	aead, err := cipher.NewGCM(block)
	require.NoError(t, err)

	nonce := make([]byte, aead.NonceSize())
	_, err = rand.Read(nonce)
	require.NoError(t, err)
	return base64.StdEncoding.EncodeToString(aead.Seal(nonce, nonce, []byte(plaintext), nil))
}

// countingCipher records every Decrypt call.
type countingCipher struct {
	inner Decrypter
	mu    sync.Mutex
	calls []string
}

func newCountingCipher(t *testing.T) *countingCipher {
	t.Helper()
	c, err := credential.New(testKey)
	require.NoError(t, err)
	return &countingCipher{inner: c}
}

func (c *countingCipher) Decrypt(encoded string) (string, error) {
	c.mu.Lock()
	c.calls = append(c.calls, encoded)
	c.mu.Unlock()
	return c.inner.Decrypt(encoded)
}

func (c *countingCipher) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

// countingTransport counts requests that reach the network layer.
type countingTransport struct {
	inner http.RoundTripper
	calls atomic.Int32
}

func (c *countingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	c.calls.Add(1)
	return c.inner.RoundTrip(r)
}

// fixture wires the real cipher, dispatchers and router against stub servers.
type fixture struct {
	svc       Service
	cipher    *countingCipher
	transport *countingTransport
}

func newFixture(t *testing.T, telegramBase string, opts ...Option) *fixture {
	t.Helper()
	transport := &countingTransport{inner: http.DefaultTransport}
	client := &http.Client{Timeout: 2 * time.Second, Transport: transport}
	c := newCountingCipher(t)

	providers := []Provider{
		NewDiscordProvider(notifier.NewDiscordNotifier(notifier.DiscordConfig{}, client)),
		NewTelegramProvider(notifier.NewTelegramNotifier(notifier.TelegramConfig{APIBase: telegramBase}, client)),
	}
	return &fixture{
		svc:       NewService(c, providers, opts...),
		cipher:    c,
		transport: transport,
	}
}

func testMessage() entity.NotificationMessage {
	return entity.NotificationMessage{Username: "alice", CurrentStreak: 5, Message: "keep going"}
}

// quickBreaker trips after two counted failures.
func quickBreaker(name string) circuitbreaker.Config {
	return circuitbreaker.Config{
		Name:             name,
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          time.Minute,
		FailureThreshold: 1,
		MinRequests:      2,
	}
}

// stubProvider is a Provider whose behavior is set per test.
type stubProvider struct {
	kind    entity.NotificationKind
	fields  []string
	deliver func(ctx context.Context, secrets []string, msg *entity.NotificationMessage) error
}

func (s *stubProvider) Kind() entity.NotificationKind { return s.kind }
func (s *stubProvider) Name() string                  { return "Stub" }
func (s *stubProvider) Fields() []string              { return s.fields }
func (s *stubProvider) Deliver(ctx context.Context, secrets []string, msg *entity.NotificationMessage) error {
	return s.deliver(ctx, secrets, msg)
}

func base64Of(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}
