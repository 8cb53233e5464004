package notify

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"streaky-relay/internal/domain/entity"
	"streaky-relay/internal/infra/notifier"
)

// WebhookSender posts a message to a webhook URL.
// *notifier.DiscordNotifier satisfies it.
type WebhookSender interface {
	Send(ctx context.Context, webhookURL string, msg *entity.NotificationMessage) error
}

// DiscordProvider dispatches "discord" notifications to a decrypted webhook URL.
type DiscordProvider struct {
	sender WebhookSender
}

// NewDiscordProvider wraps sender as the Discord provider.
func NewDiscordProvider(sender WebhookSender) *DiscordProvider {
	return &DiscordProvider{sender: sender}
}

// Kind returns entity.NotificationDiscord.
func (p *DiscordProvider) Kind() entity.NotificationKind {
	return entity.NotificationDiscord
}

// Name returns "Discord".
func (p *DiscordProvider) Name() string {
	return notifier.ProviderDiscord
}

// Fields returns the single encrypted_webhook field.
func (p *DiscordProvider) Fields() []string {
	return []string{entity.FieldEncryptedWebhook}
}

// Deliver sends msg to the webhook URL in secrets[0].
func (p *DiscordProvider) Deliver(ctx context.Context, secrets []string, msg *entity.NotificationMessage) error {
	if len(secrets) != 1 {
		return fmt.Errorf("%w: discord needs 1, got %d", ErrSecretCount, len(secrets))
	}
	return p.sender.Send(ctx, secrets[0], msg)
}

// Target keys the circuit breaker by webhook host, so one caller's dead or
// failing webhook server cannot open the circuit for other callers.
func (p *DiscordProvider) Target(secrets []string) (string, bool) {
	if len(secrets) != 1 {
		return "", false
	}
	u, err := url.Parse(secrets[0])
	if err != nil || u.Host == "" {
		return "", false
	}
	return strings.ToLower(u.Host), true
}
