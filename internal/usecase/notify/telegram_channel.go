package notify

import (
	"context"
	"fmt"

	"streaky-relay/internal/domain/entity"
	"streaky-relay/internal/infra/notifier"
)

// BotSender sends a message through a bot API.
// *notifier.TelegramNotifier satisfies it.
type BotSender interface {
	Send(ctx context.Context, botToken, chatID string, msg *entity.NotificationMessage) error
}

// TelegramProvider dispatches "telegram" notifications using a decrypted bot
// token and chat id.
type TelegramProvider struct {
	sender BotSender
}

// NewTelegramProvider wraps sender as the Telegram provider.
func NewTelegramProvider(sender BotSender) *TelegramProvider {
	return &TelegramProvider{sender: sender}
}

// Kind returns entity.NotificationTelegram.
func (p *TelegramProvider) Kind() entity.NotificationKind {
	return entity.NotificationTelegram
}

// Name returns "Telegram".
func (p *TelegramProvider) Name() string {
	return notifier.ProviderTelegram
}

// Fields returns encrypted_token then encrypted_chat_id; the token is
// decrypted first.
func (p *TelegramProvider) Fields() []string {
	return []string{entity.FieldEncryptedToken, entity.FieldEncryptedChatID}
}

// Deliver sends msg with token secrets[0] to chat secrets[1].
func (p *TelegramProvider) Deliver(ctx context.Context, secrets []string, msg *entity.NotificationMessage) error {
	if len(secrets) != 2 {
		return fmt.Errorf("%w: telegram needs 2, got %d", ErrSecretCount, len(secrets))
	}
	return p.sender.Send(ctx, secrets[0], secrets[1], msg)
}
