package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"streaky-relay/internal/domain/entity"
	"streaky-relay/internal/observability/logging"
)

// DefaultTelegramAPIBase is the public Bot API endpoint.
const DefaultTelegramAPIBase = "https://api.telegram.org"

// TelegramConfig contains configuration for Telegram Bot API delivery.
type TelegramConfig struct {
	// APIBase overrides DefaultTelegramAPIBase, e.g. for a self-hosted Bot API server.
	APIBase string

	// Timeout is the HTTP request timeout, used when no client is supplied.
	Timeout time.Duration

	// RequestsPerSecond and Burst size the outbound rate limiter.
	// Zero values select the Telegram defaults.
	RequestsPerSecond float64
	Burst             int
}

// TelegramNotifier sends streak alerts through the Telegram Bot API.
// Bot token and chat id are supplied per call and never stored or logged.
type TelegramNotifier struct {
	apiBase     string
	httpClient  *http.Client
	rateLimiter *RateLimiter
}

// NewTelegramNotifier creates a TelegramNotifier. A nil client is replaced by
// NewHTTPClient(config.Timeout).
func NewTelegramNotifier(config TelegramConfig, client *http.Client) *TelegramNotifier {
	if client == nil {
		client = NewHTTPClient(config.Timeout)
	}
	apiBase := strings.TrimRight(config.APIBase, "/")
	if apiBase == "" {
		apiBase = DefaultTelegramAPIBase
	}
	rps, burst := config.RequestsPerSecond, config.Burst
	if rps == 0 {
		rps = telegramRequestsPerSecond
	}
	if burst <= 0 {
		burst = telegramBurst
	}
	return &TelegramNotifier{
		apiBase:     apiBase,
		httpClient:  client,
		rateLimiter: NewRateLimiter(ProviderTelegram, rps, burst),
	}
}

// TelegramMessage is the sendMessage request body.
type TelegramMessage struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// formatText renders msg in Telegram's legacy Markdown.
func formatText(msg *entity.NotificationMessage) string {
	var b strings.Builder
	fmt.Fprintf(&b, "⚠️ *GitHub Streak Alert*\n\n%s\n\n", msg.Message)
	fmt.Fprintf(&b, "👤 *GitHub Username:* %s\n", msg.Username)
	fmt.Fprintf(&b, "🔥 *Current Streak:* %d days", msg.CurrentStreak)
	if msg.ContributionsToday != nil {
		fmt.Fprintf(&b, "\n📈 *Contributions Today:* %d", *msg.ContributionsToday)
	}
	b.WriteString("\n\n_Streaky - Never lose your GitHub streak_")
	return b.String()
}

func (t *TelegramNotifier) endpoint(botToken string) string {
	return t.apiBase + "/bot" + botToken + "/sendMessage"
}

// Send delivers msg to chatID using botToken with a single POST.
// The success and failure policy matches DiscordNotifier.Send.
func (t *TelegramNotifier) Send(ctx context.Context, botToken, chatID string, msg *entity.NotificationMessage) error {
	if err := t.rateLimiter.Allow(ctx); err != nil {
		return err
	}

	payload := TelegramMessage{
		ChatID:    chatID,
		Text:      formatText(msg),
		ParseMode: "Markdown",
	}

	start := time.Now()
	status, err := postJSON(ctx, t.httpClient, ProviderTelegram, t.endpoint(botToken), payload)
	if err != nil {
		return err
	}

	logging.FromContext(ctx).Debug("Telegram notification sent",
		slog.Int("status", status),
		slog.Duration("duration", time.Since(start)))
	return nil
}
