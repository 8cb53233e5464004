package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"streaky-relay/internal/domain/entity"
	"streaky-relay/internal/observability/logging"
)

// DiscordConfig contains configuration for Discord webhook delivery.
type DiscordConfig struct {
	// Timeout is the HTTP request timeout, used when no client is supplied.
	Timeout time.Duration

	// RequestsPerSecond and Burst size the outbound rate limiter.
	// Zero values select the Discord defaults.
	RequestsPerSecond float64
	Burst             int
}

// DiscordNotifier posts streak alerts to Discord-style webhooks.
// The webhook URL is supplied per call and is never stored or logged.
type DiscordNotifier struct {
	httpClient  *http.Client
	rateLimiter *RateLimiter
	now         func() time.Time
}

// NewDiscordNotifier creates a DiscordNotifier. A nil client is replaced by
// NewHTTPClient(config.Timeout).
func NewDiscordNotifier(config DiscordConfig, client *http.Client) *DiscordNotifier {
	if client == nil {
		client = NewHTTPClient(config.Timeout)
	}
	rps, burst := config.RequestsPerSecond, config.Burst
	if rps == 0 {
		rps = discordRequestsPerSecond
	}
	if burst <= 0 {
		burst = discordBurst
	}
	return &DiscordNotifier{
		httpClient:  client,
		rateLimiter: NewRateLimiter(ProviderDiscord, rps, burst),
		now:         time.Now,
	}
}

// DiscordWebhookPayload represents the JSON payload sent to a Discord webhook.
type DiscordWebhookPayload struct {
	Username string         `json:"username"`
	Embeds   []DiscordEmbed `json:"embeds"`
}

// DiscordEmbed represents a Discord embed message.
type DiscordEmbed struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Color       int                 `json:"color"`
	Fields      []DiscordEmbedField `json:"fields"`
	Footer      DiscordEmbedFooter  `json:"footer"`
	Timestamp   string              `json:"timestamp"`
}

// DiscordEmbedField is one name/value row of an embed.
type DiscordEmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// DiscordEmbedFooter represents the footer of a Discord embed.
type DiscordEmbedFooter struct {
	Text string `json:"text"`
}

const (
	botUsername = "Streaky Bot"
	alertTitle  = "⚠️ GitHub Streak Alert"
	footerText  = "Streaky - Never lose your GitHub streak"

	// #ff6b6b
	alertColor = 16739947

	maxDescriptionLength = 4096
	truncationSuffix     = "..."
)

// buildPayload creates the webhook payload for msg, stamped with sentAt.
func buildPayload(msg *entity.NotificationMessage, sentAt time.Time) DiscordWebhookPayload {
	fields := []DiscordEmbedField{
		{Name: "GitHub Username", Value: msg.Username, Inline: true},
		{Name: "Current Streak", Value: fmt.Sprintf("%d days", msg.CurrentStreak), Inline: true},
	}
	if msg.ContributionsToday != nil {
		fields = append(fields, DiscordEmbedField{
			Name:   "Contributions Today",
			Value:  strconv.Itoa(*msg.ContributionsToday),
			Inline: true,
		})
	}

	return DiscordWebhookPayload{
		Username: botUsername,
		Embeds: []DiscordEmbed{{
			Title:       alertTitle,
			Description: truncate(msg.Message, maxDescriptionLength, truncationSuffix),
			Color:       alertColor,
			Fields:      fields,
			Footer:      DiscordEmbedFooter{Text: footerText},
			Timestamp:   sentAt.UTC().Format(time.RFC3339),
		}},
	}
}

// Send delivers msg to webhookURL with a single POST.
//
// Any 2xx status is success. Other statuses yield ProviderRejected with the
// status and response body; failures before a response yield TransportFailure.
func (d *DiscordNotifier) Send(ctx context.Context, webhookURL string, msg *entity.NotificationMessage) error {
	if err := d.rateLimiter.Allow(ctx); err != nil {
		return err
	}

	start := time.Now()
	status, err := postJSON(ctx, d.httpClient, ProviderDiscord, webhookURL, buildPayload(msg, d.now()))
	if err != nil {
		return err
	}

	logging.FromContext(ctx).Debug("Discord notification sent",
		slog.Int("status", status),
		slog.Duration("duration", time.Since(start)))
	return nil
}
