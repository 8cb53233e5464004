package notifier

import (
	"context"

	"golang.org/x/time/rate"

	"streaky-relay/internal/domain/entity"
)

// Outbound limits per provider, kept below the documented global ceilings
// (Discord 50 req/s per bot, Telegram 30 msg/s per bot).
const (
	discordRequestsPerSecond  = 50
	discordBurst              = 50
	telegramRequestsPerSecond = 30
	telegramBurst             = 30
)

// RateLimiter is a token bucket shared by every request to one provider.
type RateLimiter struct {
	provider string
	limiter  *rate.Limiter
}

// NewRateLimiter creates a limiter for provider allowing requestsPerSecond
// sustained and burst immediate requests. A non-positive rate disables limiting.
func NewRateLimiter(provider string, requestsPerSecond float64, burst int) *RateLimiter {
	limit := rate.Limit(requestsPerSecond)
	if requestsPerSecond <= 0 {
		limit = rate.Inf
	}
	return &RateLimiter{
		provider: provider,
		limiter:  rate.NewLimiter(limit, burst),
	}
}

// Allow blocks until a token is available. If ctx ends first the request is
// reported as ProviderUnavailable without ever reaching the provider.
func (r *RateLimiter) Allow(ctx context.Context) error {
	if r == nil {
		return nil
	}
	if err := r.limiter.Wait(ctx); err != nil {
		return &entity.DispatchError{
			Kind:     entity.ProviderUnavailable,
			Provider: r.provider,
			Detail:   "rate limit wait aborted",
			Err:      err,
		}
	}
	return nil
}
