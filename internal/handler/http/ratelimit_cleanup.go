package http

import (
	"context"
	"log/slog"
	"time"
)

// StartRateLimitCleanup periodically drops idle clients from limiter until ctx
// is cancelled. It always returns nil so it can run inside an errgroup.
func StartRateLimitCleanup(ctx context.Context, limiter *RateLimiter, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.Info("rate limit cleanup started", slog.Duration("interval", interval))

	for {
		select {
		case <-ctx.Done():
			slog.Info("rate limit cleanup stopped")
			return nil

		case <-ticker.C:
			removed := limiter.Cleanup()
			slog.Debug("rate limit cleanup completed",
				slog.Int("clients_removed", removed),
				slog.Int("clients_active", limiter.ActiveClients()))
		}
	}
}
