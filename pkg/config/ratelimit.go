package config

import (
	"log/slog"
	"time"
)

// RateLimitConfig configures the inbound per-IP request limiter.
type RateLimitConfig struct {
	Enabled         bool          `yaml:"enabled"`
	Requests        int           `yaml:"requests"` // requests allowed per Window
	Window          time.Duration `yaml:"window"`
	CleanupInterval time.Duration `yaml:"cleanup_interval"`
	// TrustProxy identifies clients by X-Forwarded-For / X-Real-IP.
	TrustProxy bool `yaml:"trust_proxy"`
}

// DefaultRateLimitConfig returns 60 requests per minute per client IP.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Enabled:         true,
		Requests:        60,
		Window:          time.Minute,
		CleanupInterval: 5 * time.Minute,
	}
}

// ApplyRateLimitEnv overrides cfg from environment variables.
// Out-of-range values are logged and replaced by the previous value.
//
// Environment variables:
//   - RATELIMIT_ENABLED
//   - RATELIMIT_REQUESTS
//   - RATELIMIT_WINDOW
//   - RATELIMIT_CLEANUP_INTERVAL
//   - RATELIMIT_TRUST_PROXY
func ApplyRateLimitEnv(cfg *RateLimitConfig) {
	cfg.Enabled = GetEnvBool("RATELIMIT_ENABLED", cfg.Enabled)
	cfg.TrustProxy = GetEnvBool("RATELIMIT_TRUST_PROXY", cfg.TrustProxy)

	if requests := GetEnvInt("RATELIMIT_REQUESTS", cfg.Requests); requests > 0 {
		cfg.Requests = requests
	} else {
		slog.Warn("invalid RATELIMIT_REQUESTS, using default",
			slog.Int("value", requests),
			slog.Int("default", cfg.Requests))
	}

	window := GetEnvDuration("RATELIMIT_WINDOW", cfg.Window)
	if err := ValidatePositiveDuration(window); err != nil {
		slog.Warn("invalid RATELIMIT_WINDOW, using default",
			slog.String("value", window.String()),
			slog.String("default", cfg.Window.String()),
			slog.String("error", err.Error()))
	} else {
		cfg.Window = window
	}

	interval := GetEnvDuration("RATELIMIT_CLEANUP_INTERVAL", cfg.CleanupInterval)
	if err := ValidatePositiveDuration(interval); err != nil {
		slog.Warn("invalid RATELIMIT_CLEANUP_INTERVAL, using default",
			slog.String("value", interval.String()),
			slog.String("default", cfg.CleanupInterval.String()),
			slog.String("error", err.Error()))
	} else {
		cfg.CleanupInterval = interval
	}
}
