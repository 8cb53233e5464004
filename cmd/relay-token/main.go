// Package main provides a CLI that issues bearer tokens for the relay.
// Usage: relay-token [--subject NAME] [--ttl 1h]
//
// The token is signed with VPS_SECRET, so callers that can hold a short-lived
// token do not need the shared secret itself.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"streaky-relay/internal/handler/http/auth"
	"streaky-relay/internal/observability/logging"
	pkgconfig "streaky-relay/pkg/config"
)

func main() {
	var (
		subject string
		ttl     time.Duration
	)

	flag.StringVar(&subject, "subject", "scheduler", "Token subject (the calling service)")
	flag.DurationVar(&ttl, "ttl", time.Hour, "Token lifetime, at most 24h")
	flag.Parse()

	logger := logging.NewLoggerWithWriter(os.Stderr, pkgconfig.GetEnvString("LOG_LEVEL", "info"))

	secret := os.Getenv("VPS_SECRET")
	if secret == "" {
		logger.Error("VPS_SECRET must be set")
		fmt.Fprintln(os.Stderr, "Usage: VPS_SECRET=... relay-token [--subject NAME] [--ttl 1h]")
		os.Exit(1)
	}

	token, err := auth.IssueToken(secret, subject, ttl)
	if err != nil {
		logger.Error("failed to issue token", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("token issued",
		slog.String("subject", subject),
		slog.Time("expires_at", time.Now().Add(ttl).UTC()))
	fmt.Println(token)
}
