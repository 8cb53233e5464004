package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"streaky-relay/internal/config"
	hhttp "streaky-relay/internal/handler/http"
	"streaky-relay/internal/infra/credential"
	"streaky-relay/internal/infra/notifier"
	"streaky-relay/internal/observability/logging"
	"streaky-relay/internal/observability/tracing"
	notifyUC "streaky-relay/internal/usecase/notify"

	_ "streaky-relay/docs" // swagger docs
)

// @title           Streaky Notification Relay API
// @version         1.0
// @description     Decrypts per-user provider credentials and forwards streak alerts to Discord and Telegram.

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8000
// @BasePath  /

// @securityDefinitions.apikey APISecret
// @in header
// @name X-API-Secret
// @description Shared relay secret.

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description HS256 token signed with the relay secret, sent as "Bearer {token}".

func main() {
	if err := run(); err != nil {
		slog.Error("relay exited with error", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		// the logger is not configured yet
		slog.New(slog.NewJSONHandler(os.Stderr, nil)).Error("failed to load configuration", slog.Any("error", err))
		return err
	}

	logger := logging.NewLogger(cfg.LogLevel)
	slog.SetDefault(logger)
	logger.Info("configuration loaded", slog.Any("config", cfg))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, tracing.Config{
		Enabled:        cfg.Tracing.Enabled,
		ServiceName:    hhttp.ServiceName,
		ServiceVersion: cfg.Version,
		Endpoint:       cfg.Tracing.Endpoint,
		Insecure:       cfg.Tracing.Insecure,
		SampleRatio:    cfg.Tracing.SampleRatio,
	})
	if err != nil {
		return err
	}

	svc, err := buildService(cfg)
	if err != nil {
		return err
	}

	readiness := &hhttp.Readiness{}
	var limiter *hhttp.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = hhttp.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window, cfg.RateLimit.TrustProxy)
		logger.Info("inbound rate limiting enabled",
			slog.Int("requests", cfg.RateLimit.Requests),
			slog.Duration("window", cfg.RateLimit.Window),
			slog.Bool("trust_proxy", cfg.RateLimit.TrustProxy))
	} else {
		logger.Warn("inbound rate limiting is disabled")
	}

	srv := &http.Server{
		Addr: cfg.Addr(),
		Handler: hhttp.NewRouter(hhttp.RouterConfig{
			Logger:       logger,
			Service:      svc,
			Health:       svc,
			Readiness:    readiness,
			APISecret:    cfg.Security.APISecret,
			Version:      cfg.Version,
			MaxBodyBytes: cfg.Server.MaxBodyBytes,
			RateLimiter:  limiter,
		}),
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout, // Prevent Slowloris attacks
		BaseContext: baseContext(ctx),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("server starting",
			slog.String("addr", srv.Addr),
			slog.String("version", cfg.Version))
		readiness.SetReady(true)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if limiter != nil {
		g.Go(func() error {
			return hhttp.StartRateLimitCleanup(gctx, limiter, cfg.RateLimit.CleanupInterval)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server...")
		readiness.SetReady(false)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		var errs []error
		if err := srv.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, err)
		}
		if err := shutdownTracing(shutdownCtx); err != nil {
			errs = append(errs, err)
		}
		logger.Info("server stopped")
		return errors.Join(errs...)
	})

	return g.Wait()
}

// baseContext gives requests the values of ctx but not its cancellation, so
// SIGTERM lets in-flight requests finish during Shutdown instead of aborting
// their outbound calls.
func baseContext(ctx context.Context) func(net.Listener) context.Context {
	base := context.WithoutCancel(ctx)
	return func(net.Listener) context.Context { return base }
}

// buildService wires the cipher, provider clients and dispatch router.
func buildService(cfg *config.Config) (notifyUC.Service, error) {
	cipher, err := credential.New([]byte(cfg.Security.EncryptionKey))
	if err != nil {
		return nil, err
	}

	client := notifier.NewHTTPClient(cfg.Providers.Timeout)
	discord := notifier.NewDiscordNotifier(notifier.DiscordConfig{
		RequestsPerSecond: cfg.Providers.DiscordRPS,
	}, client)
	telegram := notifier.NewTelegramNotifier(notifier.TelegramConfig{
		APIBase:           cfg.Providers.TelegramAPIBase,
		RequestsPerSecond: cfg.Providers.TelegramRPS,
	}, client)

	return notifyUC.NewService(cipher, []notifyUC.Provider{
		notifyUC.NewDiscordProvider(discord),
		notifyUC.NewTelegramProvider(telegram),
	}), nil
}
