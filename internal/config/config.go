// Package config loads the relay configuration.
//
// Values come from three layers, later layers winning:
//  1. built-in defaults
//  2. an optional YAML file named by RELAY_CONFIG_FILE
//  3. environment variables
//
// Secrets (ENCRYPTION_KEY, VPS_SECRET) are normally supplied through the
// environment; they are accepted from the file as well for local setups.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	pkgconfig "streaky-relay/pkg/config"
)

// FileEnv names the environment variable holding the YAML config path.
const FileEnv = "RELAY_CONFIG_FILE"

// MinEncryptionKeyLength is the AES-256 key size; longer keys are truncated.
const MinEncryptionKeyLength = 32

// Config is the complete relay configuration.
type Config struct {
	Version   string                    `yaml:"version"`
	LogLevel  string                    `yaml:"log_level"`
	Server    ServerConfig              `yaml:"server"`
	Security  SecurityConfig            `yaml:"security"`
	Providers ProvidersConfig           `yaml:"providers"`
	RateLimit pkgconfig.RateLimitConfig `yaml:"rate_limit"`
	Tracing   TracingConfig             `yaml:"tracing"`
}

// ServerConfig configures the inbound HTTP listener.
type ServerConfig struct {
	Port              int           `yaml:"port"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
	MaxBodyBytes      int64         `yaml:"max_body_bytes"`
}

// SecurityConfig holds the two process secrets.
type SecurityConfig struct {
	EncryptionKey string `yaml:"encryption_key"`
	APISecret     string `yaml:"api_secret"`
}

// ProvidersConfig configures outbound provider calls.
type ProvidersConfig struct {
	Timeout         time.Duration `yaml:"timeout"`
	TelegramAPIBase string        `yaml:"telegram_api_base"`
	// Outbound requests per second per provider; zero selects the provider default.
	DiscordRPS  float64 `yaml:"discord_rps"`
	TelegramRPS float64 `yaml:"telegram_rps"`
}

// TracingConfig configures OpenTelemetry export.
type TracingConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Endpoint    string  `yaml:"endpoint"` // OTLP/HTTP host:port; empty keeps spans in-process
	Insecure    bool    `yaml:"insecure"`
	SampleRatio float64 `yaml:"sample_ratio"`
}

// Default returns the configuration used when nothing is overridden.
// Secrets have no default.
func Default() *Config {
	return &Config{
		Version:  "dev",
		LogLevel: "info",
		Server: ServerConfig{
			Port:              8000,
			ReadHeaderTimeout: 10 * time.Second,
			ShutdownTimeout:   15 * time.Second,
			MaxBodyBytes:      64 << 10,
		},
		Providers: ProvidersConfig{
			Timeout:         10 * time.Second,
			TelegramAPIBase: "https://api.telegram.org",
			DiscordRPS:      50,
			TelegramRPS:     30,
		},
		RateLimit: pkgconfig.DefaultRateLimitConfig(),
		Tracing: TracingConfig{
			SampleRatio: 1,
		},
	}
}

// Load builds the configuration from defaults, the optional file and the
// environment, then validates it.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv(FileEnv); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// loadFile overlays the YAML file at path onto cfg.
// The path comes from the operator's environment, not from request input.
func (c *Config) loadFile(path string) error {
	// #nosec G304 -- path is operator supplied
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Version = pkgconfig.GetEnvString("VERSION", c.Version)
	c.LogLevel = strings.ToLower(pkgconfig.GetEnvString("LOG_LEVEL", c.LogLevel))

	c.Server.Port = pkgconfig.GetEnvInt("PORT", c.Server.Port)
	c.Server.ShutdownTimeout = pkgconfig.GetEnvDuration("SHUTDOWN_TIMEOUT", c.Server.ShutdownTimeout)
	c.Server.MaxBodyBytes = pkgconfig.GetEnvInt64("MAX_BODY_BYTES", c.Server.MaxBodyBytes)

	c.Security.EncryptionKey = pkgconfig.GetEnvString("ENCRYPTION_KEY", c.Security.EncryptionKey)
	c.Security.APISecret = pkgconfig.GetEnvString("VPS_SECRET", c.Security.APISecret)

	c.Providers.Timeout = pkgconfig.GetEnvDuration("PROVIDER_TIMEOUT", c.Providers.Timeout)
	c.Providers.TelegramAPIBase = pkgconfig.GetEnvString("TELEGRAM_API_BASE", c.Providers.TelegramAPIBase)
	c.Providers.DiscordRPS = pkgconfig.GetEnvFloat("DISCORD_RPS", c.Providers.DiscordRPS)
	c.Providers.TelegramRPS = pkgconfig.GetEnvFloat("TELEGRAM_RPS", c.Providers.TelegramRPS)

	pkgconfig.ApplyRateLimitEnv(&c.RateLimit)

	c.Tracing.Enabled = pkgconfig.GetEnvBool("OTEL_TRACING_ENABLED", c.Tracing.Enabled)
	c.Tracing.Endpoint = pkgconfig.GetEnvString("OTEL_EXPORTER_OTLP_ENDPOINT", c.Tracing.Endpoint)
	c.Tracing.Insecure = pkgconfig.GetEnvBool("OTEL_EXPORTER_OTLP_INSECURE", c.Tracing.Insecure)
	c.Tracing.SampleRatio = pkgconfig.GetEnvFloat("OTEL_SAMPLE_RATIO", c.Tracing.SampleRatio)
}

// weakSecrets are rejected as VPS_SECRET regardless of length checks.
var weakSecrets = []string{"secret", "password", "test", "admin", "default", "changeme"}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	switch n := len(c.Security.EncryptionKey); {
	case n == 0:
		errs = append(errs, errors.New("ENCRYPTION_KEY is required"))
	case n < MinEncryptionKeyLength:
		errs = append(errs, fmt.Errorf("ENCRYPTION_KEY must be at least %d bytes, got %d", MinEncryptionKeyLength, n))
	}

	secret := c.Security.APISecret
	if secret == "" {
		errs = append(errs, errors.New("VPS_SECRET is required"))
	}
	for _, weak := range weakSecrets {
		if strings.EqualFold(secret, weak) || strings.EqualFold(secret, weak+"123") {
			errs = append(errs, errors.New("VPS_SECRET must not be a common weak value"))
			break
		}
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Server.Port))
	}
	if err := pkgconfig.ValidatePositiveDuration(c.Server.ShutdownTimeout); err != nil {
		errs = append(errs, fmt.Errorf("SHUTDOWN_TIMEOUT: %w", err))
	}
	if c.Server.MaxBodyBytes <= 0 {
		errs = append(errs, errors.New("MAX_BODY_BYTES must be positive"))
	}

	if err := pkgconfig.ValidateDurationRange(c.Providers.Timeout, time.Second, 2*time.Minute); err != nil {
		errs = append(errs, fmt.Errorf("PROVIDER_TIMEOUT: %w", err))
	}
	if !strings.HasPrefix(c.Providers.TelegramAPIBase, "http://") && !strings.HasPrefix(c.Providers.TelegramAPIBase, "https://") {
		errs = append(errs, errors.New("TELEGRAM_API_BASE must be an http(s) URL"))
	}
	if c.Providers.DiscordRPS < 0 || c.Providers.TelegramRPS < 0 {
		errs = append(errs, errors.New("provider rate limits cannot be negative"))
	}

	if c.RateLimit.Enabled && c.RateLimit.Requests <= 0 {
		errs = append(errs, errors.New("RATELIMIT_REQUESTS must be positive when rate limiting is enabled"))
	}

	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		errs = append(errs, fmt.Errorf("OTEL_SAMPLE_RATIO must be between 0 and 1, got %g", c.Tracing.SampleRatio))
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error, got %q", c.LogLevel))
	}

	return errors.Join(errs...)
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

// LogValue implements slog.LogValuer. Secrets are reported only as set/unset.
func (c *Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("version", c.Version),
		slog.String("log_level", c.LogLevel),
		slog.Int("port", c.Server.Port),
		slog.Duration("provider_timeout", c.Providers.Timeout),
		slog.String("telegram_api_base", c.Providers.TelegramAPIBase),
		slog.Bool("rate_limit_enabled", c.RateLimit.Enabled),
		slog.Int("rate_limit_requests", c.RateLimit.Requests),
		slog.Duration("rate_limit_window", c.RateLimit.Window),
		slog.Bool("tracing_enabled", c.Tracing.Enabled),
		slog.Bool("encryption_key_set", c.Security.EncryptionKey != ""),
		slog.Bool("api_secret_set", c.Security.APISecret != ""),
	)
}
