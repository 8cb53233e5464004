package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvString(t *testing.T) {
	t.Setenv("RELAY_TEST_STRING", "")
	assert.Equal(t, "fallback", GetEnvString("RELAY_TEST_STRING", "fallback"))

	t.Setenv("RELAY_TEST_STRING", "value")
	assert.Equal(t, "value", GetEnvString("RELAY_TEST_STRING", "fallback"))
}

func TestGetEnvInt(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  int
	}{
		{"unset", "", 8000},
		{"valid", "9090", 9090},
		{"surrounding spaces", " 42 ", 42},
		{"not a number", "eighty", 8000},
		{"float", "1.5", 8000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("RELAY_TEST_INT", tt.value)
			assert.Equal(t, tt.want, GetEnvInt("RELAY_TEST_INT", 8000))
		})
	}
}

func TestGetEnvInt64(t *testing.T) {
	t.Setenv("RELAY_TEST_INT64", "1048576")
	assert.Equal(t, int64(1<<20), GetEnvInt64("RELAY_TEST_INT64", 1))

	t.Setenv("RELAY_TEST_INT64", "1MB")
	assert.Equal(t, int64(1), GetEnvInt64("RELAY_TEST_INT64", 1))
}

func TestGetEnvFloat(t *testing.T) {
	t.Setenv("RELAY_TEST_FLOAT", "0.25")
	assert.InDelta(t, 0.25, GetEnvFloat("RELAY_TEST_FLOAT", 1), 1e-9)

	t.Setenv("RELAY_TEST_FLOAT", "fast")
	assert.InDelta(t, 1.0, GetEnvFloat("RELAY_TEST_FLOAT", 1), 1e-9)
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		value string
		def   bool
		want  bool
	}{
		{"", true, true},
		{"true", false, true},
		{"1", false, true},
		{"FALSE", true, false},
		{"0", true, false},
		{"yes", true, true},
		{"yes", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("RELAY_TEST_BOOL", tt.value)
			assert.Equal(t, tt.want, GetEnvBool("RELAY_TEST_BOOL", tt.def))
		})
	}
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("RELAY_TEST_DURATION", "1m30s")
	assert.Equal(t, 90*time.Second, GetEnvDuration("RELAY_TEST_DURATION", time.Second))

	t.Setenv("RELAY_TEST_DURATION", "10")
	assert.Equal(t, time.Second, GetEnvDuration("RELAY_TEST_DURATION", time.Second))
}

func TestValidateDuration(t *testing.T) {
	assert.NoError(t, ValidatePositiveDuration(time.Nanosecond))
	assert.Error(t, ValidatePositiveDuration(0))
	assert.Error(t, ValidatePositiveDuration(-time.Second))

	assert.NoError(t, ValidateDurationRange(time.Second, time.Second, time.Minute))
	assert.NoError(t, ValidateDurationRange(time.Minute, time.Second, time.Minute))
	assert.ErrorContains(t, ValidateDurationRange(time.Millisecond, time.Second, time.Minute), "below minimum")
	assert.ErrorContains(t, ValidateDurationRange(time.Hour, time.Second, time.Minute), "exceeds maximum")
	assert.ErrorContains(t, ValidateDurationRange(time.Second, time.Minute, time.Second), "invalid range")
}

func TestApplyRateLimitEnv(t *testing.T) {
	t.Run("defaults survive when unset", func(t *testing.T) {
		for _, key := range []string{"RATELIMIT_ENABLED", "RATELIMIT_REQUESTS", "RATELIMIT_WINDOW", "RATELIMIT_CLEANUP_INTERVAL", "RATELIMIT_TRUST_PROXY"} {
			t.Setenv(key, "")
		}
		cfg := DefaultRateLimitConfig()
		ApplyRateLimitEnv(&cfg)
		assert.Equal(t, DefaultRateLimitConfig(), cfg)
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("RATELIMIT_ENABLED", "false")
		t.Setenv("RATELIMIT_REQUESTS", "5")
		t.Setenv("RATELIMIT_WINDOW", "10s")
		t.Setenv("RATELIMIT_CLEANUP_INTERVAL", "1m")
		t.Setenv("RATELIMIT_TRUST_PROXY", "true")

		cfg := DefaultRateLimitConfig()
		ApplyRateLimitEnv(&cfg)
		assert.Equal(t, RateLimitConfig{
			Enabled:         false,
			Requests:        5,
			Window:          10 * time.Second,
			CleanupInterval: time.Minute,
			TrustProxy:      true,
		}, cfg)
	})

	t.Run("invalid values keep previous", func(t *testing.T) {
		t.Setenv("RATELIMIT_ENABLED", "")
		t.Setenv("RATELIMIT_REQUESTS", "-3")
		t.Setenv("RATELIMIT_WINDOW", "-1s")
		t.Setenv("RATELIMIT_CLEANUP_INTERVAL", "0s")
		t.Setenv("RATELIMIT_TRUST_PROXY", "maybe")

		cfg := DefaultRateLimitConfig()
		ApplyRateLimitEnv(&cfg)
		assert.Equal(t, DefaultRateLimitConfig(), cfg)
	})
}
