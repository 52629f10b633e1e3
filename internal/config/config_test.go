package config

import (
	"testing"
	"time"
)

func TestValidate_ReportsMissingRequired(t *testing.T) {
	c := Config{}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestValidate_RejectsBadURLs(t *testing.T) {
	c := Config{
		App:      AppConfig{Env: "local", Port: 8080},
		Platform: PlatformConfig{BaseURL: "not-a-url"},
		Webhook:  WebhookConfig{URL: "https://hooks.example.com/remove"},
		Redis:    RedisConfig{Host: "localhost", Port: 6379},
	}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for malformed platform URL")
	}
}

func TestValidate_AppliesDurationDefaults(t *testing.T) {
	c := Config{
		App:      AppConfig{Env: "local", Port: 8080},
		Platform: PlatformConfig{BaseURL: "https://api.example.com"},
		Webhook:  WebhookConfig{URL: "https://hooks.example.com/remove"},
		Redis:    RedisConfig{Host: "localhost", Port: 6379},
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.Refresh.BalanceInterval != 50*time.Second {
		t.Fatalf("expected default balance interval, got %v", c.Refresh.BalanceInterval)
	}
	if c.Refresh.MonthlyInterval != time.Minute {
		t.Fatalf("expected default monthly interval, got %v", c.Refresh.MonthlyInterval)
	}
	if c.Bulk.Delay != 100*time.Millisecond {
		t.Fatalf("expected default bulk delay, got %v", c.Bulk.Delay)
	}
}

func setValidEnv(t *testing.T) {
	t.Helper()
	t.Setenv("APP_ENV", "local")
	t.Setenv("APP_PORT", "8080")
	t.Setenv("PLATFORM_API_URL", "https://api.example.com")
	t.Setenv("REMOVAL_WEBHOOK_URL", "https://hooks.example.com/remove")
	t.Setenv("REDIS_HOST", "localhost")
	t.Setenv("REDIS_PORT", "6379")
	for _, key := range []string{
		"PLATFORM_API_TIMEOUT", "REMOVAL_WEBHOOK_TIMEOUT", "REDIS_CACHE_TTL",
		"BALANCE_REFRESH_INTERVAL", "MONTHLY_CHECK_INTERVAL", "BULK_REQUEST_DELAY",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_RejectsMalformedDuration(t *testing.T) {
	setValidEnv(t)
	t.Setenv("BULK_REQUEST_DELAY", "fast")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for malformed BULK_REQUEST_DELAY")
	}
}

func TestLoad_UnsetDurationUsesDefault(t *testing.T) {
	setValidEnv(t)

	c, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.Platform.Timeout != 15*time.Second {
		t.Fatalf("expected default platform timeout, got %v", c.Platform.Timeout)
	}
}

func TestHTTPAndRedisAddrs(t *testing.T) {
	c := Config{
		App:   AppConfig{Port: 9090},
		Redis: RedisConfig{Host: "cache", Port: 6379},
	}
	if got := c.HTTPAddr(); got != ":9090" {
		t.Fatalf("unexpected http addr %q", got)
	}
	if got := c.RedisAddr(); got != "cache:6379" {
		t.Fatalf("unexpected redis addr %q", got)
	}
}
