package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration required by the dashboard API process.
// All values come from env (or an env-file loaded at startup).
// No business logic should depend on raw environment variables.
type Config struct {
	App      AppConfig
	Platform PlatformConfig
	Webhook  WebhookConfig
	Redis    RedisConfig
	Refresh  RefreshConfig
	Bulk     BulkConfig
}

type AppConfig struct {
	Env  string
	Port int
}

// PlatformConfig points at the external platform API that owns the
// call-log storage and the credits ledger.
type PlatformConfig struct {
	BaseURL string
	Timeout time.Duration
}

// WebhookConfig is the fixed external endpoint notified before a
// member removal.
type WebhookConfig struct {
	URL     string
	Timeout time.Duration
}

type RedisConfig struct {
	Host     string
	Port     int
	CacheTTL time.Duration
}

// RefreshConfig paces the two independent reconciliation timers.
type RefreshConfig struct {
	BalanceInterval time.Duration
	MonthlyInterval time.Duration
}

// BulkConfig paces sequential bulk ledger requests.
type BulkConfig struct {
	Delay time.Duration
}

func Load() (Config, error) {
	c := Config{}
	var parseErrs []error

	c.App.Env = strings.TrimSpace(os.Getenv("APP_ENV"))
	{
		n, err := mustInt("APP_PORT")
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.App.Port = n
	}

	c.Platform.BaseURL = strings.TrimSpace(os.Getenv("PLATFORM_API_URL"))
	{
		d, err := optDuration("PLATFORM_API_TIMEOUT")
		d, parseErrs = appendDurErr(parseErrs, d, err)
		c.Platform.Timeout = d
	}

	c.Webhook.URL = strings.TrimSpace(os.Getenv("REMOVAL_WEBHOOK_URL"))
	{
		d, err := optDuration("REMOVAL_WEBHOOK_TIMEOUT")
		d, parseErrs = appendDurErr(parseErrs, d, err)
		c.Webhook.Timeout = d
	}

	c.Redis.Host = strings.TrimSpace(os.Getenv("REDIS_HOST"))
	{
		n, err := mustInt("REDIS_PORT")
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.Redis.Port = n
	}
	{
		d, err := optDuration("REDIS_CACHE_TTL")
		d, parseErrs = appendDurErr(parseErrs, d, err)
		c.Redis.CacheTTL = d
	}

	{
		d, err := optDuration("BALANCE_REFRESH_INTERVAL")
		d, parseErrs = appendDurErr(parseErrs, d, err)
		c.Refresh.BalanceInterval = d
	}
	{
		d, err := optDuration("MONTHLY_CHECK_INTERVAL")
		d, parseErrs = appendDurErr(parseErrs, d, err)
		c.Refresh.MonthlyInterval = d
	}
	{
		d, err := optDuration("BULK_REQUEST_DELAY")
		d, parseErrs = appendDurErr(parseErrs, d, err)
		c.Bulk.Delay = d
	}

	if err := joinErrors(parseErrs); err != nil {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	var errs []error

	if c.App.Env == "" {
		errs = append(errs, errors.New("APP_ENV is required"))
	} else if !isValidEnv(c.App.Env) {
		errs = append(errs, fmt.Errorf("APP_ENV must be one of local, dev, staging, production, got %q", c.App.Env))
	}
	if c.App.Port <= 0 || c.App.Port > 65535 {
		errs = append(errs, fmt.Errorf("APP_PORT must be a valid port, got %d", c.App.Port))
	}

	if c.Platform.BaseURL == "" {
		errs = append(errs, errors.New("PLATFORM_API_URL is required"))
	} else if !isValidURL(c.Platform.BaseURL) {
		errs = append(errs, fmt.Errorf("PLATFORM_API_URL must be an absolute http(s) URL, got %q", c.Platform.BaseURL))
	}

	if c.Webhook.URL == "" {
		errs = append(errs, errors.New("REMOVAL_WEBHOOK_URL is required"))
	} else if !isValidURL(c.Webhook.URL) {
		errs = append(errs, fmt.Errorf("REMOVAL_WEBHOOK_URL must be an absolute http(s) URL, got %q", c.Webhook.URL))
	}

	if c.Redis.Host == "" {
		errs = append(errs, errors.New("REDIS_HOST is required"))
	}
	if c.Redis.Port <= 0 || c.Redis.Port > 65535 {
		errs = append(errs, fmt.Errorf("REDIS_PORT must be a valid port, got %d", c.Redis.Port))
	}

	// Optional durations fall back to the dashboard defaults.
	if c.Platform.Timeout <= 0 {
		c.Platform.Timeout = 15 * time.Second
	}
	if c.Webhook.Timeout <= 0 {
		c.Webhook.Timeout = 10 * time.Second
	}
	if c.Redis.CacheTTL <= 0 {
		c.Redis.CacheTTL = 2 * time.Minute
	}
	if c.Refresh.BalanceInterval <= 0 {
		c.Refresh.BalanceInterval = 50 * time.Second
	}
	if c.Refresh.MonthlyInterval <= 0 {
		c.Refresh.MonthlyInterval = time.Minute
	}
	if c.Bulk.Delay <= 0 {
		c.Bulk.Delay = 100 * time.Millisecond
	}

	return joinErrors(errs)
}

func (c Config) IsProduction() bool {
	return c.App.Env == "production"
}

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.App.Port)
}

func (c Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

func mustInt(key string) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	return n, nil
}

// optDuration reads an optional duration. An unset value decodes to
// zero so Validate can apply the default; a set but malformed value is
// a configuration error, not a silent fallback.
func optDuration(key string) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration like 30s or 2m, got %q", key, v)
	}
	return d, nil
}

func appendParseErr(errs []error, n int, err error) (int, []error) {
	if err != nil {
		errs = append(errs, err)
	}
	return n, errs
}

func appendDurErr(errs []error, d time.Duration, err error) (time.Duration, []error) {
	if err != nil {
		errs = append(errs, err)
	}
	return d, errs
}

func isValidEnv(v string) bool {
	switch v {
	case "local", "dev", "staging", "production":
		return true
	default:
		return false
	}
}

func isValidURL(v string) bool {
	u, err := url.Parse(v)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}
	var b strings.Builder
	b.WriteString("config errors:\n")
	for _, e := range errs {
		b.WriteString("- ")
		b.WriteString(e.Error())
		b.WriteString("\n")
	}
	return errors.New(strings.TrimSpace(b.String()))
}
