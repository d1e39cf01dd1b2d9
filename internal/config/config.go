package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	defaultBackendTimeout  = 15 * time.Second
	defaultSessionTTL      = 24 * 30 * time.Hour
	defaultSummaryCacheMB  = 8
	defaultCompanionPrefix = "volume-tracker"
)

type Config struct {
	Environment string `toml:"-"`

	Host string `toml:"host"`
	Port int    `toml:"port"`

	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	SentryEnabled bool   `toml:"sentry_enabled"`

	// backend REST API (/get, /post, /claude)
	BackendBaseURL string   `toml:"backend_base_url"`
	BackendTimeout Duration `toml:"backend_timeout"`

	// redis: sessions, rate limiting and the companion sync channel
	RedisHost string `toml:"redis_host"`
	RedisPort string `toml:"redis_port"`

	// companion sync channel
	CompanionPrefix string `toml:"companion_prefix"`

	SessionTTL                  Duration `toml:"session_ttl"`
	SummaryCacheSizeMB          int      `toml:"summary_cache_size_mb"`
	LoginRateLimitAllowedPerMin int      `toml:"login_rate_limit_allowed_per_min"`
	PlanRateLimitAllowedPerMin  int      `toml:"plan_rate_limit_allowed_per_min"`

	AllowedOrigins []string `toml:"allowed_origins"`

	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`
}

// Duration lets TOML values like "15s" decode into time.Duration.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", text, err)
	}
	d.Duration = parsed
	return nil
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	var cfg *Config
	switch strings.ToLower(env) {
	case "dev", "development":
		cfg = t.Development
	case "prod", "production":
		cfg = t.Production
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
	if cfg == nil {
		return nil, fmt.Errorf("config for env [%s] missing", env)
	}
	cfg.Environment = strings.ToLower(env)
	return cfg, nil
}

// Load reads the TOML file at path and returns the config section for env,
// with defaults applied for the optional values.
func Load(env, path string) (*Config, error) {
	var t Toml
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode toml config [%s]: %w", path, err)
	}

	cfg, err := t.Get(env)
	if err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.BackendTimeout.Duration <= 0 {
		c.BackendTimeout.Duration = defaultBackendTimeout
	}
	if c.SessionTTL.Duration <= 0 {
		c.SessionTTL.Duration = defaultSessionTTL
	}
	if c.SummaryCacheSizeMB <= 0 {
		c.SummaryCacheSizeMB = defaultSummaryCacheMB
	}
	if c.CompanionPrefix == "" {
		c.CompanionPrefix = defaultCompanionPrefix
	}
	if c.LoginRateLimitAllowedPerMin <= 0 {
		c.LoginRateLimitAllowedPerMin = 15
	}
	if c.PlanRateLimitAllowedPerMin <= 0 {
		c.PlanRateLimitAllowedPerMin = 5
	}
}

func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.BackendBaseURL == "" {
		return fmt.Errorf("backend_base_url not set")
	}
	if c.RedisHost == "" || c.RedisPort == "" {
		return fmt.Errorf("redis host/port not set")
	}
	return nil
}
