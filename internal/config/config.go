// Package config loads and validates pipeline configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all pipeline configuration knobs loaded via Viper.
type Config struct {
	API       APIConfig       `mapstructure:"api"`
	Congress  CongressConfig  `mapstructure:"congress"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// APIConfig describes the govinfo bulk-data API.
type APIConfig struct {
	// Key is the api.data.gov API key, sent as X-Api-Key when set.
	Key string `mapstructure:"key"`
	// BulkEndpoint is a format string taking the congress number.
	BulkEndpoint string `mapstructure:"bulk_endpoint"`
	UserAgent    string `mapstructure:"user_agent"`
}

// CongressConfig bounds the congress sessions to fetch, inclusive.
type CongressConfig struct {
	Start int `mapstructure:"start"`
	End   int `mapstructure:"end"`
}

// RateLimitConfig caps upstream calls per rolling window.
type RateLimitConfig struct {
	Calls         int `mapstructure:"calls"`
	WindowSeconds int `mapstructure:"window_seconds"`
}

// HTTPConfig configures HTTP client timeout and retry behavior.
type HTTPConfig struct {
	TimeoutSeconds   int `mapstructure:"timeout_seconds"`
	MaxRetries       int `mapstructure:"max_retries"`
	BackoffInitialMs int `mapstructure:"backoff_initial_ms"`
	BackoffMaxMs     int `mapstructure:"backoff_max_ms"`
}

// CacheConfig sets the per-stage artifact directories.
type CacheConfig struct {
	BulkDir       string `mapstructure:"bulk_dir"`
	IndividualDir string `mapstructure:"individual_dir"`
	ProcessedDir  string `mapstructure:"processed_dir"`
}

// MetricsConfig controls the optional Prometheus endpoint.
type MetricsConfig struct {
	// Listen is an address like ":9090"; empty disables the endpoint.
	Listen string `mapstructure:"listen"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PLAWFETCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The original api.data.gov key variable keeps working.
	_ = v.BindEnv("api.key", "PLAWFETCH_API_KEY", "DATAGOV_API_KEY")

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.bulk_endpoint", "https://www.govinfo.gov/bulkdata/json/PLAW/%d/public")
	v.SetDefault("api.user_agent", "plawfetch/0.1 (+https://github.com/lawcorpus/plawfetch)")
	v.SetDefault("congress.start", 113)
	v.SetDefault("congress.end", 118)
	v.SetDefault("rate_limit.calls", 1000)
	v.SetDefault("rate_limit.window_seconds", 3600)
	v.SetDefault("http.timeout_seconds", 30)
	v.SetDefault("http.max_retries", 2)
	v.SetDefault("http.backoff_initial_ms", 250)
	v.SetDefault("http.backoff_max_ms", 2000)
	v.SetDefault("cache.bulk_dir", "data/raw/bulk")
	v.SetDefault("cache.individual_dir", "data/raw/individual")
	v.SetDefault("cache.processed_dir", "data/processed")
	v.SetDefault("metrics.listen", "")
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if !strings.Contains(c.API.BulkEndpoint, "%d") {
		return fmt.Errorf("api.bulk_endpoint must contain a %%d congress placeholder")
	}
	if c.Congress.Start <= 0 {
		return fmt.Errorf("congress.start must be > 0")
	}
	if c.Congress.End < c.Congress.Start {
		return fmt.Errorf("congress.end must be >= congress.start")
	}
	if c.RateLimit.Calls <= 0 {
		return fmt.Errorf("rate_limit.calls must be > 0")
	}
	if c.RateLimit.WindowSeconds <= 0 {
		return fmt.Errorf("rate_limit.window_seconds must be > 0")
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	for _, dir := range []string{c.Cache.BulkDir, c.Cache.IndividualDir, c.Cache.ProcessedDir} {
		if strings.TrimSpace(dir) == "" {
			return fmt.Errorf("cache directories must be set")
		}
	}
	return nil
}

// RateWindow converts the configured window into a duration.
func (c Config) RateWindow() time.Duration {
	return time.Duration(c.RateLimit.WindowSeconds) * time.Second
}

// HTTPTimeout converts the configured timeout into a duration.
func (c Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}

// BackoffInitial converts the initial retry backoff into a duration.
func (c Config) BackoffInitial() time.Duration {
	return time.Duration(c.HTTP.BackoffInitialMs) * time.Millisecond
}

// BackoffMax converts the maximum retry backoff into a duration.
func (c Config) BackoffMax() time.Duration {
	return time.Duration(c.HTTP.BackoffMaxMs) * time.Millisecond
}
