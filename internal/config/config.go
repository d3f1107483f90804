package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config represents the entire application configuration
type Config struct {
	Download DownloadConfig `mapstructure:"download"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	History  HistoryConfig  `mapstructure:"history"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// DownloadConfig contains transfer engine settings
type DownloadConfig struct {
	BufferSizeKB        int    `mapstructure:"buffer_size_kb"`
	ChunkSizeMB         int    `mapstructure:"chunk_size_mb"`
	MaxAttempts         int    `mapstructure:"max_attempts"`
	RetryBackoff        string `mapstructure:"retry_backoff"`
	RetryMaxBackoff     string `mapstructure:"retry_max_backoff"`
	ProgressLogInterval string `mapstructure:"progress_log_interval"`
}

// HTTPConfig contains HTTP client settings
type HTTPConfig struct {
	RequestTimeout string `mapstructure:"request_timeout"`
	UserAgent      string `mapstructure:"user_agent"`
}

// HistoryConfig contains download history settings
type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load loads configuration from the specified file path. An empty path
// loads defaults only.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("download.buffer_size_kb", 64)
	v.SetDefault("download.chunk_size_mb", 4)
	v.SetDefault("download.max_attempts", 3)
	v.SetDefault("download.retry_backoff", "1s")
	v.SetDefault("download.retry_max_backoff", "30s")
	v.SetDefault("download.progress_log_interval", "1s")
	v.SetDefault("http.request_timeout", "0s")
	v.SetDefault("http.user_agent", "httpfetch")
	v.SetDefault("history.enabled", false)
	v.SetDefault("history.path", "")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Download.BufferSizeKB <= 0 {
		return fmt.Errorf("download.buffer_size_kb must be positive")
	}
	if c.Download.ChunkSizeMB <= 0 {
		return fmt.Errorf("download.chunk_size_mb must be positive")
	}
	if c.Download.MaxAttempts < 1 {
		return fmt.Errorf("download.max_attempts must be at least 1")
	}
	if _, err := time.ParseDuration(c.Download.RetryBackoff); err != nil {
		return fmt.Errorf("invalid download.retry_backoff: %w", err)
	}
	if _, err := time.ParseDuration(c.Download.RetryMaxBackoff); err != nil {
		return fmt.Errorf("invalid download.retry_max_backoff: %w", err)
	}
	if _, err := time.ParseDuration(c.HTTP.RequestTimeout); err != nil {
		return fmt.Errorf("invalid http.request_timeout: %w", err)
	}

	if c.History.Enabled && c.History.Path == "" {
		return fmt.Errorf("history.path is required when history is enabled")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging.level: %s", c.Logging.Level)
	}

	switch c.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("invalid logging.format: %s", c.Logging.Format)
	}

	return nil
}

// GetBufferSize returns the transfer buffer size in bytes
func (c *DownloadConfig) GetBufferSize() int {
	if c.BufferSizeKB <= 0 {
		return 64 * 1024
	}
	return c.BufferSizeKB * 1024
}

// GetChunkSize returns the range chunk size in bytes
func (c *DownloadConfig) GetChunkSize() int64 {
	if c.ChunkSizeMB <= 0 {
		return 4 * 1024 * 1024
	}
	return int64(c.ChunkSizeMB) * 1024 * 1024
}

// GetRetryBackoff returns the initial retry backoff as time.Duration
func (c *DownloadConfig) GetRetryBackoff() time.Duration {
	d, _ := time.ParseDuration(c.RetryBackoff)
	if d == 0 {
		return time.Second
	}
	return d
}

// GetRetryMaxBackoff returns the maximum retry backoff as time.Duration
func (c *DownloadConfig) GetRetryMaxBackoff() time.Duration {
	d, _ := time.ParseDuration(c.RetryMaxBackoff)
	if d == 0 {
		return 30 * time.Second
	}
	return d
}

// GetProgressLogInterval returns the progress log throttle interval
func (c *DownloadConfig) GetProgressLogInterval() time.Duration {
	d, _ := time.ParseDuration(c.ProgressLogInterval)
	if d == 0 {
		return time.Second
	}
	return d
}

// GetRequestTimeout returns the per-request timeout as time.Duration.
// Zero means no timeout; large transfers are bounded by cancellation
// at the caller instead.
func (c *HTTPConfig) GetRequestTimeout() time.Duration {
	d, _ := time.ParseDuration(c.RequestTimeout)
	return d
}
