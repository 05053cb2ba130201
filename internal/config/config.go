package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Search    SearchConfig    `yaml:"search"`
	Editor    EditorConfig    `yaml:"editor"`
	Upstream  UpstreamConfig  `yaml:"upstream"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Logging   LoggingConfig   `yaml:"logging"`
	Timezone  string          `yaml:"timezone"`
}

// DatabaseConfig contains database settings
type DatabaseConfig struct {
	Type     string         `yaml:"type"`
	MySQL    MySQLConfig    `yaml:"mysql"`
	Postgres PostgresConfig `yaml:"postgres"`
}

// MySQLConfig contains MySQL connection settings
type MySQLConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// PostgresConfig contains PostgreSQL connection settings
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
}

// SearchConfig contains search engine settings
type SearchConfig struct {
	Meilisearch MeilisearchConfig `yaml:"meilisearch"`
}

// MeilisearchConfig contains Meilisearch connection settings
type MeilisearchConfig struct {
	Host   string `yaml:"host"`
	APIKey string `yaml:"api_key"`
}

// EditorConfig contains editor session settings
type EditorConfig struct {
	AssetBaseURL          string `yaml:"asset_base_url"`
	PlaceholderAsset      string `yaml:"placeholder_asset"`
	SessionTTLMinutes     int    `yaml:"session_ttl_minutes"`
	MaxUploadSizeMB       int    `yaml:"max_upload_size_mb"`
	PreviewDir            string `yaml:"preview_dir"`
	ShowAdvancedByDefault bool   `yaml:"show_advanced_by_default"`
}

// UpstreamConfig selects and configures the record backend. Mode "local"
// persists listings in this service's own database; mode "remote" forwards
// saves to an external listings API.
type UpstreamConfig struct {
	Mode              string `yaml:"mode"`
	BaseURL           string `yaml:"base_url"`
	TimeoutSeconds    int    `yaml:"timeout_seconds"`
	MaxRetries        int    `yaml:"max_retries"`
	RetryDelaySeconds int    `yaml:"retry_delay_seconds"`
}

// SchedulerConfig contains background job settings
type SchedulerConfig struct {
	Enabled              bool   `yaml:"enabled"`
	SweepIntervalMinutes int    `yaml:"sweep_interval_minutes"`
	FullReindexTime      string `yaml:"full_reindex_time"`
}

// RateLimitConfig contains rate limiting settings for save/upload endpoints
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requests_per_minute"`
	RequestsPerHour   int  `yaml:"requests_per_hour"`
	RequestsPerDay    int  `yaml:"requests_per_day"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level       string `yaml:"level"`
	LogRequests bool   `yaml:"log_requests"`
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Editor: EditorConfig{
			AssetBaseURL:      "https://assets.listing-portal.local",
			PlaceholderAsset:  "/static/placeholder-property.webp",
			SessionTTLMinutes: 60,
			MaxUploadSizeMB:   25,
		},
		Upstream: UpstreamConfig{
			Mode:              "local",
			TimeoutSeconds:    30,
			MaxRetries:        3,
			RetryDelaySeconds: 2,
		},
		Scheduler: SchedulerConfig{
			Enabled:              true,
			SweepIntervalMinutes: 5,
			FullReindexTime:      "03:00",
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerMinute: 30,
			RequestsPerHour:   600,
			RequestsPerDay:    5000,
		},
		Logging: LoggingConfig{
			Level:       "info",
			LogRequests: true,
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(filepath string) (*Config, error) {
	// Start with default config
	config := DefaultConfig()

	// If file doesn't exist, return default config
	if _, err := os.Stat(filepath); os.IsNotExist(err) {
		return config, nil
	}

	// Read file
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse YAML
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SessionTTL returns the idle session expiry as a duration
func (c *EditorConfig) SessionTTL() time.Duration {
	if c.SessionTTLMinutes <= 0 {
		return 60 * time.Minute
	}
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}

// MaxUploadSize returns the upload cap in bytes
func (c *EditorConfig) MaxUploadSize() int64 {
	if c.MaxUploadSizeMB <= 0 {
		return 25 << 20
	}
	return int64(c.MaxUploadSizeMB) << 20
}

// GetTimeout returns the upstream request timeout as a duration
func (c *UpstreamConfig) GetTimeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// GetRetryDelay returns the upstream retry delay as a duration
func (c *UpstreamConfig) GetRetryDelay() time.Duration {
	return time.Duration(c.RetryDelaySeconds) * time.Second
}
