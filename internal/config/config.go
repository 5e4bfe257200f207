package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultBaseURL = "http://localhost:6543"

type Config struct {
	App        AppConfig        `yaml:"app"`
	API        APIConfig        `yaml:"api"`
	Auth       AuthConfig       `yaml:"auth"`
	Redis      RedisConfig      `yaml:"redis"`
	Cache      CacheConfig      `yaml:"cache"`
	Refresh    RefreshConfig    `yaml:"refresh"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
	Exports    ExportConfig     `yaml:"exports"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

// APIConfig points the client at the RuangPulih backend.
type APIConfig struct {
	BaseURL        string             `yaml:"base_url"`
	TimeoutSeconds int                `yaml:"timeout_seconds"`
	UserAgent      string             `yaml:"user_agent"`
	RateLimit      APIRateLimitConfig `yaml:"rate_limit"`
}

type APIRateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// AuthConfig holds the credentials the CLI logs in with.
type AuthConfig struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type CacheConfig struct {
	Enabled    bool `yaml:"enabled"`
	TTLSeconds int  `yaml:"ttl_seconds"`
}

type RefreshConfig struct {
	Enabled             bool    `yaml:"enabled"`
	MaxRetries          int     `yaml:"max_retries"`
	InitialDelayMillis  int     `yaml:"initial_delay_ms"`
	MaxDelaySeconds     int     `yaml:"max_delay_seconds"`
	BackoffFactor       float64 `yaml:"backoff_factor"`
	QueueSize           int     `yaml:"queue_size"`
	PollIntervalSeconds int     `yaml:"poll_interval_seconds"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type ExportConfig struct {
	Path string `yaml:"path"`
}

// Load reads a YAML config, expanding ${VAR} references from the
// environment and an optional .env file.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// Default returns a config with every default applied, for callers that
// run without a config file.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) Validate() error {
	if err := ValidateBaseURL(c.API.BaseURL); err != nil {
		return err
	}
	if c.API.TimeoutSeconds < 0 {
		return errors.New("api.timeout_seconds must not be negative")
	}
	if c.API.RateLimit.RPS < 0 {
		return errors.New("api.rate_limit.rps must not be negative")
	}
	if c.Cache.TTLSeconds < 0 {
		return errors.New("cache.ttl_seconds must not be negative")
	}
	if c.Refresh.MaxRetries < 0 {
		return errors.New("refresh.max_retries must not be negative")
	}
	if c.Monitoring.PrometheusEnabled && (c.Monitoring.PrometheusPort <= 0 || c.Monitoring.PrometheusPort > 65535) {
		return fmt.Errorf("monitoring.prometheus_port out of range: %d", c.Monitoring.PrometheusPort)
	}
	return nil
}

// ValidateBaseURL requires an absolute http(s) URL.
func ValidateBaseURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return errors.New("api.base_url is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("api.base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api.base_url must use http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("api.base_url has no host: %q", raw)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "ruangpulih"
	}
	if c.API.BaseURL == "" {
		c.API.BaseURL = DefaultBaseURL
	}
	c.API.BaseURL = strings.TrimRight(c.API.BaseURL, "/")
	if c.API.TimeoutSeconds == 0 {
		c.API.TimeoutSeconds = 10
	}
	if c.API.UserAgent == "" {
		c.API.UserAgent = "ruangpulih-client"
	}
	if c.API.RateLimit.RPS > 0 && c.API.RateLimit.Burst <= 0 {
		c.API.RateLimit.Burst = 5
	}

	if c.Cache.Enabled && c.Cache.TTLSeconds == 0 {
		c.Cache.TTLSeconds = 60
	}

	if c.Refresh.MaxRetries == 0 {
		c.Refresh.MaxRetries = 3
	}
	if c.Refresh.InitialDelayMillis == 0 {
		c.Refresh.InitialDelayMillis = 500
	}
	if c.Refresh.MaxDelaySeconds == 0 {
		c.Refresh.MaxDelaySeconds = 30
	}
	if c.Refresh.BackoffFactor == 0 {
		c.Refresh.BackoffFactor = 2
	}
	if c.Refresh.QueueSize == 0 {
		c.Refresh.QueueSize = 64
	}
	if c.Refresh.PollIntervalSeconds == 0 {
		c.Refresh.PollIntervalSeconds = 30
	}

	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.Exports.Path == "" {
		c.Exports.Path = "exports"
	}
}
