package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config defines configuration for the pixget CLI.
type Config struct {
	// Bucket is the destination bucket URL. Empty means local disk next to
	// the executable.
	Bucket string `yaml:"bucket"`

	// Workers is the number of parallel download workers.
	Workers int `yaml:"workers"`

	// MaxRetries is the per-URL retry budget for failed transfers.
	MaxRetries int `yaml:"max_retries"`

	// Timeout applies to individual API and image requests.
	Timeout time.Duration `yaml:"timeout"`

	// PageSize is how many works to request per API page.
	PageSize int `yaml:"page_size"`

	// APIBase overrides the pixiv API endpoint, mainly for tests against a
	// local stand-in.
	APIBase string `yaml:"api_base"`

	Auth AuthConfig `yaml:"auth"`
}

// AuthConfig defines pixiv credentials. AccessToken, when set, skips the
// password login entirely.
type AuthConfig struct {
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	AccessToken string `yaml:"access_token"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Workers:    10,
		MaxRetries: 5,
		Timeout:    10 * time.Second,
		PageSize:   100,
	}
}

// yamlConfig is used for YAML unmarshaling with string durations.
type yamlConfig struct {
	Bucket     string     `yaml:"bucket"`
	Workers    int        `yaml:"workers"`
	MaxRetries int        `yaml:"max_retries"`
	Timeout    string     `yaml:"timeout"`
	PageSize   int        `yaml:"page_size"`
	APIBase    string     `yaml:"api_base"`
	Auth       AuthConfig `yaml:"auth"`
}

// LoadFromFile loads configuration from a YAML file.
func LoadFromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return Config{}, fmt.Errorf("parse config file: %w", err)
	}

	cfg := Default()

	if yc.Bucket != "" {
		cfg.Bucket = yc.Bucket
	}
	if yc.Workers != 0 {
		cfg.Workers = yc.Workers
	}
	if yc.MaxRetries != 0 {
		cfg.MaxRetries = yc.MaxRetries
	}
	if yc.Timeout != "" {
		d, err := time.ParseDuration(yc.Timeout)
		if err != nil {
			return Config{}, fmt.Errorf("parse timeout: %w", err)
		}
		cfg.Timeout = d
	}
	if yc.PageSize != 0 {
		cfg.PageSize = yc.PageSize
	}
	cfg.APIBase = yc.APIBase
	cfg.Auth = yc.Auth

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables use the PIXGET_ prefix.
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv("PIXGET_BUCKET"); v != "" {
		c.Bucket = v
	}
	if v := os.Getenv("PIXGET_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse PIXGET_WORKERS: %w", err)
		}
		c.Workers = n
	}
	if v := os.Getenv("PIXGET_MAX_RETRIES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse PIXGET_MAX_RETRIES: %w", err)
		}
		c.MaxRetries = n
	}
	if v := os.Getenv("PIXGET_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse PIXGET_TIMEOUT: %w", err)
		}
		c.Timeout = d
	}
	if v := os.Getenv("PIXGET_PAGE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse PIXGET_PAGE_SIZE: %w", err)
		}
		c.PageSize = n
	}
	if v := os.Getenv("PIXGET_API_BASE"); v != "" {
		c.APIBase = v
	}
	if v := os.Getenv("PIXGET_USERNAME"); v != "" {
		c.Auth.Username = v
	}
	if v := os.Getenv("PIXGET_PASSWORD"); v != "" {
		c.Auth.Password = v
	}
	if v := os.Getenv("PIXGET_ACCESS_TOKEN"); v != "" {
		c.Auth.AccessToken = v
	}

	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Workers <= 0 {
		return errors.New("config: workers must be positive")
	}
	if c.MaxRetries <= 0 {
		return errors.New("config: max_retries must be positive")
	}
	if c.Timeout <= 0 {
		return errors.New("config: timeout must be positive")
	}
	if c.PageSize <= 0 {
		return errors.New("config: page_size must be positive")
	}
	if c.Auth.AccessToken == "" && (c.Auth.Username == "" || c.Auth.Password == "") {
		return errors.New("config: either auth.access_token or auth.username and auth.password are required")
	}
	return nil
}

// Merge merges override values into c, returning a new Config.
// Zero values in override are ignored.
func (c Config) Merge(override Config) Config {
	if override.Bucket != "" {
		c.Bucket = override.Bucket
	}
	if override.Workers != 0 {
		c.Workers = override.Workers
	}
	if override.MaxRetries != 0 {
		c.MaxRetries = override.MaxRetries
	}
	if override.Timeout != 0 {
		c.Timeout = override.Timeout
	}
	if override.PageSize != 0 {
		c.PageSize = override.PageSize
	}
	if override.APIBase != "" {
		c.APIBase = override.APIBase
	}
	if override.Auth.Username != "" {
		c.Auth.Username = override.Auth.Username
	}
	if override.Auth.Password != "" {
		c.Auth.Password = override.Auth.Password
	}
	if override.Auth.AccessToken != "" {
		c.Auth.AccessToken = override.Auth.AccessToken
	}
	return c
}
