package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

var defaultClientConfigPaths = []string{
	"./dashctl.yaml",
	"/etc/reportdash/dashctl.yaml",
}

// ClientConfig drives the dashctl front-end.
type ClientConfig struct {
	BaseURL        string        `yaml:"base_url"`
	AdminToken     string        `yaml:"admin_token"`
	LogPath        string        `yaml:"log_path"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	PollInterval   time.Duration `yaml:"poll_interval"`
	// MaxTransportRetries and MaxWait use 0 for the default and a negative
	// value to switch the safeguard off.
	MaxTransportRetries int           `yaml:"max_transport_retries"`
	MaxWait             time.Duration `yaml:"max_wait"`
}

// DefaultClientConfig mirrors the behaviour of the dashboard page script.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		BaseURL:             "http://localhost:8080",
		RequestTimeout:      30 * time.Second,
		PollInterval:        time.Second,
		MaxTransportRetries: 5,
		MaxWait:             30 * time.Minute,
	}
}

// LoadClient reads path, or the first default path that exists. A missing
// file is not an error when no explicit path was given.
func LoadClient(path string) (*ClientConfig, error) {
	cfg := DefaultClientConfig()

	configPath := path
	if configPath == "" {
		for _, p := range defaultClientConfigPaths {
			if _, err := os.Stat(p); err == nil {
				configPath = p
				break
			}
		}
	}

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *ClientConfig) applyDefaults() {
	def := DefaultClientConfig()
	if c.BaseURL == "" {
		c.BaseURL = def.BaseURL
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = def.RequestTimeout
	}
	if c.PollInterval == 0 {
		c.PollInterval = def.PollInterval
	}
	if c.MaxTransportRetries == 0 {
		c.MaxTransportRetries = def.MaxTransportRetries
	}
	if c.MaxWait == 0 {
		c.MaxWait = def.MaxWait
	}
}

func (c *ClientConfig) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base_url is required")
	}
	if c.PollInterval < 0 {
		return fmt.Errorf("poll_interval must not be negative")
	}
	return nil
}
