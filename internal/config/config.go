package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the top-level networth.yaml configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Provider ProviderConfig `yaml:"provider"`
	// BaseCurrency is the single currency all aggregate totals are
	// converted into.
	BaseCurrency string `yaml:"base_currency"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Listen string `yaml:"listen"`
}

// DatabaseConfig locates the SQLite database.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// ProviderConfig controls the market-data provider client.
type ProviderConfig struct {
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	Proxy          string `yaml:"proxy,omitempty"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Server:       ServerConfig{Listen: ":8090"},
		Database:     DatabaseConfig{Path: "networth.db"},
		Provider:     ProviderConfig{TimeoutSeconds: 10},
		BaseCurrency: "USD",
	}
}

// Load reads a networth.yaml file from disk, then applies environment
// variable overrides. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	if v := os.Getenv("NETWORTH_LISTEN"); v != "" {
		cfg.Server.Listen = v
	}
	if v := os.Getenv("NETWORTH_DB"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("NETWORTH_BASE_CURRENCY"); v != "" {
		cfg.BaseCurrency = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Validate checks the parts that would otherwise fail obscurely later.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path must not be empty")
	}
	if len(c.BaseCurrency) != 3 {
		return fmt.Errorf("base_currency %q must be a 3-letter code", c.BaseCurrency)
	}
	if c.Provider.TimeoutSeconds <= 0 {
		return fmt.Errorf("provider.timeout_seconds must be positive")
	}
	return nil
}
