// Package config handles reading and writing the user's config.yaml.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Store backends.
const (
	StoreJSON   = "json"
	StoreSQLite = "sqlite"
)

// Config holds the user's persistent preferences.
type Config struct {
	Provider    string  `yaml:"provider"`               // openai, anthropic, or any name with base_url set
	APIKey      string  `yaml:"api_key,omitempty"`      // falls back to the provider's env var
	Model       string  `yaml:"model,omitempty"`        // default model name
	BaseURL     string  `yaml:"base_url,omitempty"`     // override for OpenAI-compatible APIs
	SendHistory bool    `yaml:"send_history"`           // forward full history instead of the latest prompt
	MaxTokens   int     `yaml:"max_tokens,omitempty"`   // completion cap, 0 = provider default
	Temperature float32 `yaml:"temperature,omitempty"`  // 0 = provider default
	Store       string  `yaml:"store"`                  // json | sqlite
	DataDir     string  `yaml:"data_dir,omitempty"`     // where sessions and logs live
	Debug       bool    `yaml:"debug"`                  // verbose logging
}

const configFileName = "config.yaml"

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Provider: "openai",
		Store:    StoreJSON,
	}
}

// DefaultDir returns the per-user config/data directory.
func DefaultDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config dir: %w", err)
	}
	return filepath.Join(base, "evry"), nil
}

// Load reads the config from path. An empty path means the default
// location; a missing file yields defaults and no error. The data dir
// defaults to the config file's directory.
func Load(path string) (*Config, error) {
	if path == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(dir, configFileName)
	}

	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.Provider == "" {
		cfg.Provider = "openai"
	}
	if cfg.Store == "" {
		cfg.Store = StoreJSON
	}
	if cfg.DataDir == "" {
		cfg.DataDir = filepath.Dir(path)
	}
	return cfg, nil
}

// Save writes cfg to path, creating parent directories as needed. Key
// material gets owner-only permissions.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
