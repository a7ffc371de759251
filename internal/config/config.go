// Package config loads the grantmaster configuration file and fills in the
// secrets that only live in the environment.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"grantmaster/internal/store"
)

// Environment variables consulted for secrets; the config file never holds
// them.
const (
	EnvOpenAIKey      = "OPENAI_API_KEY"
	EnvPortalPassword = "GRANTMASTER_PASSWORD"
)

// Config is the persistent grantmaster configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Portal   PortalConfig   `yaml:"portal"`
	LLM      LLMConfig      `yaml:"llm"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type PortalConfig struct {
	URL      string `yaml:"url"`
	Username string `yaml:"username"`
	// Password comes from GRANTMASTER_PASSWORD, never from the file.
	Password string `yaml:"-"`
}

type LLMConfig struct {
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url,omitempty"`
	// APIKey comes from OPENAI_API_KEY, never from the file.
	APIKey string `yaml:"-"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{Path: store.DefaultDBPath},
		LLM:      LLMConfig{Model: "gpt-4o"},
		Logging:  LoggingConfig{Level: "info", Format: "text"},
	}
}

// Load reads a YAML config file, layers it over the defaults, and pulls
// secrets from the environment. A missing file is not an error; path "" skips
// the file entirely.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// fall through to defaults
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if cfg.Database.Path == "" {
		cfg.Database.Path = store.DefaultDBPath
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "gpt-4o"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}

	cfg.LLM.APIKey = os.Getenv(EnvOpenAIKey)
	cfg.Portal.Password = os.Getenv(EnvPortalPassword)
	return cfg, nil
}
