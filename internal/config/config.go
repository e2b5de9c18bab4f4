package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileName is the config file inside a data directory.
const FileName = "cardspend.yaml"

// Backend kinds.
const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
)

// Config represents the top-level cardspend.yaml configuration.
type Config struct {
	Backend  BackendConfig  `yaml:"backend"`
	Log      LogConfig      `yaml:"log"`
	Git      GitConfig      `yaml:"git"`
	Postgres PostgresConfig `yaml:"postgres,omitempty"`
}

// BackendConfig selects where cards, categories and transactions live.
type BackendConfig struct {
	Kind string `yaml:"kind"` // "file" or "postgres"
}

// PostgresConfig holds the postgres backend connection.
type PostgresConfig struct {
	URL         string `yaml:"url,omitempty"`
	MaxPoolSize int    `yaml:"max_pool_size,omitempty"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// GitConfig controls git history of the data directory.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Load reads a cardspend.yaml file from disk. Missing keys keep their
// Default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
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

// Validate checks the backend selection.
func (c *Config) Validate() error {
	switch c.Backend.Kind {
	case BackendFile:
		return nil
	case BackendPostgres:
		if c.Postgres.URL == "" {
			return fmt.Errorf("invalid config: postgres backend needs postgres.url")
		}
		return nil
	default:
		return fmt.Errorf("invalid config: unknown backend %q", c.Backend.Kind)
	}
}

// Default returns a Config with sensible defaults for a new data directory.
func Default() *Config {
	return &Config{
		Backend: BackendConfig{Kind: BackendFile},
		Log:     LogConfig{Level: "info"},
		Git: GitConfig{
			AutoCommit:  true,
			AuthorName:  "Cardspend",
			AuthorEmail: "cardspend@localhost",
		},
	}
}
