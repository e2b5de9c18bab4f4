package config

import (
	"fmt"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Env holds the environment variables that override cardspend.yaml.
type Env struct {
	// Backend overrides backend.kind.
	// Environment variable: CARDSPEND_BACKEND
	Backend string `koanf:"CARDSPEND_BACKEND"`

	// DatabaseURL overrides postgres.url.
	// Environment variable: CARDSPEND_DATABASE_URL
	DatabaseURL string `koanf:"CARDSPEND_DATABASE_URL"`

	// LogLevel overrides log.level.
	// Environment variable: CARDSPEND_LOG_LEVEL
	LogLevel string `koanf:"CARDSPEND_LOG_LEVEL"`
}

const envPrefix = "CARDSPEND_"

// LoadEnv reads CARDSPEND_* variables from the process environment.
func LoadEnv() (Env, error) {
	k := koanf.New(".")
	if err := k.Load(env.Provider(envPrefix, ".", nil), nil); err != nil {
		return Env{}, fmt.Errorf("loading environment: %w", err)
	}

	var e Env
	if err := k.UnmarshalWithConf("", &e, koanf.UnmarshalConf{Tag: "koanf", FlatPaths: true}); err != nil {
		return Env{}, fmt.Errorf("unmarshaling environment: %w", err)
	}
	return e, nil
}

// Apply overlays the non-empty environment values onto cfg.
func (e Env) Apply(cfg *Config) {
	if e.Backend != "" {
		cfg.Backend.Kind = e.Backend
	}
	if e.DatabaseURL != "" {
		cfg.Postgres.URL = e.DatabaseURL
	}
	if e.LogLevel != "" {
		cfg.Log.Level = e.LogLevel
	}
}

// Resolve loads path, overlays the environment and validates the result.
func Resolve(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	e, err := LoadEnv()
	if err != nil {
		return nil, err
	}
	e.Apply(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
