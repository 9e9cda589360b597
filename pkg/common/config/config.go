package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"
	"github.com/imdario/mergo"
)

var validate = validator.New()

// Config is the collaborator-facing configuration consumed by the CLI and by
// programs embedding the library. The library itself takes explicit
// parameters; nothing here is read implicitly.
type Config struct {
	Providers map[string]ProviderConfig `yaml:"providers" validate:"dive"`
	Defaults  ProviderConfig            `yaml:"defaults"`
	Harvest   HarvestConfig             `yaml:"harvest"`
	Telemetry TelemetryConfig           `yaml:"telemetry"`
	Cache     CacheConfig               `yaml:"cache"`
}

type ProviderConfig struct {
	APIKey string `yaml:"api_key"`
	RPS    int    `yaml:"rps" validate:"omitempty,min=1"`
	Burst  int    `yaml:"burst" validate:"omitempty,min=1"`
}

type HarvestConfig struct {
	MaxConcurrent int  `yaml:"max_concurrent" validate:"omitempty,min=1"`
	PageSize      int  `yaml:"page_size" validate:"omitempty,min=1"`
	Lenient       bool `yaml:"lenient"`
}

type TelemetryConfig struct {
	NATSURL       string `yaml:"nats_url" validate:"omitempty,url"`
	SubjectPrefix string `yaml:"subject_prefix"`
}

type CacheConfig struct {
	Directory  string `yaml:"directory"`
	TTLMinutes int    `yaml:"ttl_minutes" validate:"omitempty,min=1"`
}

// Load reads a YAML config, merges provider defaults and validates.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() error {
	for name, pc := range c.Providers {
		if err := mergo.Merge(&pc, c.Defaults); err != nil {
			return err
		}
		c.Providers[name] = pc
	}
	return nil
}

// Provider returns the effective settings for a provider, falling back to
// the defaults block for providers not listed.
func (c *Config) Provider(name string) ProviderConfig {
	if pc, ok := c.Providers[name]; ok {
		return pc
	}
	return c.Defaults
}
