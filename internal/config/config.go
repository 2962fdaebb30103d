// Package config assembles the root configuration for the Themis pipeline
// from config.toml, an optional per-environment overlay, and THEMIS_*
// environment variables. Precedence is base file, then overlay, then env.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/gregorizeidler-cw/themis-law-suits/internal/batch"
	"github.com/gregorizeidler-cw/themis-law-suits/internal/classify"
	"github.com/gregorizeidler-cw/themis-law-suits/internal/completion"
	"github.com/gregorizeidler-cw/themis-law-suits/internal/lawsuits"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvThemisEnv = "THEMIS_ENV"

	EnvMode       = "THEMIS_MODE"
	EnvWorkers    = "THEMIS_WORKERS"
	EnvDelay      = "THEMIS_DELAY"
	EnvMaxRetries = "THEMIS_MAX_RETRIES"
)

var lawsuitsEnv = &lawsuits.Env{
	BaseURL:   "THEMIS_PROVIDER_BASE_URL",
	TokenID:   "THEMIS_PROVIDER_TOKEN_ID",
	TokenHash: "THEMIS_PROVIDER_TOKEN_HASH",
	Timeout:   "THEMIS_PROVIDER_TIMEOUT",
}

var completionEnv = &completion.Env{
	BaseURL:     "THEMIS_OPENAI_BASE_URL",
	APIKey:      "OPENAI_API_KEY",
	Model:       "THEMIS_OPENAI_MODEL",
	Temperature: "THEMIS_OPENAI_TEMPERATURE",
	MaxTokens:   "THEMIS_OPENAI_MAX_TOKENS",
	Timeout:     "THEMIS_OPENAI_TIMEOUT",
}

var batchEnv = &batch.Env{
	Mode:       EnvMode,
	Workers:    EnvWorkers,
	Delay:      EnvDelay,
	MaxRetries: EnvMaxRetries,
}

// Config is the root configuration for the Themis pipeline.
type Config struct {
	Provider   lawsuits.Config   `toml:"provider"`
	Completion completion.Config `toml:"completion"`
	Batch      batch.Config      `toml:"batch"`
}

// Env returns the THEMIS_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvThemisEnv); env != "" {
		return env
	}
	return "local"
}

// Load reads the base config (if present), applies any environment overlay,
// then any overrides, and finalizes all values. If no config.toml exists,
// defaults and environment variables provide all configuration. Overrides run
// before validation so command-line flags participate in mode-dependent
// defaults. Completion credentials are only validated when the semantic
// variant is configured.
func Load(overrides ...func(*Config)) (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	for _, override := range overrides {
		override(cfg)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	c.Provider.Merge(&overlay.Provider)
	c.Completion.Merge(&overlay.Completion)
	c.Batch.Merge(&overlay.Batch)
}

func (c *Config) finalize() error {
	if err := c.Batch.Finalize(batchEnv); err != nil {
		return err
	}
	if err := c.Provider.Finalize(lawsuitsEnv); err != nil {
		return fmt.Errorf("provider: %w", err)
	}

	// Pattern runs never touch the completion service, so a missing API key
	// must not block them.
	if c.Batch.Variant() == classify.VariantSemantic {
		if err := c.Completion.Finalize(completionEnv); err != nil {
			return fmt.Errorf("completion: %w", err)
		}
	}

	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvThemisEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
