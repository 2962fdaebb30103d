package lawsuits

import (
	"fmt"
	"os"
	"time"
)

// Config holds legal-records provider connection parameters.
type Config struct {
	BaseURL   string `toml:"base_url"`
	TokenID   string `toml:"token_id"`
	TokenHash string `toml:"token_hash"`
	Timeout   string `toml:"timeout"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	BaseURL   string
	TokenID   string
	TokenHash string
	Timeout   string
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *Config) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
	if overlay.TokenID != "" {
		c.TokenID = overlay.TokenID
	}
	if overlay.TokenHash != "" {
		c.TokenHash = overlay.TokenHash
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
}

func (c *Config) loadDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = "https://plataforma.bigdatacorp.com.br/pessoas"
	}
	if c.Timeout == "" {
		c.Timeout = "30s"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.BaseURL != "" {
		if v := os.Getenv(env.BaseURL); v != "" {
			c.BaseURL = v
		}
	}
	if env.TokenID != "" {
		if v := os.Getenv(env.TokenID); v != "" {
			c.TokenID = v
		}
	}
	if env.TokenHash != "" {
		if v := os.Getenv(env.TokenHash); v != "" {
			c.TokenHash = v
		}
	}
	if env.Timeout != "" {
		if v := os.Getenv(env.Timeout); v != "" {
			c.Timeout = v
		}
	}
}

func (c *Config) validate() error {
	if c.TokenID == "" {
		return fmt.Errorf("token_id required")
	}
	if c.TokenHash == "" {
		return fmt.Errorf("token_hash required")
	}
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	return nil
}
