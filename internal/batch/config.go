package batch

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/gregorizeidler-cw/themis-law-suits/internal/classify"
)

const (
	defaultMaxRetries = 3

	defaultPatternWorkers  = 10
	defaultSemanticWorkers = 5

	defaultPatternDelay  = 100 * time.Millisecond
	defaultSemanticDelay = 300 * time.Millisecond

	defaultMaxPatternBatch  = 10000
	defaultMaxSemanticBatch = 1000
)

// Config controls how a batch run is executed: which classifier variant it
// uses, how wide the worker pool is, and how external calls are paced and
// retried. Zero values resolve to per-variant defaults during Finalize.
type Config struct {
	Mode             string `toml:"mode"`
	Workers          int    `toml:"workers"`
	Delay            string `toml:"delay"`
	MaxRetries       int    `toml:"max_retries"`
	MaxPatternBatch  int    `toml:"max_pattern_batch"`
	MaxSemanticBatch int    `toml:"max_semantic_batch"`
}

type Env struct {
	Mode       string
	Workers    string
	Delay      string
	MaxRetries string
}

// Finalize resolves env overrides first, then fills per-variant defaults,
// since the worker and delay defaults depend on the resolved mode.
func (c *Config) Finalize(env *Env) error {
	if env != nil {
		c.loadEnv(env)
	}
	c.loadDefaults()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(o *Config) {
	if o.Mode != "" {
		c.Mode = o.Mode
	}

	if o.Workers > 0 {
		c.Workers = o.Workers
	}

	if o.Delay != "" {
		c.Delay = o.Delay
	}

	if o.MaxRetries > 0 {
		c.MaxRetries = o.MaxRetries
	}

	if o.MaxPatternBatch > 0 {
		c.MaxPatternBatch = o.MaxPatternBatch
	}

	if o.MaxSemanticBatch > 0 {
		c.MaxSemanticBatch = o.MaxSemanticBatch
	}
}

func (c *Config) loadEnv(env *Env) {
	if v := os.Getenv(env.Mode); v != "" {
		c.Mode = v
	}

	if v := os.Getenv(env.Workers); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Workers = n
		}
	}

	if v := os.Getenv(env.Delay); v != "" {
		c.Delay = v
	}

	if v := os.Getenv(env.MaxRetries); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxRetries = n
		}
	}
}

func (c *Config) loadDefaults() {
	if c.Mode == "" {
		c.Mode = string(classify.VariantPattern)
	}

	if c.Workers == 0 {
		switch c.Mode {
		case string(classify.VariantSemantic):
			c.Workers = defaultSemanticWorkers
		default:
			c.Workers = defaultPatternWorkers
		}
	}

	if c.Delay == "" {
		switch c.Mode {
		case string(classify.VariantSemantic):
			c.Delay = defaultSemanticDelay.String()
		default:
			c.Delay = defaultPatternDelay.String()
		}
	}

	if c.MaxRetries == 0 {
		c.MaxRetries = defaultMaxRetries
	}

	if c.MaxPatternBatch == 0 {
		c.MaxPatternBatch = defaultMaxPatternBatch
	}

	if c.MaxSemanticBatch == 0 {
		c.MaxSemanticBatch = defaultMaxSemanticBatch
	}
}

func (c *Config) validate() error {
	switch c.Mode {
	case string(classify.VariantPattern), string(classify.VariantSemantic):
	default:
		return fmt.Errorf("batch: unknown mode %q", c.Mode)
	}

	if c.Workers < 1 {
		return fmt.Errorf("batch: workers must be positive, got %d", c.Workers)
	}

	if _, err := time.ParseDuration(c.Delay); err != nil {
		return fmt.Errorf("batch: invalid delay %q: %w", c.Delay, err)
	}

	if c.MaxRetries < 0 {
		return fmt.Errorf("batch: max_retries must not be negative, got %d", c.MaxRetries)
	}

	if c.MaxPatternBatch < 1 || c.MaxSemanticBatch < 1 {
		return fmt.Errorf("batch: size caps must be positive, got %d/%d",
			c.MaxPatternBatch, c.MaxSemanticBatch,
		)
	}

	return nil
}

// Variant resolves the configured mode to a classifier variant. Only valid
// after Finalize.
func (c *Config) Variant() classify.Variant {
	return classify.Variant(c.Mode)
}

// DelayDuration returns the minimum interval between external calls. Only
// valid after Finalize.
func (c *Config) DelayDuration() time.Duration {
	d, _ := time.ParseDuration(c.Delay)
	return d
}

// MaxBatch returns the size cap for the configured variant.
func (c *Config) MaxBatch() int {
	if c.Variant() == classify.VariantSemantic {
		return c.MaxSemanticBatch
	}

	return c.MaxPatternBatch
}
