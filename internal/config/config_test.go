package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gregorizeidler-cw/themis-law-suits/internal/classify"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()

	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
}

func setProviderTokens(t *testing.T) {
	t.Helper()

	t.Setenv("THEMIS_PROVIDER_TOKEN_ID", "token-id")
	t.Setenv("THEMIS_PROVIDER_TOKEN_HASH", "token-hash")
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())
	setProviderTokens(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Batch.Variant() != classify.VariantPattern {
		t.Errorf("default mode = %q, want pattern", cfg.Batch.Mode)
	}
	if cfg.Batch.Workers != 10 {
		t.Errorf("default workers = %d, want 10", cfg.Batch.Workers)
	}
	if !strings.Contains(cfg.Provider.BaseURL, "bigdatacorp") {
		t.Errorf("provider base url = %q, want default", cfg.Provider.BaseURL)
	}
}

func TestLoadBaseFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, BaseConfigFile, `
[batch]
mode = "semantic"
workers = 3

[provider]
token_id = "file-id"
token_hash = "file-hash"

[completion]
api_key = "sk-test"
`)
	t.Chdir(dir)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Batch.Mode != "semantic" {
		t.Errorf("mode = %q, want semantic", cfg.Batch.Mode)
	}
	if cfg.Batch.Workers != 3 {
		t.Errorf("workers = %d, want 3", cfg.Batch.Workers)
	}
	if cfg.Batch.Delay != "300ms" {
		t.Errorf("delay = %q, want semantic default 300ms", cfg.Batch.Delay)
	}
	if cfg.Provider.TokenID != "file-id" {
		t.Errorf("token id = %q, want file-id", cfg.Provider.TokenID)
	}
	if cfg.Completion.Model != "gpt-4o-mini" {
		t.Errorf("model = %q, want default gpt-4o-mini", cfg.Completion.Model)
	}
}

func TestLoadOverlayPrecedence(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, BaseConfigFile, `
[batch]
workers = 2

[provider]
token_id = "base-id"
token_hash = "base-hash"
`)
	writeFile(t, dir, "config.staging.toml", `
[batch]
workers = 7
`)
	t.Chdir(dir)
	t.Setenv(EnvThemisEnv, "staging")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Batch.Workers != 7 {
		t.Errorf("workers = %d, want overlay value 7", cfg.Batch.Workers)
	}
	if cfg.Provider.TokenID != "base-id" {
		t.Errorf("token id = %q, want base value preserved", cfg.Provider.TokenID)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, BaseConfigFile, `
[batch]
mode = "pattern"
workers = 2

[provider]
token_id = "file-id"
token_hash = "file-hash"
`)
	t.Chdir(dir)
	t.Setenv("THEMIS_WORKERS", "12")
	t.Setenv("THEMIS_PROVIDER_TOKEN_ID", "env-id")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Batch.Workers != 12 {
		t.Errorf("workers = %d, want env value 12", cfg.Batch.Workers)
	}
	if cfg.Provider.TokenID != "env-id" {
		t.Errorf("token id = %q, want env value", cfg.Provider.TokenID)
	}
}

func TestLoadRequiresProviderTokens(t *testing.T) {
	t.Chdir(t.TempDir())

	if _, err := Load(); err == nil {
		t.Fatal("Load() accepted config without provider tokens")
	}
}

func TestLoadSemanticRequiresAPIKey(t *testing.T) {
	t.Chdir(t.TempDir())
	setProviderTokens(t)
	t.Setenv("THEMIS_MODE", "semantic")

	if _, err := Load(); err == nil {
		t.Fatal("Load() accepted semantic mode without an API key")
	}
}

func TestLoadPatternSkipsCompletionValidation(t *testing.T) {
	t.Chdir(t.TempDir())
	setProviderTokens(t)
	t.Setenv("THEMIS_MODE", "pattern")

	if _, err := Load(); err != nil {
		t.Fatalf("Load() error = %v, pattern mode should not need an API key", err)
	}
}
