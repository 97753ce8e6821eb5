package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		configPathEnv, databaseDSNEnv, geminiAPIKeyEnv,
		geminiModelEnv, telegramTokenEnv, opsChatIDEnv,
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()
	if cfg.Gemini.Model != "gemini-1.5-flash-latest" {
		t.Fatalf("unexpected default model: %s", cfg.Gemini.Model)
	}
	if cfg.Retry.MaxAttempts != 3 || cfg.Retry.Wait() != 60*time.Second {
		t.Fatalf("unexpected retry defaults: %+v", cfg.Retry)
	}
	if cfg.Backfill.Enabled {
		t.Fatal("backfill must default to disabled")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(geminiAPIKeyEnv, "secret")
	t.Setenv(databaseDSNEnv, "postgres://env")
	t.Setenv(geminiModelEnv, "gemini-pro")

	cfg := Load()
	if cfg.Gemini.APIKey != "secret" || cfg.Gemini.Model != "gemini-pro" {
		t.Fatalf("env overrides not applied: %+v", cfg.Gemini)
	}
	if cfg.Database.DSN != "postgres://env" {
		t.Fatalf("dsn override not applied: %s", cfg.Database.DSN)
	}
}

func TestLoadYAMLMergedUnderEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := []byte("gemini:\n  model: gemini-from-file\nretry:\n  waitSeconds: 5\nbackfill:\n  enabled: true\n  limit: 10\n")
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv(configPathEnv, path)
	t.Setenv(geminiModelEnv, "gemini-from-env")

	cfg := Load()
	if cfg.Gemini.Model != "gemini-from-env" {
		t.Fatalf("env must win over file: %s", cfg.Gemini.Model)
	}
	if cfg.Retry.Wait() != 5*time.Second {
		t.Fatalf("file override lost: %+v", cfg.Retry)
	}
	if !cfg.Backfill.Enabled || cfg.Backfill.Limit != 10 {
		t.Fatalf("backfill settings lost: %+v", cfg.Backfill)
	}
	if cfg.Retry.MaxAttempts != 3 {
		t.Fatalf("defaults must survive partial files: %+v", cfg.Retry)
	}
}
