package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv    = "CHANNEL_SCANNER_CONFIG"
	databaseDSNEnv   = "DATABASE_DSN"
	geminiAPIKeyEnv  = "GEMINI_API_KEY"
	geminiModelEnv   = "GEMINI_MODEL"
	telegramTokenEnv = "TELEGRAM_BOT_TOKEN"
	opsChatIDEnv     = "TELEGRAM_OPS_CHAT_ID"
)

// Config holds high-level settings required across the application.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Gemini   GeminiConfig   `yaml:"gemini"`
	Telegram TelegramConfig `yaml:"telegram"`
	Retry    RetryConfig    `yaml:"retry"`
	Backfill BackfillConfig `yaml:"backfill"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// DatabaseConfig describes the shared Postgres store.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// GeminiConfig defines how to contact the completion service.
type GeminiConfig struct {
	Endpoint string `yaml:"endpoint"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"apiKey"`
}

// TelegramConfig wires the message source and the operator alert channel.
type TelegramConfig struct {
	BotToken           string `yaml:"botToken"`
	OpsChatID          string `yaml:"opsChatId"`
	PollTimeoutSeconds int    `yaml:"pollTimeoutSeconds"`
}

// RetryConfig bounds the completion-service retry loop.
type RetryConfig struct {
	MaxAttempts int `yaml:"maxAttempts"`
	WaitSeconds int `yaml:"waitSeconds"`
}

// Wait resolves the configured delay between attempts.
func (r RetryConfig) Wait() time.Duration {
	return time.Duration(r.WaitSeconds) * time.Second
}

// BackfillConfig controls periodic re-processing of stored rows.
type BackfillConfig struct {
	Enabled         bool `yaml:"enabled"`
	IntervalMinutes int  `yaml:"intervalMinutes"`
	Limit           int  `yaml:"limit"`
}

// Interval resolves the configured backfill period.
func (b BackfillConfig) Interval() time.Duration {
	return time.Duration(b.IntervalMinutes) * time.Minute
}

// LoggingConfig sets the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}

	if v := os.Getenv(geminiAPIKeyEnv); v != "" {
		c.Gemini.APIKey = v
	}

	if v := os.Getenv(geminiModelEnv); v != "" {
		c.Gemini.Model = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Telegram.BotToken = v
	}

	if v := os.Getenv(opsChatIDEnv); v != "" {
		c.Telegram.OpsChatID = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Database.DSN != "" {
		base.Database = override.Database
	}

	if override.Gemini.Endpoint != "" {
		base.Gemini.Endpoint = override.Gemini.Endpoint
	}
	if override.Gemini.Model != "" {
		base.Gemini.Model = override.Gemini.Model
	}
	if override.Gemini.APIKey != "" {
		base.Gemini.APIKey = override.Gemini.APIKey
	}

	if override.Telegram.BotToken != "" {
		base.Telegram.BotToken = override.Telegram.BotToken
	}
	if override.Telegram.OpsChatID != "" {
		base.Telegram.OpsChatID = override.Telegram.OpsChatID
	}
	if override.Telegram.PollTimeoutSeconds > 0 {
		base.Telegram.PollTimeoutSeconds = override.Telegram.PollTimeoutSeconds
	}

	if override.Retry.MaxAttempts > 0 {
		base.Retry.MaxAttempts = override.Retry.MaxAttempts
	}
	if override.Retry.WaitSeconds > 0 {
		base.Retry.WaitSeconds = override.Retry.WaitSeconds
	}

	if override.Backfill.Enabled {
		base.Backfill.Enabled = true
	}
	if override.Backfill.IntervalMinutes > 0 {
		base.Backfill.IntervalMinutes = override.Backfill.IntervalMinutes
	}
	if override.Backfill.Limit > 0 {
		base.Backfill.Limit = override.Backfill.Limit
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Database: DatabaseConfig{DSN: ""},
		Gemini: GeminiConfig{
			Endpoint: "https://generativelanguage.googleapis.com/v1beta",
			Model:    "gemini-1.5-flash-latest",
			APIKey:   "",
		},
		Telegram: TelegramConfig{PollTimeoutSeconds: 25},
		Retry:    RetryConfig{MaxAttempts: 3, WaitSeconds: 60},
		Backfill: BackfillConfig{Enabled: false, IntervalMinutes: 60, Limit: 50},
		Logging:  LoggingConfig{Level: "info"},
	}
}
