package app

import (
	"errors"
	"io"
	"testing"

	"ChannelScanner/internal/config"
	"ChannelScanner/internal/domain"
	"ChannelScanner/internal/logging"
)

func testConfig() config.Config {
	cfg := config.Config{}
	cfg.Gemini.Endpoint = "https://example.invalid/v1beta"
	cfg.Gemini.Model = "gemini-test"
	cfg.Gemini.APIKey = "key"
	cfg.Retry.MaxAttempts = 3
	cfg.Retry.WaitSeconds = 60
	return cfg
}

func TestNewApplicationRequiresAPIKey(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Gemini.APIKey = ""

	_, err := newApplication(cfg, logging.NewWithWriter(io.Discard, "error"))
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestNewApplicationWithoutStore(t *testing.T) {
	t.Parallel()

	application, err := newApplication(testConfig(), logging.NewWithWriter(io.Discard, "error"))
	if err != nil {
		t.Fatalf("newApplication returned error: %v", err)
	}
	if application.Pipeline() == nil {
		t.Fatal("pipeline not wired")
	}
	if application.db != nil {
		t.Fatal("no store handle expected without a DSN")
	}
}

func TestInitIsIdempotent(t *testing.T) {
	// Exercises the package-level once; not parallel on purpose.
	logger := logging.NewWithWriter(io.Discard, "error")

	first, err1 := Init(testConfig(), logger)
	second, err2 := Init(testConfig(), logger)

	if err1 != nil || err2 != nil {
		t.Fatalf("Init returned errors: %v, %v", err1, err2)
	}
	if first != second {
		t.Fatal("Init must return the same instance without re-creating clients")
	}
}
