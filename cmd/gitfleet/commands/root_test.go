package commands

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/gitfleet/gitfleet/pkg/telemetry"
)

func TestLoggingConfigDefaults(t *testing.T) {
	verbose, jsonOutput = false, false
	cfg := loggingConfig()
	if cfg.Format != "console" {
		t.Errorf("expected console format by default, got %q", cfg.Format)
	}
	if cfg.Level != "info" {
		t.Errorf("expected info level by default, got %q", cfg.Level)
	}
}

func TestLoggingConfigHonorsFlags(t *testing.T) {
	verbose, jsonOutput = true, true
	defer func() { verbose, jsonOutput = false, false }()

	cfg := loggingConfig()
	if cfg.Format != "json" {
		t.Errorf("expected json format with --json, got %q", cfg.Format)
	}
	if cfg.Level != "debug" {
		t.Errorf("expected debug level with --verbose, got %q", cfg.Level)
	}

	logger, err := telemetry.NewLogger(cfg)
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}
	if got := logger.Zerolog().GetLevel(); got != zerolog.DebugLevel {
		t.Errorf("expected the built logger at debug level, got %s", got)
	}
}

func TestLoggingConfigHonorsLogLevelEnv(t *testing.T) {
	verbose, jsonOutput = false, false
	t.Setenv("LOG_LEVEL", "warn")

	if cfg := loggingConfig(); cfg.Level != "warn" {
		t.Errorf("expected LOG_LEVEL to set the level, got %q", cfg.Level)
	}
}

func TestVerboseWinsOverLogLevelEnv(t *testing.T) {
	verbose, jsonOutput = true, false
	defer func() { verbose = false }()
	t.Setenv("LOG_LEVEL", "error")

	if cfg := loggingConfig(); cfg.Level != "debug" {
		t.Errorf("expected --verbose to override LOG_LEVEL, got %q", cfg.Level)
	}
}
