package telemetry

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"bogus", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		if got := parseLogLevel(tt.in); got != tt.want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewLoggerWritesToFile(t *testing.T) {
	path := t.TempDir() + "/run.log"
	logger, err := NewLogger(LoggingConfig{Level: "debug", Format: "json", Output: path})
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}
	logger.WithRunID("run-1").WithRepo("https://example.com/repo.git").Info("materialized")

	zl := logger.Zerolog()
	if zl.GetLevel() != zerolog.DebugLevel {
		t.Errorf("expected debug level, got %v", zl.GetLevel())
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := NopLogger()
	logger.Infof("this goes %s", "nowhere")
	logger.WithError(nil).Warn("still nowhere")
}
