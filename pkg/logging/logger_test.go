package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Level != LevelInfo {
		t.Errorf("Expected default level to be Info, got %s", cfg.Level)
	}
	if cfg.Pretty {
		t.Error("Expected default pretty to be false")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    LogLevel
		expected zerolog.Level
	}{
		{LevelDebug, zerolog.DebugLevel},
		{LevelInfo, zerolog.InfoLevel},
		{LevelWarn, zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{LevelError, zerolog.ErrorLevel},
		{"invalid", zerolog.InfoLevel}, // Should default to Info
	}

	for _, tt := range tests {
		t.Run(string(tt.input), func(t *testing.T) {
			if got := parseLevel(tt.input); got != tt.expected {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNewLogger_ComponentField(t *testing.T) {
	buf := &bytes.Buffer{}
	Setup(Config{
		Level:  LevelInfo,
		Output: buf,
	})

	logger := NewLogger("cache")
	logger.Info().Str("key", "user:1").Msg("evicted entry")

	output := buf.String()
	if !strings.Contains(output, `"component":"cache"`) {
		t.Errorf("Expected component field, got %q", output)
	}
	if !strings.Contains(output, "evicted entry") {
		t.Errorf("Expected message, got %q", output)
	}
}

func TestLogLevelFiltering(t *testing.T) {
	buf := &bytes.Buffer{}
	Setup(Config{
		Level:  LevelWarn,
		Output: buf,
	})

	logger := NewLogger("persistence")
	logger.Debug().Msg("debug message")
	logger.Warn().Msg("warn message")

	output := buf.String()
	if strings.Contains(output, "debug message") {
		t.Error("Debug message should be filtered out at Warn level")
	}
	if !strings.Contains(output, "warn message") {
		t.Error("Warn message should be included at Warn level")
	}
}
