package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"ERROR", slog.LevelError},
		{"bogus", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestNewLoggerWritesJSONToFile(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "scan.log")

	cfg := Config{
		Level:      slog.LevelInfo,
		FilePath:   logFile,
		MaxSizeMB:  1,
		MaxBackups: 2,
		Console:    false,
	}

	logger, err := NewLogger(cfg)
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}

	logger.Info("scan started", "scan_id", 7)

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}

	line := string(data)
	if !strings.Contains(line, `"msg":"scan started"`) {
		t.Errorf("Expected JSON log record, got %q", line)
	}
	if !strings.Contains(line, `"scan_id":7`) {
		t.Errorf("Expected scan_id attribute, got %q", line)
	}
}

func TestNewLoggerRespectsLevel(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "scan.log")

	logger, err := NewLogger(Config{
		Level:      slog.LevelWarn,
		FilePath:   logFile,
		MaxSizeMB:  1,
		MaxBackups: 1,
		Console:    false,
	})
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}

	logger.Info("should be dropped")
	logger.Warn("should be kept")

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}

	if strings.Contains(string(data), "should be dropped") {
		t.Error("Info record written despite warn level")
	}
	if !strings.Contains(string(data), "should be kept") {
		t.Error("Warn record missing")
	}
}
