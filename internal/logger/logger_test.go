package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInitCreatesLogFile(t *testing.T) {
	configDir := filepath.Join(t.TempDir(), "config")
	t.Cleanup(func() { _ = Close() })

	if err := Init(Config{ConfigDir: configDir}); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	if Logger == nil {
		t.Fatal("Logger is nil after initialization")
	}

	Warn("habit toggle failed", "habit", "h1")
	if err := Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	data, err := os.ReadFile(LogFile(configDir))
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), "habit toggle failed") {
		t.Errorf("log file missing warning, got %q", data)
	}
	if !strings.HasSuffix(LogFile(configDir), "habitreel.log") {
		t.Errorf("LogFile() = %q, want habitreel.log suffix", LogFile(configDir))
	}
}

func TestNormalModeDropsDebug(t *testing.T) {
	var stderr bytes.Buffer
	configDir := t.TempDir()
	t.Cleanup(func() { _ = Close() })

	if err := Init(Config{ConfigDir: configDir, Stderr: &stderr}); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	Debug("hidden")
	Info("hidden too")
	if stderr.Len() != 0 {
		t.Errorf("normal mode wrote to stderr: %q", stderr.String())
	}
}

func TestDebugModeMirrorsStderr(t *testing.T) {
	var stderr bytes.Buffer
	t.Cleanup(func() { _ = Close() })

	if err := Init(Config{Debug: true, ConfigDir: t.TempDir(), Stderr: &stderr}); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	Debug("reward prefetch", "count", 3)
	if !strings.Contains(stderr.String(), "reward prefetch") {
		t.Errorf("debug output missing from stderr: %q", stderr.String())
	}
}

func TestLogFunctionsWithoutInit(t *testing.T) {
	Logger = nil

	Debug("Test debug message")
	Info("Test info message")
	Warn("Test warning message")
	Error("Test error message")
	if With("k", "v") != nil {
		t.Error("With() before Init should return nil")
	}
}
