package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/claude/fittrack/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

// TestJSONHandler verifies the json format emits one object per record with
// the attributes as fields.
func TestJSONHandler(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(newHandler(config.LogConfig{Format: "json", Level: "debug"}, &buf))
	log.Debug("session opened", "workout_id", "w1")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("output is not JSON: %q", buf.String())
	}
	if rec["msg"] != "session opened" || rec["workout_id"] != "w1" {
		t.Errorf("record = %v", rec)
	}
}

// TestLevelFilters verifies records below the configured level are dropped.
func TestLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(newHandler(config.LogConfig{Format: "text", Level: "warn"}, &buf))
	log.Info("hidden")
	log.Warn("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Errorf("output = %q", buf.String())
	}
}

// TestFileOutput verifies a log file gets the .log suffix and receives records.
func TestFileOutput(t *testing.T) {
	base := filepath.Join(t.TempDir(), "fittrack")
	log := New(config.LogConfig{File: base, Format: "text", Level: "info"})
	log.Info("written to file")

	data, err := os.ReadFile(base + ".log")
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), "written to file") {
		t.Errorf("log file = %q", data)
	}
}

func TestStderrLevel(t *testing.T) {
	log := Stderr("error")
	if log.Enabled(context.Background(), slog.LevelWarn) {
		t.Error("warn enabled on an error-level logger")
	}
	if !log.Enabled(context.Background(), slog.LevelError) {
		t.Error("error disabled on an error-level logger")
	}
}
