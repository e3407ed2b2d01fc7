package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/claude/fittrack/internal/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New builds the process logger from config. When a log file is set the
// output is rotated by lumberjack, optionally mirrored to stdout.
func New(cfg config.LogConfig) *slog.Logger {
	return slog.New(newHandler(cfg, output(cfg)))
}

func output(cfg config.LogConfig) io.Writer {
	if cfg.File == "" {
		return os.Stdout
	}

	name := cfg.File
	if !strings.HasSuffix(name, ".log") {
		name += ".log"
	}
	rotated := &lumberjack.Logger{
		Filename: name,
		MaxSize:  50, // megabytes
		Compress: true,
	}
	if cfg.Stdout {
		return io.MultiWriter(os.Stdout, rotated)
	}
	return rotated
}

func newHandler(cfg config.LogConfig, w io.Writer) slog.Handler {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}
	if cfg.Format == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// Stderr builds a text logger on stderr, for processes whose stdout carries
// a protocol.
func Stderr(level string) *slog.Logger {
	return slog.New(newHandler(config.LogConfig{Level: level}, os.Stderr))
}

// ParseLevel maps a config level name to a slog level. Unknown names log at info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Discard returns a logger that drops everything. Used by tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
