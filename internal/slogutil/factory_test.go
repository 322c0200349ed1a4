package slogutil

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"codecoach/internal/config"
)

func TestLoggerFactory_Level(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Logging.Level = "error"

	if got := NewLoggerFactory("", cfg, nil).Level(); got != slog.LevelError {
		t.Errorf("Level() = %v, want config level error", got)
	}
	debug := slog.LevelDebug
	if got := NewLoggerFactory("", cfg, &debug).Level(); got != slog.LevelDebug {
		t.Errorf("Level() = %v, want CLI level debug", got)
	}
	if got := NewLoggerFactory("", nil, nil).Level(); got != slog.LevelInfo {
		t.Errorf("Level() = %v, want default info", got)
	}
}

func TestLoggerFactory_ServerLoggerFile(t *testing.T) {
	root := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Logging.File = filepath.Join(".coach", "logs", "server.log")

	f := NewLoggerFactory(root, cfg, nil)
	var console bytes.Buffer
	logger, err := f.ServerLogger(&console)
	if err != nil {
		t.Fatalf("ServerLogger: %v", err)
	}
	logger.Info("Server started", "addr", "127.0.0.1:8080")
	if err := f.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(root, cfg.Logging.File))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	for _, out := range []string{console.String(), string(data)} {
		if !strings.Contains(out, "Server started") {
			t.Errorf("missing message in %q", out)
		}
	}
}

func TestLoggerFactory_CLILoggerJSON(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Logging.Format = "json"
	var buf bytes.Buffer
	NewLoggerFactory("", cfg, nil).CLILogger(&buf).Info("hi")
	if !strings.HasPrefix(buf.String(), "{") {
		t.Errorf("expected JSON, got %q", buf.String())
	}
}
