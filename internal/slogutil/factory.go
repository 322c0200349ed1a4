package slogutil

import (
	"io"
	"log/slog"
	"path/filepath"

	"codecoach/internal/config"
)

// LoggerFactory builds loggers for the CLI and the API server.
// Level precedence: CLI flag > config > info.
type LoggerFactory struct {
	root     string
	config   *config.Config
	cliLevel *slog.Level
	closers  []io.Closer
}

// NewLoggerFactory creates a factory. cliLevel is nil when no flag was given.
func NewLoggerFactory(root string, cfg *config.Config, cliLevel *slog.Level) *LoggerFactory {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &LoggerFactory{root: root, config: cfg, cliLevel: cliLevel}
}

// Level returns the effective level.
func (f *LoggerFactory) Level() slog.Level {
	if f.cliLevel != nil {
		return *f.cliLevel
	}
	if f.config.Logging.Level != "" {
		return LevelFromString(f.config.Logging.Level)
	}
	return slog.LevelInfo
}

// CLILogger logs to w in the configured format.
func (f *LoggerFactory) CLILogger(w io.Writer) *slog.Logger {
	return NewFormatLogger(w, f.Level(), f.config.Logging.Format)
}

// ServerLogger logs to w and, when logging.file is set, to a rotating file
// relative to the project root.
func (f *LoggerFactory) ServerLogger(w io.Writer) (*slog.Logger, error) {
	level, format := f.Level(), f.config.Logging.Format
	console := newHandler(w, level, format)
	if f.config.Logging.File == "" {
		return slog.New(console), nil
	}

	path := f.config.Logging.File
	if !filepath.IsAbs(path) {
		path = filepath.Join(f.root, path)
	}
	size, err := ParseSize(f.config.Logging.MaxSize)
	if err != nil {
		return nil, err
	}
	rf, err := OpenRotatingFile(path, size, f.config.Logging.MaxBackups)
	if err != nil {
		return nil, err
	}
	f.closers = append(f.closers, rf)
	return slog.New(NewTeeHandler(console, newHandler(rf, level, format))), nil
}

// Close closes all open log files.
func (f *LoggerFactory) Close() error {
	var firstErr error
	for _, c := range f.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	f.closers = nil
	return firstErr
}
