package main

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"codecoach/internal/config"
	"codecoach/internal/correctness"
	"codecoach/internal/engine"
	"codecoach/internal/slogutil"
	"codecoach/internal/storage"
)

// session bundles what a command needs: configuration, loggers, the
// engine and, when opened, the profile store.
type session struct {
	root    string
	cfg     *config.Config
	loggers *slogutil.LoggerFactory
	logger  *slog.Logger
	engine  *engine.Engine
	db      *storage.DB
	store   *storage.Store
}

// newSession loads configuration and builds the engine. withStore also
// opens the profile database.
func newSession(cmd *cobra.Command, withStore bool) (*session, error) {
	root, err := filepath.Abs(rootFlag)
	if err != nil {
		return nil, err
	}
	cfg, err := config.LoadConfig(root)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	s := &session{root: root, cfg: cfg}
	s.loggers = slogutil.NewLoggerFactory(root, cfg, cliLevel(cmd))
	s.logger = s.loggers.CLILogger(cmd.ErrOrStderr())

	s.engine, err = engine.NewEngine(cfg, newChecker(cfg, s.logger), s.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	if withStore {
		if err := s.openStore(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *session) openStore() error {
	path := s.cfg.Storage.Path
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.root, path)
	}
	db, err := storage.Open(path, s.logger)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db
	s.store = storage.NewStore(db)
	return nil
}

func (s *session) Close() {
	if s.db != nil {
		_ = s.db.Close()
	}
	_ = s.loggers.Close()
}

// newChecker returns the configured correctness checker, or nil when
// checks are disabled or no API key is available.
func newChecker(cfg *config.Config, logger *slog.Logger) correctness.Checker {
	if !cfg.Correctness.Enabled {
		return nil
	}
	c, err := correctness.NewOpenAIChecker(correctness.OpenAIConfig{
		APIKey:        cfg.Correctness.APIKey,
		Model:         cfg.Correctness.Model,
		BaseURL:       cfg.Correctness.BaseURL,
		RatePerMinute: cfg.Correctness.RatePerMinute,
		Logger:        logger,
	})
	if err != nil {
		logger.Warn("Correctness checks disabled", "error", err.Error())
		return nil
	}
	return c
}
