package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"codecoach/internal/api"
)

var (
	serveAddr      string
	serveNoStorage bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP API server",
	Long: `Start the coach HTTP API server. It exposes analysis, batch analysis,
the detection catalog and learner profiles over JSON, plus /health and
Prometheus /metrics.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Address to listen on (default from config server.addr)")
	serveCmd.Flags().BoolVar(&serveNoStorage, "no-storage", false, "Run without the learner profile store")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	sess, err := newSession(cmd, !serveNoStorage)
	if err != nil {
		return err
	}
	defer sess.Close()

	logger, err := sess.loggers.ServerLogger(cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	if serveAddr != "" {
		sess.cfg.Server.Addr = serveAddr
	}

	server := api.NewServer(sess.cfg, sess.engine, sess.store, logger)

	serverErr := make(chan error, 1)
	go func() {
		fmt.Fprintf(cmd.OutOrStdout(), "coach API listening on http://%s\n", sess.cfg.Server.Addr)
		serverErr <- server.Start()
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			logger.Error("Server error", "error", err.Error())
			return err
		}
	case <-cmd.Context().Done():
		logger.Info("Received shutdown signal")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("Error during shutdown", "error", err.Error())
			return err
		}
		logger.Info("Server stopped gracefully")
	}
	return nil
}
