// Package main is the entry point for the PeerHub API server.
//
// main stays minimal:
//  1. Read configuration from the environment
//  2. Create the logger
//  3. Build the server and run it until SIGINT/SIGTERM
//
// All actual logic lives in internal/.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/sakif/peerhub/internal/config"
	"github.com/sakif/peerhub/internal/server"
)

func main() {
	// === 1. READ CONFIGURATION ===
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// === 2. SET UP LOGGING ===
	// Text for humans in development, JSON for log collectors in production.
	logger, err := cfg.NewLogger(os.Stdout)
	if err != nil {
		slog.Error("invalid log configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	slog.SetDefault(logger)

	if !cfg.Google.Enabled() {
		logger.Warn("GOOGLE_CLIENT_ID not set: server-side Google login is disabled")
	}

	// === 3. CREATE AND START THE SERVER ===
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv, err := server.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start blocks until the context is cancelled by a signal.
	if err := srv.Start(ctx); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
