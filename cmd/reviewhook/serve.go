package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yanizio/reviewhook/internal/config"
	"github.com/yanizio/reviewhook/internal/logger"
	"github.com/yanizio/reviewhook/internal/runner"
	"github.com/yanizio/reviewhook/internal/server"
	"github.com/yanizio/reviewhook/internal/webhook"
)

const shutdownGrace = 15 * time.Second

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the webhook server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
}

// runServe wires the server in order:
//
//  1. Console logger for the bootstrap phase.
//  2. Settings bootstrap (fatal on required-source errors).
//  3. Typed config + file logger.
//  4. Runner, handler, router, http.Server.
//  5. Serve until SIGINT/SIGTERM, then drain requests and running reviews.
func runServe(ctx context.Context, opts *rootOptions) error {
	logger.Console(opts.logLevel)

	s, root, err := opts.bootstrap(ctx)
	if err != nil {
		zap.S().Errorw("settings bootstrap failed", "err", err)
		return err
	}

	cfg, err := config.Load(s, root)
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Log.Dir, cfg.Log.Level, runningInTTY())
	if err != nil {
		return fmt.Errorf("start logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	run := runner.New(cfg.Webhook.Command, cfg.Webhook.MaxConcurrentRuns, log)
	h := webhook.NewHandler(cfg.Webhook.Trigger, run, log)
	srv := server.New(cfg.Webhook, webhook.NewRouter(h, cfg.Webhook.RateLimit, log.Desugar()))

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Infow("listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	log.Infow("shutting down server")
	shCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shCtx); err != nil {
		log.Warnw("graceful shutdown failed", "err", err)
		_ = srv.Close()
	}

	log.Infow("waiting for running reviews")
	h.Wait()
	return nil
}

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
