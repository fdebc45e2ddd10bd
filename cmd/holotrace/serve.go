// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/holomush/holotrace/internal/agent"
	"github.com/holomush/holotrace/internal/config"
	"github.com/holomush/holotrace/internal/observability"
	"github.com/holomush/holotrace/pkg/errutil"
)

func newServeCmd(st *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run activation passes until settled and serve metrics",
		Long: `Run activation passes every retry.interval until every enabled integration
has settled or retry.attempts passes have run, while serving /metrics and
/healthz probes on metrics.addr. SIGHUP reloads the configuration and starts
over with a fresh loader; SIGINT or SIGTERM stops the agent.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), cmd, st.cfg)
		},
	}
}

func runServe(ctx context.Context, cmd *cobra.Command, cfg *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var obsServer *observability.Server
	if addr := cfg.MetricsAddr(); addr != "" {
		obsServer = observability.NewServer(addr, agent.Ready, agent.Snapshot)
		obsErrChan, err := obsServer.Start()
		if err != nil {
			return fmt.Errorf("failed to start observability server: %w", err)
		}
		go monitorServerErrors(ctx, cancel, obsErrChan, "observability")
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigChan)

	reloads := make(chan struct{}, 1)
	driverDone := make(chan struct{})
	go func() {
		defer close(driverDone)
		drive(ctx, cfg, reloads)
	}()

	cmd.Println("holotrace agent started")

wait:
	for {
		select {
		case sig := <-sigChan:
			if sig == syscall.SIGHUP {
				select {
				case reloads <- struct{}{}:
				default:
				}
				continue
			}
			slog.Info("received shutdown signal", "signal", sig)
			break wait
		case <-ctx.Done():
			slog.Info("context cancelled, shutting down")
			break wait
		}
	}

	cancel()
	<-driverDone

	if obsServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := obsServer.Stop(shutdownCtx); err != nil {
			slog.Warn("error stopping observability server", "error", err)
		}
	}

	slog.Info("shutdown complete")
	return nil
}

// drive owns the agent: every pass and reload runs on this goroutine.
func drive(ctx context.Context, cfg *config.Config, reloads <-chan struct{}) {
	settle(ctx, cfg)
	for {
		select {
		case <-ctx.Done():
			return
		case <-reloads:
			reload(cfg)
			settle(ctx, cfg)
		}
	}
}

// reload re-reads the configuration and rebuilds the agent loader.
func reload(cfg *config.Config) {
	if err := cfg.Reload(); err != nil {
		errutil.LogError(slog.Default(), "configuration reload failed, keeping previous values", err)
	}
	applyHooks(cfg)
	agent.Reload()
	slog.Info("agent reloaded", "loader_id", agent.Get().ID().String())
}

func settle(ctx context.Context, cfg *config.Config) {
	err := agent.Settle(ctx, cfg.RetryInterval(), cfg.RetryAttempts())
	switch {
	case err == nil:
		slog.Info("integrations settled", "statuses", agent.Snapshot())
	case errors.Is(err, context.Canceled):
	default:
		errutil.LogWarn(slog.Default(), "integrations did not settle", err)
	}
}

// monitorServerErrors watches a server error channel and cancels the context on error.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, errCh <-chan error, serverName string) {
	select {
	case err, ok := <-errCh:
		if !ok {
			return
		}
		if err != nil {
			slog.Error("server error, triggering shutdown",
				"server", serverName,
				"error", err,
			)
			cancel()
		}
	case <-ctx.Done():
	}
}
