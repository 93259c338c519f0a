package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/use-agent/philosophy/api"
	"github.com/use-agent/philosophy/cache"
	"github.com/use-agent/philosophy/philosophy"
	"github.com/use-agent/philosophy/wiki"
)

func newServeCmd(g *globalFlags) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			// ── 1. Load configuration ───────────────────────────────
			cfg, err := loadConfig(g)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}

			// ── 2. Initialise structured logging ────────────────────
			initLogger(cfg.Log, os.Stdout)
			slog.Info("philosophy starting",
				"host", cfg.Server.Host,
				"port", cfg.Server.Port,
				"mode", cfg.Server.Mode,
				"destination", cfg.Trace.Destination,
				"browser", cfg.Browser.Enabled,
			)
			if cfg.Auth.Enabled && len(cfg.Auth.APIKeys) == 0 {
				slog.Warn("auth enabled without API keys, the API is open")
			}

			// ── 3. Initialise fetch engines ─────────────────────────
			stack, err := newFetchStack(cfg)
			if err != nil {
				return fmt.Errorf("initialise engines: %w", err)
			}
			defer stack.close()

			// ── 4. Traverser, excerpter and cache ───────────────────
			tr := philosophy.NewTraverser(stack.fetcher)
			ex := wiki.NewExcerpter()
			cc := cache.New(cfg.Cache.MaxEntries)
			defer cc.Stop()

			// ── 5. Setup router ─────────────────────────────────────
			router := api.NewRouter(tr, ex, stack.engines, cfg, cc, time.Now())

			// ── 6. Start HTTP server ────────────────────────────────
			addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
			srv := &http.Server{
				Addr:              addr,
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				slog.Info("HTTP server listening", "addr", addr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()

			// ── 7. Graceful shutdown ────────────────────────────────
			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			select {
			case sig := <-quit:
				slog.Info("shutdown signal received", "signal", sig.String())
			case err := <-errCh:
				return fmt.Errorf("HTTP server: %w", err)
			}

			// Traces fetch pages one at a time; give in-flight ones time to finish.
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				slog.Error("HTTP server forced shutdown", "error", err)
			} else {
				slog.Info("HTTP server drained gracefully")
			}

			slog.Info("philosophy stopped")
			return nil
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (default from config)")
	return cmd
}
