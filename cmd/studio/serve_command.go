package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"studio/internal/server"
	"studio/internal/storage/sqlite"
	"studio/internal/vault"
)

const shutdownTimeout = 5 * time.Second

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the task API and dashboard server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			lockPath := cfg.LockPath()
			if err := os.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil {
				return fmt.Errorf("create data directory: %w", err)
			}
			lock := flock.New(lockPath)
			ok, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire lock %s: %w", lockPath, err)
			}
			if !ok {
				return fmt.Errorf("another studio server is using %s", cfg.Storage.Path)
			}
			defer func() { _ = lock.Unlock() }()

			store, err := sqlite.Open(cfg.Storage.Driver, cfg.Storage.Path, logger)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer store.Close()

			files, err := vault.Open(cfg.Vault.UploadsDir, cfg.Vault.OutputsDir, logger)
			if err != nil {
				return fmt.Errorf("open vault: %w", err)
			}

			srv := server.New(store, files, logger, cfg.Server.StaticDir)
			httpServer := &http.Server{
				Addr:              cfg.Server.Addr,
				Handler:           srv.Engine(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(runCtx, httpServer, logger)
		},
	}
}

// serve blocks until ctx is done or the listener fails, then drains
// in-flight requests.
func serve(ctx context.Context, httpServer *http.Server, logger *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, failed := <-errCh:
		if failed {
			logger.Error("server stopped unexpectedly", slog.String("error", err.Error()))
			return fmt.Errorf("listen on %s: %w", httpServer.Addr, err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown server", slog.String("error", err.Error()))
		return err
	}

	logger.Info("server stopped")
	return nil
}
