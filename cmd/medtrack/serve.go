// ABOUTME: CLI command for running the document server.
// ABOUTME: Serves the patient document and side-effect lookups over HTTP until interrupted.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/harperreed/medtrack/internal/cache"
	"github.com/harperreed/medtrack/internal/logging"
	"github.com/harperreed/medtrack/internal/server"
	"github.com/harperreed/medtrack/internal/storage"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the document server",
	Long: `Run the HTTP server that stores the patient document and answers
side-effect lookups.

ENDPOINTS:

  GET  /api/data           Read the document
  PUT  /api/data           Replace the document
  POST /api/side-effects   Look up side effects for {"medication": "..."}
  GET  /api/health         Server and data file status

Every request needs the X-API-Key header set to api_key. Browser requests
are only accepted from allowed_origin.

The document is kept in <data_dir>/patient-data.json with a .backup copy of
the previous version.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.ValidateServe(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		store, err := storage.NewFileStore(cfg.DataFile(), logging.Component(logger, "store"))
		if err != nil {
			return fmt.Errorf("failed to open data file: %w", err)
		}
		lookupCache, err := openCache()
		if err != nil {
			return err
		}
		defer func() { _ = lookupCache.Close() }()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if n, err := cache.PurgeExpired(ctx, lookupCache); err != nil {
			logger.Warn().Err(err).Msg("lookup cache purge failed")
		} else if n > 0 {
			logger.Info().Int64("removed", n).Msg("purged expired lookup cache entries")
		}

		srv := server.New(server.Options{
			APIKey:        cfg.APIKey,
			AllowedOrigin: cfg.AllowedOrigin,
		}, store, newResolver(lookupCache), logging.Component(logger, "server"))

		errCh := make(chan error, 1)
		go func() { errCh <- srv.Start(cfg.ListenAddr) }()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		logger.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
