// =============================================================================
// Slip Report - Serve Command
// =============================================================================
//
// COMMAND USAGE:
//   slipreport serve [--addr :8080]
//
// Starts the HTTP API. The server runs until SIGINT or SIGTERM, then drains
// in-flight requests for up to ten seconds.
//
// =============================================================================

package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/slip-report/internal/analyzer"
	"github.com/ginjaninja78/slip-report/internal/server"
)

const shutdownTimeout = 10 * time.Second

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the analysis API over HTTP",
	Long: `Starts an HTTP server exposing:

  GET  /healthz                            Liveness check
  POST /api/analyze                        Analyze an uploaded CSV (multipart "file" or raw body)
  GET  /api/report/:kind/sort?column=...   Toggle the sort of the last report
  GET  /api/report/export?format=...       Download the last report`,

	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := mainConfig
		addr := serveAddr
		if addr == "" {
			addr = cfg.Server.Addr
		}

		srv := server.New(logger.Sugar(), server.Options{
			Analysis: analyzer.Options{
				Workers:  cfg.Workers,
				Expected: cfg.WardSet(),
			},
			MaxUploadMB: cfg.Server.MaxUploadMB,
		})

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.Start(addr)
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return <-errCh
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from server.addr)")
}
