package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/samaralitalim/answersheet/internal/grading"
	"github.com/samaralitalim/answersheet/internal/handlers"
	"github.com/spf13/cobra"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the answer sheet web API",
		Long: `Starts a JSON API on the specified port.

It lists and selects catalog entries, accepts answer sheet uploads, and
reports their grading progress. One submission is graded at a time.`,
		Example: `  # Start server on default port 8888
  answersheet serve

  # Start server on custom port
  answersheet serve --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			cat, err := openCatalog(cfg)
			if err != nil {
				return err
			}
			prefs, err := openPreferences(cfg)
			if err != nil {
				return err
			}

			// Background submissions stop when the command context is cancelled
			handler := handlers.New(cmd.Context(), grading.NewClient(cfg), cat, prefs)

			addr := ":" + port
			server := &http.Server{
				Addr:              addr,
				Handler:           handler.Routes(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Answer sheet API available", "addr", addr, "url", "http://localhost"+addr, "catalog_entries", cat.Len())
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				// Give server 5 seconds to shut down gracefully
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				handler.Wait()
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "8888", "Port to listen on")

	return cmd
}
