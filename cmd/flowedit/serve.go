package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	flow "github.com/simon020286/go-flow"
	"github.com/simon020286/go-flow/logging"
	"github.com/simon020286/go-flow/server"
	"github.com/simon020286/go-flow/store"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	var integrationID string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the editor over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(
				cmd.Context(), syscall.SIGINT, syscall.SIGTERM,
			)
			defer stop()

			st, err := store.Open(ctx, cfg.Store)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			ed := flow.NewEditor(st)
			ed.SetLogger(logger)
			if integrationID != "" {
				integration, err := st.Get(ctx, integrationID)
				if err != nil {
					return err
				}
				ed.Load(integration)
				ed.Flush()
			}

			gin.SetMode(gin.ReleaseMode)
			api := server.NewServer(ed, st, nil)
			api.SetLogger(logger)

			httpServer := &http.Server{
				Addr:              cfg.Server.Addr(),
				Handler:           api.SetupRoutes(),
				ReadHeaderTimeout: 5 * time.Second,
			}

			go func() {
				logger.Info("HTTP server starting",
					slog.String("addr", httpServer.Addr),
					slog.String("store", cfg.Store.Driver))
				err := httpServer.ListenAndServe()
				if err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("HTTP server error", logging.Error(err))
					stop()
				}
			}()

			<-ctx.Done()
			logger.Info("Shutting down")

			shutdownCtx, cancel := context.WithTimeout(
				context.Background(), shutdownTimeout,
			)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				logger.Error("Shutdown failed", logging.Error(err))
			}
			ed.Wait()

			logger.Info("Server exited")
			return nil
		},
	}

	cmd.Flags().StringVar(&integrationID, "edit", "",
		"load the stored integration with this id on startup")
	return cmd
}
