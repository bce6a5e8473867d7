package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"swachh-scan-api-server/internal/api/routes"
	"swachh-scan-api-server/internal/lifecycle"
	"swachh-scan-api-server/internal/metrics"
	"swachh-scan-api-server/internal/registry"
	"swachh-scan-api-server/internal/socket"
	"swachh-scan-api-server/internal/stats"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(root *rootOptions) *cobra.Command {
	var (
		port   string
		driver string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(root)
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Server.Port = port
			}
			if driver != "" {
				cfg.Store.Driver = driver
			}
			logger := newLogger(cfg.Log, cmd.ErrOrStderr())

			ctx := cmd.Context()
			st, err := openStore(ctx, cfg, logger, false)
			if err != nil {
				return err
			}
			defer func() {
				closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := st.Close(closeCtx); err != nil {
					logger.Warn("failed to close store", "error", err)
				}
			}()

			m := metrics.New()
			hub := socket.NewHub(logger)
			deps := routes.Dependencies{
				Cfg:      cfg,
				Logger:   logger,
				Store:    st,
				Registry: registry.NewService(st, st, logger),
				Lifecycle: lifecycle.NewService(st, st, lifecycle.Options{
					Logger:             logger,
					Publisher:          hub,
					Recorder:           m,
					DefaultListLimit:   cfg.Feedback.DefaultListLimit,
					AllowUnboundedList: cfg.Feedback.AllowUnboundedList,
				}),
				Stats:   stats.NewAggregator(st, st, cfg.Stats.LeaderboardSize),
				Hub:     hub,
				Metrics: m,
			}

			gin.SetMode(cfg.Server.Mode)
			httpServer := &http.Server{
				Addr:              ":" + cfg.Server.Port,
				Handler:           routes.SetupRouter(deps),
				ReadHeaderTimeout: 5 * time.Second,
			}

			errChan := make(chan error, 1)
			go func() {
				logger.Info("starting API server", "port", cfg.Server.Port, "driver", cfg.Store.Driver)
				errChan <- httpServer.ListenAndServe()
			}()

			select {
			case err := <-errChan:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
				logger.Info("shutting down API server")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				if err := httpServer.Shutdown(shutdownCtx); err != nil {
					logger.Error("graceful shutdown failed", "error", err)
					return err
				}
				return nil
			}
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "Listen port (overrides server.port)")
	cmd.Flags().StringVar(&driver, "store", "", "Store driver: mongo or memory (overrides store.driver)")

	return cmd
}
