package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go-cover-resolver/internal/config"
	"go-cover-resolver/internal/container"
	"go-cover-resolver/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

func newServeCmd() *cobra.Command {
	var host, port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the cover resolver HTTP service",
		Example: `  # Listen on the default 0.0.0.0:5001
  coverapi serve

  # Serve a catalog stored next to the binary
  CATALOG_SOURCE=file CATALOG_LOCATION=./catalog.yaml coverapi serve --port 8080`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, host, port)
			if err != nil {
				return err
			}

			if gin.Mode() == gin.DebugMode && logger.Logger.GetLevel() < logrus.DebugLevel {
				gin.SetMode(gin.ReleaseMode)
			}

			c, err := container.NewContainer(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			server := &http.Server{
				Addr:         cfg.ServerAddress(),
				Handler:      c.Handler(),
				ReadTimeout:  cfg.RequestTimeout,
				WriteTimeout: cfg.RequestTimeout,
			}

			serverErr := make(chan error, 1)
			go func() {
				logger.WithFields(logrus.Fields{
					"address":      cfg.ServerAddress(),
					"timeout":      cfg.RequestTimeout,
					"total_images": c.Catalog().Len(),
				}).Info("Starting HTTP server")

				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			select {
			case <-cmd.Context().Done():
				logger.Info("Shutting down server...")

				ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()

				if err := server.Shutdown(ctx); err != nil {
					logger.WithError(err).Error("Server forced to shutdown")
					return err
				}
				logger.Info("Server exited")
				return nil
			case err := <-serverErr:
				logger.WithError(err).Error("Failed to start server")
				return err
			}
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "Address to bind; overrides $HOST")
	cmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on; overrides $PORT")

	return cmd
}

// loadConfig reads the environment and applies command-line overrides.
func loadConfig(cmd *cobra.Command, host, port string) (*config.Config, error) {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cmd.Flags().Changed("host") {
		cfg.Host = host
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = port
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}
