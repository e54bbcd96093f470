package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"github.com/vzahanych/weather-lookup/internal/config"
	"github.com/vzahanych/weather-lookup/internal/server"
	"go.uber.org/zap"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the weather lookup HTTP server",
	Long:  `Start the HTTP server exposing city weather searches, the weather code table, health checks and metrics.`,
	RunE:  runServer,
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg := config.GetConfig()

	log.Info("Starting weather lookup server",
		zap.String("config_path", configPath),
		zap.String("environment", cfg.Environment),
		zap.Bool("telemetry_enabled", tele.IsEnabled()),
		zap.Int("server_port", cfg.Server.Port))

	if cfg.Geocoding.APIKey == "" {
		log.Warn("Geocoding API key is not configured; searches will fail until it is set")
	}

	srv := server.NewServer(cfg, newPipeline(cfg), log.Logger, tele)

	errChan := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		log.Error("Server error", zap.Error(err))
		return err
	case <-cmd.Context().Done():
		log.Info("Shutting down server")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Error during server shutdown", zap.Error(err))
			return err
		}

		log.Info("Server shutdown complete")
		return nil
	}
}
