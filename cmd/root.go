package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/vzahanych/weather-lookup/internal/config"
	"github.com/vzahanych/weather-lookup/internal/forecast"
	"github.com/vzahanych/weather-lookup/internal/geocoding"
	"github.com/vzahanych/weather-lookup/internal/lookup"
	"github.com/vzahanych/weather-lookup/internal/wmo"
	"github.com/vzahanych/weather-lookup/pkg/logger"
	"github.com/vzahanych/weather-lookup/pkg/telemetry"
	"go.uber.org/zap"
)

var (
	configPath string
	language   string

	log  *logger.Logger
	tele *telemetry.Telemetry
)

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "weather",
		Short: "City weather lookup",
		Long:  `Resolves a city name to coordinates and prints its current conditions and daily forecast.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initializeServices(cmd.Context())
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to configuration file (default: ./config.yaml)")
	cmd.PersistentFlags().StringVarP(&language, "lang", "l", "", "output language: en or zh (default from config)")

	cmd.AddCommand(serverCmd)
	cmd.AddCommand(searchCmd)
	cmd.AddCommand(interactiveCmd)
	cmd.AddCommand(codesCmd)

	return cmd
}

func Execute() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			if log != nil {
				log.Info("Received shutdown signal", zap.String("signal", sig.String()))
			}
			cancel()
		case <-ctx.Done():
		}
	}()

	return run(ctx, rootCmd())
}

// run executes root and always releases the logger and tracer afterwards,
// including when the command fails.
func run(ctx context.Context, root *cobra.Command) error {
	defer shutdownServices()
	return root.ExecuteContext(ctx)
}

func initializeServices(ctx context.Context) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if language != "" {
		cfg.Lookup.Language = language
		if err := config.Validate(cfg); err != nil {
			return err
		}
	}

	// Kept in an atomic so it can be swapped at runtime
	config.SetConfig(cfg)

	log, err = logger.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	tele, err = telemetry.New(ctx, cfg.Telemetry, cfg.Version)
	if err != nil {
		log.Warn("Failed to initialize telemetry", zap.Error(err))
		tele = telemetry.Disabled()
	}

	return nil
}

// shutdownServices flushes pending spans and log entries and clears the
// package state set up by initializeServices.
func shutdownServices() {
	if tele != nil {
		if err := tele.Shutdown(context.Background()); err != nil && log != nil {
			log.Warn("Telemetry shutdown failed", zap.Error(err))
		}
		tele = nil
	}
	if log != nil {
		_ = log.Sync()
		log = nil
	}
}

// newPipeline wires both HTTP clients into a lookup pipeline using the
// currently loaded configuration.
func newPipeline(cfg *config.Config) *lookup.Pipeline {
	timeout := cfg.Lookup.TimeoutDuration()

	geo := geocoding.NewClient(cfg.Geocoding, timeout, log.Logger, tele)
	fc := forecast.NewClient(cfg.Forecast, timeout, log.Logger, tele)

	return lookup.NewPipeline(geo, fc, wmo.For(cfg.Lookup.Language), log.Logger, tele)
}
