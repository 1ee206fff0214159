package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/oklog/run"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/yairfalse/vakta/config"
	"github.com/yairfalse/vakta/ingest"
	"github.com/yairfalse/vakta/server"
	"github.com/yairfalse/vakta/storage"
	"github.com/yairfalse/vakta/telemetry"
)

var (
	serveListenAddr  string
	serveMetricsAddr string
	serveStorageDir  string
	serveDebug       bool
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the risk scoring HTTP service",
	Long: `Run Vakta as an HTTP service.

The service ingests activity events, scores each one against role
policies, schedules and baselines, persists the event stream, and
raises alerts for high-risk activity.

Endpoints:
- POST /v1/activity             ingest and score one event
- GET  /v1/alerts               query alerts (subject_id, level, from, to)
- GET  /v1/subjects/{id}/risk   current risk posture for a subject
- GET  /healthz                 health check
- Prometheus metrics on the metrics listener's /metrics endpoint

Shuts down gracefully on SIGTERM/SIGINT.`,
	Example: `  vakta serve                              # Run with defaults
  vakta serve --config /etc/vakta.yaml     # Load a config file
  vakta serve --listen :8080 --metrics :9090
  vakta serve --storage /var/lib/vakta`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveListenAddr, "listen", "", "API listen address (overrides config)")
	serveCmd.Flags().StringVar(&serveMetricsAddr, "metrics", "", "Metrics listen address (overrides config)")
	serveCmd.Flags().StringVar(&serveStorageDir, "storage", "", "Storage directory (overrides config)")
	serveCmd.Flags().BoolVar(&serveDebug, "debug", false, "Enable debug logging")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := serveConfig()
	if err != nil {
		return err
	}

	if serveDebug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	logger := telemetry.NewLogger(cfg.Telemetry.ServiceName)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	shutdownOTEL, err := telemetry.InitOTEL(ctx, telemetry.Config{
		ServiceName:    cfg.Telemetry.ServiceName,
		ServiceVersion: version,
		OTELEndpoint:   cfg.Telemetry.OTELEndpoint,
		Insecure:       cfg.Telemetry.Insecure,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := shutdownOTEL(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("telemetry shutdown failed")
		}
	}()

	store, err := storage.Open(cfg.Storage.Dir)
	if err != nil {
		return fmt.Errorf("failed to open storage at %s: %w", cfg.Storage.Dir, err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error().Err(err).Msg("storage close failed")
		}
	}()

	ing := ingest.New(store, cfg.Detection)
	api := server.New(cfg.Server, ing, store)

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.HandlerFor(
		telemetry.PrometheusRegistry,
		promhttp.HandlerOpts{},
	))
	metricsSrv := &http.Server{
		Addr:        cfg.Server.MetricsAddr,
		Handler:     metricsMux,
		ReadTimeout: cfg.Server.ReadTimeout,
	}

	var group run.Group

	group.Add(func() error {
		logger.Info().
			Str("addr", cfg.Server.ListenAddr).
			Str("storage", cfg.Storage.Dir).
			Msg("starting api server")
		return api.ListenAndServe()
	}, func(error) {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := api.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("api shutdown failed")
		}
	})

	group.Add(func() error {
		logger.Info().Str("addr", cfg.Server.MetricsAddr).Msg("starting metrics server")
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	}, func(error) {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("metrics shutdown failed")
		}
	})

	group.Add(func() error {
		<-ctx.Done()
		logger.Info().Msg("shutdown signal received")
		return ctx.Err()
	}, func(error) {
		cancel()
	})

	err = group.Run()
	if err != nil && err != context.Canceled {
		return err
	}
	logger.Info().Msg("shutdown complete")
	return nil
}

// serveConfig layers command-line overrides over the loaded config
func serveConfig() (*config.Config, error) {
	cfg, err := loadServeBase()
	if err != nil {
		return nil, err
	}

	if serveListenAddr != "" {
		cfg.Server.ListenAddr = serveListenAddr
	}
	if serveMetricsAddr != "" {
		cfg.Server.MetricsAddr = serveMetricsAddr
	}
	if serveStorageDir != "" {
		cfg.Storage.Dir = serveStorageDir
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadServeBase() (*config.Config, error) {
	if configPath == "" {
		return config.Default(), nil
	}
	if _, err := os.Stat(configPath); err != nil {
		return nil, fmt.Errorf("config file %s: %w", configPath, err)
	}
	return config.Load(configPath)
}
