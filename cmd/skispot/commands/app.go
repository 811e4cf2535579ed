package commands

import (
	"context"
	"fmt"

	"github.com/nolanlove/skiapp/pkg/config"
	"github.com/nolanlove/skiapp/pkg/stores"
	"github.com/nolanlove/skiapp/pkg/telemetry"
)

// loadConfig loads configuration and applies global flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}
	if jsonOutput {
		cfg.Telemetry.Logging.Format = "json"
	}

	return cfg, nil
}

// buildTelemetry constructs the logger and metrics from configuration.
func buildTelemetry(cfg *config.Config) (*telemetry.Logger, *telemetry.Metrics, error) {
	logger, err := telemetry.NewLogger(cfg.Telemetry.Logging)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}

	metrics, err := telemetry.NewMetrics(cfg.Telemetry.Metrics)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create metrics: %w", err)
	}

	return logger, metrics, nil
}

// buildTracer constructs the tracer from configuration. Callers own
// the shutdown.
func buildTracer(cfg *config.Config) (*telemetry.Tracer, error) {
	tracer, err := telemetry.NewTracer(
		cfg.Telemetry.Tracing,
		cfg.Telemetry.ServiceName,
		cfg.Telemetry.ServiceVersion,
		cfg.Telemetry.Environment,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}
	return tracer, nil
}

// openStore opens the SQLite store and runs pending migrations.
func openStore(ctx context.Context, cfg *config.Config) (stores.Store, error) {
	store, err := stores.NewSQLiteStore(stores.Config{
		Path:            cfg.Store.Path,
		MaxOpenConns:    cfg.Store.MaxOpenConns,
		MaxIdleConns:    cfg.Store.MaxIdleConns,
		ConnMaxLifetime: cfg.Store.ConnMaxLifetime.Std(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create store: %w", err)
	}

	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}
