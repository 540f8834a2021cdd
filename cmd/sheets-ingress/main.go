// cmd/sheets-ingress/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/David-Botos/sheets-ingress/pkg/config"
	"github.com/David-Botos/sheets-ingress/pkg/connector"
	"github.com/David-Botos/sheets-ingress/pkg/ingest"
	"github.com/David-Botos/sheets-ingress/pkg/logging"
	"github.com/David-Botos/sheets-ingress/pkg/sync"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "sheets-ingress: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// .env is optional; real deployments supply env vars directly
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
	if err != nil {
		return err
	}
	defer logger.Sync()

	mapping, err := config.LoadMapping(cfg.MappingFile)
	if err != nil {
		logger.Error("Failed to load sheet mapping", zap.Error(err))
		return err
	}

	logger.Info("Loaded sheet mapping",
		zap.String("file", cfg.MappingFile),
		zap.Int("groups", len(mapping)))

	if cfg.Schedule != "" {
		return runScheduled(cfg, mapping, logger)
	}

	return runOnce(context.Background(), cfg, mapping, logger)
}

// runOnce executes a single sync run with connectors scoped to the run and
// released on every exit path
func runOnce(ctx context.Context, cfg *config.Config, mapping config.Mapping, logger *zap.Logger) error {
	logger.Info("Starting sync job")

	factory := connector.NewConnectorFactory(cfg, logger)
	pg, sheets, err := factory.CreateAllConnectors(ctx)
	if err != nil {
		logger.Error("Failed to create connectors", zap.Error(err))
		return err
	}
	defer func() {
		pg.Close()
		logger.Info("PostgreSQL connection closed")
	}()

	if err := pg.Validate(); err != nil {
		logger.Error("PostgreSQL validation failed", zap.Error(err))
		return err
	}

	registry, err := ingest.NewSchemaRegistry(pg, logger)
	if err != nil {
		logger.Error("Failed to initialize schema registry", zap.Error(err))
		return err
	}

	schema := ingest.NewSchemaManager(pg, logger)
	engine := ingest.NewEngine(pg, schema, registry, logger)

	runner := sync.NewRunner(sheets, engine, mapping, logger)
	if _, err := runner.Run(ctx); err != nil {
		logger.Error("Sync run failed", zap.Error(err))
		return err
	}

	logger.Info("Sync job finished")
	return nil
}

// runScheduled keeps the process alive and re-runs the sync on a cron
// schedule until interrupted
func runScheduled(cfg *config.Config, mapping config.Mapping, logger *zap.Logger) error {
	scheduler := cron.New()

	_, err := scheduler.AddFunc(cfg.Schedule, func() {
		if err := runOnce(context.Background(), cfg, mapping, logger); err != nil {
			logger.Error("Scheduled sync run failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("invalid SYNC_SCHEDULE %q: %w", cfg.Schedule, err)
	}

	scheduler.Start()
	logger.Info("Scheduler started", zap.String("schedule", cfg.Schedule))

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	logger.Info("Shutting down scheduler")
	<-scheduler.Stop().Done()
	return nil
}
