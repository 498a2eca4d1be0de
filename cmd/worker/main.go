// Command worker grades answers queued on Kafka and publishes the verdicts.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/ChemCheck/internal/application/checker"
	"github.com/turtacn/ChemCheck/internal/bootstrap"
	"github.com/turtacn/ChemCheck/internal/config"
	"github.com/turtacn/ChemCheck/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/ChemCheck/internal/infrastructure/monitoring/logging"
	httpserver "github.com/turtacn/ChemCheck/internal/interfaces/http"
	"github.com/turtacn/ChemCheck/internal/interfaces/http/handlers"
	"github.com/turtacn/ChemCheck/internal/interfaces/http/middleware"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to configuration file (default: environment only)")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "worker: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return err
	}
	if !cfg.Kafka.Enabled {
		return fmt.Errorf("kafka must be enabled to run the worker")
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	logger = logger.Named("worker")
	logger.Info("starting ChemCheck worker",
		logging.String("version", version),
		logging.String("source", cfg.Worker.Source))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	infra, err := bootstrap.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer infra.Close()

	consumer, err := kafka.NewConsumer(cfg.Kafka, []string{kafka.TopicCheckRequested}, kafka.RetryPolicy{
		MaxRetries:      cfg.Worker.MaxRetries,
		Backoff:         cfg.Worker.RetryBackoff,
		MaxBackoff:      cfg.Worker.MaxBackoff,
		DeadLetterTopic: kafka.TopicDeadLetter,
	}, infra.Producer, logger.Named("consumer"))
	if err != nil {
		return fmt.Errorf("kafka consumer: %w", err)
	}

	svc := checker.NewService(bootstrap.CheckerConfig(cfg, cfg.Worker.Source), logger, infra.ServiceOptions()...)

	if cfg.Worker.HealthPort > 0 {
		srv := healthServer(cfg, infra, logger)
		go func() {
			if err := srv.Start(); err != nil {
				logger.Error("health server stopped", logging.Err(err))
			}
		}()
		defer func() { _ = srv.Stop(context.Background()) }()
	}

	err = checker.NewWorker(svc, consumer, logger).Run(ctx)
	stats := consumer.Stats()
	logger.Info("worker stopped",
		logging.Int64("processed", stats.Processed),
		logging.Int64("failed", stats.Failed),
		logging.Int64("dead_lettered", stats.DeadLettered))
	return err
}

// healthServer exposes probes and metrics on the worker health port. It
// mounts no API routes.
func healthServer(cfg *config.Config, infra *bootstrap.Infrastructure, logger logging.Logger) *httpserver.Server {
	gin.SetMode(gin.ReleaseMode)

	var checks []handlers.HealthChecker
	for _, c := range infra.HealthChecks() {
		checks = append(checks, handlers.CheckFunc(c.Name, c.Check))
	}
	engine := httpserver.NewRouter(httpserver.RouterConfig{
		HealthHandler: handlers.NewHealthHandler(version, checks...),
		Logger:        logger,
		Collector:     infra.Collector,
		MetricsPath:   cfg.Metrics.Path,
		Logging:       middleware.DefaultLoggingConfig(),
	})

	serverCfg := cfg.Server
	serverCfg.Port = cfg.Worker.HealthPort
	return httpserver.NewServer(serverCfg, engine, logger.Named("health"))
}
