// Command apiserver serves the checker over HTTP.
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
	"github.com/turtacn/ChemCheck/internal/infrastructure/monitoring/logging"
	httpserver "github.com/turtacn/ChemCheck/internal/interfaces/http"
	"github.com/turtacn/ChemCheck/internal/interfaces/http/handlers"
	"github.com/turtacn/ChemCheck/internal/interfaces/http/middleware"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to configuration file (default: environment only)")
	port := flag.Int("port", 0, "HTTP port (overrides config)")
	flag.Parse()

	if err := run(*configPath, *port); err != nil {
		fmt.Fprintf(os.Stderr, "apiserver: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, port int) error {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return err
	}
	if port > 0 {
		cfg.Server.Port = port
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	logger = logger.Named("apiserver")
	logger.Info("starting ChemCheck API server",
		logging.String("version", version),
		logging.String("addr", cfg.Server.Addr()))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	infra, err := bootstrap.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer infra.Close()

	svc := checker.NewService(bootstrap.CheckerConfig(cfg, "apiserver"), logger, infra.ServiceOptions()...)
	srv := httpserver.NewServer(cfg.Server, buildRouter(cfg, infra, svc, logger), logger)

	if configPath != "" {
		watchLogLevel(configPath, logger)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutdown signal received")
	return srv.Stop(context.Background())
}

func buildRouter(cfg *config.Config, infra *bootstrap.Infrastructure, svc checker.Service, logger logging.Logger) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	var checks []handlers.HealthChecker
	for _, c := range infra.HealthChecks() {
		checks = append(checks, handlers.CheckFunc(c.Name, c.Check))
	}

	rc := httpserver.RouterConfig{
		CheckHandler:  handlers.NewCheckHandler(svc, logger),
		HealthHandler: handlers.NewHealthHandler(version, checks...),
		Logger:        logger,
		Metrics:       infra.Metrics,
		Collector:     infra.Collector,
		MetricsPath:   cfg.Metrics.Path,
		Logging:       middleware.DefaultLoggingConfig(),
		MaxBodySize:   cfg.Server.MaxBodySize,

		RequestTimeout: cfg.Checker.RequestTimeout,
	}
	if len(cfg.Server.AllowedOrigins) > 0 {
		cors := middleware.DefaultCORSConfig()
		cors.AllowedOrigins = cfg.Server.AllowedOrigins
		cors.AllowWildcard = true
		rc.CORS = &cors
	}
	if cfg.Server.RateLimitRPS > 0 {
		rl := middleware.DefaultRateLimitConfig()
		rl.RequestsPerSecond = cfg.Server.RateLimitRPS
		rl.BurstSize = cfg.Server.RateLimitBurst
		rc.RateLimit = rl
		rc.RateLimiter = middleware.NewTokenBucketLimiter(rl.RequestsPerSecond, rl.BurstSize, rl.CleanupInterval)
	}
	return httpserver.NewRouter(rc)
}

// watchLogLevel applies log level changes from the config file without a
// restart. Other settings are read once at startup.
func watchLogLevel(configPath string, logger logging.Logger) {
	err := config.Watch(configPath,
		func(next *config.Config) {
			if logging.SetLevel(logger, next.Log.Level) {
				logger.Info("log level updated", logging.String("level", next.Log.Level))
			}
		},
		func(err error) { logger.Warn("configuration reload failed", logging.Err(err)) })
	if err != nil {
		logger.Warn("configuration watch disabled", logging.Err(err))
	}
}
