// Package bootstrap wires configuration into the infrastructure clients
// shared by the API server and the worker.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/turtacn/ChemCheck/internal/application/checker"
	"github.com/turtacn/ChemCheck/internal/config"
	"github.com/turtacn/ChemCheck/internal/infrastructure/database/postgres"
	"github.com/turtacn/ChemCheck/internal/infrastructure/database/postgres/repositories"
	"github.com/turtacn/ChemCheck/internal/infrastructure/database/redis"
	"github.com/turtacn/ChemCheck/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/ChemCheck/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemCheck/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/ChemCheck/internal/infrastructure/storage/minio"
)

// Infrastructure holds the clients for every enabled section. Disabled
// sections leave their field nil.
type Infrastructure struct {
	Collector prometheus.MetricsCollector
	Metrics   *prometheus.AppMetrics

	Postgres *postgres.Connection
	Redis    *redis.Client
	Cache    redis.Cache
	Producer *kafka.Producer
	MinIO    *minio.Client
	Reports  *minio.ReportStore

	logger  logging.Logger
	closers []func() error
}

// Open connects to every enabled dependency. On error the clients opened
// so far are closed.
func Open(ctx context.Context, cfg *config.Config, logger logging.Logger) (*Infrastructure, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	infra := &Infrastructure{logger: logger, Metrics: prometheus.NewNoopAppMetrics()}

	if cfg.Metrics.Enabled {
		collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
			Namespace:            cfg.Metrics.Namespace,
			EnableProcessMetrics: true,
			EnableGoMetrics:      true,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("metrics: %w", err)
		}
		infra.Collector = collector
		infra.Metrics = prometheus.NewAppMetrics(collector)
	}

	if cfg.Database.Enabled {
		conn, err := postgres.NewConnection(ctx, cfg.Database, logger.Named("postgres"))
		if err != nil {
			infra.Close()
			return nil, fmt.Errorf("postgres: %w", err)
		}
		infra.Postgres = conn
		infra.closers = append(infra.closers, conn.Close)

		if cfg.Database.AutoMigrate {
			if err := migrate(ctx, conn, logger); err != nil {
				infra.Close()
				return nil, fmt.Errorf("postgres migrations: %w", err)
			}
		}
	}

	if cfg.Redis.Enabled {
		client, err := redis.NewClient(ctx, cfg.Redis, logger.Named("redis"))
		if err != nil {
			infra.Close()
			return nil, fmt.Errorf("redis: %w", err)
		}
		infra.Redis = client
		infra.Cache = redis.NewRedisCache(client, logger.Named("cache"))
		infra.closers = append(infra.closers, client.Close)
	}

	if cfg.Kafka.Enabled {
		if cfg.Kafka.AutoCreateTopic {
			if err := ensureTopics(ctx, cfg.Kafka, logger); err != nil {
				infra.Close()
				return nil, fmt.Errorf("kafka topics: %w", err)
			}
		}
		producer, err := kafka.NewProducer(cfg.Kafka, logger.Named("kafka"))
		if err != nil {
			infra.Close()
			return nil, fmt.Errorf("kafka: %w", err)
		}
		infra.Producer = producer
		infra.closers = append(infra.closers, producer.Close)
	}

	if cfg.MinIO.Enabled {
		client, err := minio.NewClient(ctx, cfg.MinIO, logger.Named("minio"))
		if err != nil {
			infra.Close()
			return nil, fmt.Errorf("minio: %w", err)
		}
		infra.MinIO = client
		infra.Reports = minio.NewReportStore(client, logger.Named("reports"))
	}

	logger.Info("infrastructure initialized",
		logging.Bool("postgres", infra.Postgres != nil),
		logging.Bool("redis", infra.Redis != nil),
		logging.Bool("kafka", infra.Producer != nil),
		logging.Bool("minio", infra.MinIO != nil),
		logging.Bool("metrics", infra.Collector != nil))
	return infra, nil
}

func migrate(ctx context.Context, conn *postgres.Connection, logger logging.Logger) error {
	m, err := postgres.NewMigrator(ctx, conn.DB(), logger.Named("migrate"))
	if err != nil {
		return err
	}
	defer m.Close()
	return m.Up()
}

func ensureTopics(ctx context.Context, cfg kafka.Config, logger logging.Logger) error {
	tm, err := kafka.NewTopicManager(ctx, cfg, logger.Named("kafka"))
	if err != nil {
		return err
	}
	defer tm.Close()
	return tm.EnsureTopics(kafka.DefaultTopics())
}

// CheckerConfig maps the checker and redis sections onto checker.Config.
func CheckerConfig(cfg *config.Config, source string) checker.Config {
	return checker.Config{
		MaxInputLength:   cfg.Checker.MaxInputLength,
		MaxBatchSize:     cfg.Checker.MaxBatchSize,
		BatchConcurrency: cfg.Checker.BatchConcurrency,
		HistoryLimit:     cfg.Checker.HistoryLimit,
		VerdictTTL:       cfg.Redis.VerdictTTL,
		Source:           source,
	}
}

// ServiceOptions attaches every available collaborator to the checker.
func (i *Infrastructure) ServiceOptions() []checker.Option {
	opts := []checker.Option{checker.WithMetrics(i.Metrics)}
	if i.Postgres != nil {
		opts = append(opts, checker.WithRepository(
			repositories.NewPostgresSubmissionRepo(i.Postgres, i.logger.Named("submissions"), i.Metrics.RecordDBQuery)))
	}
	if i.Cache != nil {
		opts = append(opts, checker.WithCache(i.Cache))
	}
	if i.Producer != nil {
		opts = append(opts, checker.WithPublisher(i.Producer))
	}
	if i.Reports != nil {
		opts = append(opts, checker.WithReportArchive(i.Reports))
	}
	return opts
}

// NamedCheck is a dependency probe for readiness endpoints.
type NamedCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// HealthChecks lists a probe per connected dependency.
func (i *Infrastructure) HealthChecks() []NamedCheck {
	var checks []NamedCheck
	if i.Postgres != nil {
		checks = append(checks, NamedCheck{"postgres", i.Postgres.HealthCheck})
	}
	if i.Redis != nil {
		checks = append(checks, NamedCheck{"redis", i.Redis.Ping})
	}
	if i.MinIO != nil {
		checks = append(checks, NamedCheck{"minio", i.MinIO.HealthCheck})
	}
	return checks
}

// Close releases clients in reverse order of opening.
func (i *Infrastructure) Close() {
	for j := len(i.closers) - 1; j >= 0; j-- {
		if err := i.closers[j](); err != nil {
			i.logger.Warn("failed to close client", logging.Err(err))
		}
	}
	i.closers = nil
}
