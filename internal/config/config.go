// Package config defines the configuration structures for the ChemCheck
// services. Infrastructure sections reuse the config types owned by the
// infrastructure packages.
package config

import (
	"fmt"
	"time"

	"github.com/turtacn/ChemCheck/internal/infrastructure/database/postgres"
	"github.com/turtacn/ChemCheck/internal/infrastructure/database/redis"
	"github.com/turtacn/ChemCheck/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/ChemCheck/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemCheck/internal/infrastructure/storage/minio"
)

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	MaxBodySize     int64         `mapstructure:"max_body_size"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	// AllowedOrigins enables CORS for the listed origins; "*" allows any.
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	// RateLimitRPS of zero disables per-client rate limiting.
	RateLimitRPS   float64 `mapstructure:"rate_limit_rps"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
}

// Addr is the listen address.
func (s ServerConfig) Addr() string { return fmt.Sprintf("%s:%d", s.Host, s.Port) }

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
	Path      string `mapstructure:"path"`
}

// CheckerConfig bounds the work a single request may ask for.
type CheckerConfig struct {
	MaxInputLength   int           `mapstructure:"max_input_length"`
	MaxBatchSize     int           `mapstructure:"max_batch_size"`
	BatchConcurrency int           `mapstructure:"batch_concurrency"`
	HistoryLimit     int           `mapstructure:"history_limit"`
	RequestTimeout   time.Duration `mapstructure:"request_timeout"`
}

// WorkerConfig holds asynchronous check worker parameters.
type WorkerConfig struct {
	MaxRetries   int           `mapstructure:"max_retries"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
	MaxBackoff   time.Duration `mapstructure:"max_backoff"`
	Source       string        `mapstructure:"source"`
	// HealthPort serves /healthz, /readyz and metrics; 0 disables it.
	HealthPort int `mapstructure:"health_port"`
}

// Config is the root configuration.
type Config struct {
	Server   ServerConfig      `mapstructure:"server"`
	Log      logging.LogConfig `mapstructure:"log"`
	Database postgres.Config   `mapstructure:"database"`
	Redis    redis.Config      `mapstructure:"redis"`
	Kafka    kafka.Config      `mapstructure:"kafka"`
	MinIO    minio.Config      `mapstructure:"minio"`
	Metrics  MetricsConfig     `mapstructure:"metrics"`
	Checker  CheckerConfig     `mapstructure:"checker"`
	Worker   WorkerConfig      `mapstructure:"worker"`
}

// Validate performs semantic validation of the fully-populated Config.
// Disabled infrastructure sections are not validated.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}

	if c.Server.RateLimitRPS < 0 {
		return fmt.Errorf("config: server.rate_limit_rps must be >= 0, got %v", c.Server.RateLimitRPS)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	if c.Database.Enabled {
		if c.Database.Host == "" {
			return fmt.Errorf("config: database.host is required")
		}
		if c.Database.Port < 1 || c.Database.Port > 65535 {
			return fmt.Errorf("config: database.port %d is out of range [1, 65535]", c.Database.Port)
		}
		if c.Database.Database == "" {
			return fmt.Errorf("config: database.database is required")
		}
	}

	if c.Redis.Enabled {
		switch c.Redis.Mode {
		case "standalone":
			if c.Redis.Addr == "" {
				return fmt.Errorf("config: redis.addr is required")
			}
		case "cluster":
			if len(c.Redis.ClusterAddrs) == 0 {
				return fmt.Errorf("config: redis.cluster_addrs is required in cluster mode")
			}
		default:
			return fmt.Errorf("config: redis.mode %q is invalid; expected standalone|cluster", c.Redis.Mode)
		}
		if c.Redis.DB < 0 {
			return fmt.Errorf("config: redis.db must be >= 0, got %d", c.Redis.DB)
		}
	}

	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("config: kafka.brokers must contain at least one broker address")
		}
		if c.Kafka.GroupID == "" {
			return fmt.Errorf("config: kafka.group_id is required")
		}
	}

	if c.MinIO.Enabled && c.MinIO.Endpoint == "" {
		return fmt.Errorf("config: minio.endpoint is required")
	}

	if c.Checker.MaxInputLength < 1 {
		return fmt.Errorf("config: checker.max_input_length must be >= 1, got %d", c.Checker.MaxInputLength)
	}
	if c.Checker.MaxBatchSize < 1 {
		return fmt.Errorf("config: checker.max_batch_size must be >= 1, got %d", c.Checker.MaxBatchSize)
	}
	if c.Checker.BatchConcurrency < 1 {
		return fmt.Errorf("config: checker.batch_concurrency must be >= 1, got %d", c.Checker.BatchConcurrency)
	}
	if c.Worker.HealthPort < 0 || c.Worker.HealthPort > 65535 {
		return fmt.Errorf("config: worker.health_port %d is out of range [0, 65535]", c.Worker.HealthPort)
	}
	if c.Worker.MaxRetries < 0 {
		return fmt.Errorf("config: worker.max_retries must be >= 0, got %d", c.Worker.MaxRetries)
	}
	return nil
}
