package config

import "time"

const (
	DefaultServerHost = "0.0.0.0"
	DefaultServerPort = 8080
	DefaultServerMode = "release"

	DefaultDBHost = "localhost"
	DefaultDBPort = 5432
	DefaultDBName = "chemcheck"

	DefaultRedisAddr = "localhost:6379"
	DefaultRedisMode = "standalone"

	DefaultKafkaBroker  = "localhost:9092"
	DefaultKafkaGroupID = "chemcheck-worker"

	DefaultMinIOEndpoint = "localhost:9000"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultMetricsNamespace = "chemcheck"
	DefaultMetricsPath      = "/metrics"

	DefaultMaxInputLength   = 4096
	DefaultMaxBatchSize     = 100
	DefaultBatchConcurrency = 8
	DefaultHistoryLimit     = 50
)

// ApplyDefaults fills every zero-value field in cfg with the service default.
// Fields that have already been set are left unchanged so that explicit
// configuration always wins.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// Server
	if cfg.Server.Host == "" {
		cfg.Server.Host = DefaultServerHost
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30 * time.Second
	}
	if cfg.Server.MaxBodySize == 0 {
		cfg.Server.MaxBodySize = 1 << 20
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 15 * time.Second
	}
	if cfg.Server.RateLimitRPS > 0 && cfg.Server.RateLimitBurst == 0 {
		cfg.Server.RateLimitBurst = int(2 * cfg.Server.RateLimitRPS)
	}

	// Log
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}

	// Database
	if cfg.Database.Host == "" {
		cfg.Database.Host = DefaultDBHost
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = DefaultDBPort
	}
	if cfg.Database.Database == "" {
		cfg.Database.Database = DefaultDBName
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}

	// Redis. DB 0 is both a valid explicit value and the default.
	if cfg.Redis.VerdictTTL == 0 {
		cfg.Redis.VerdictTTL = time.Hour
	}
	if cfg.Redis.Mode == "" {
		cfg.Redis.Mode = DefaultRedisMode
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}

	// Kafka
	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{DefaultKafkaBroker}
	}
	if cfg.Kafka.GroupID == "" {
		cfg.Kafka.GroupID = DefaultKafkaGroupID
	}

	// MinIO
	if cfg.MinIO.Endpoint == "" {
		cfg.MinIO.Endpoint = DefaultMinIOEndpoint
	}

	// Metrics
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}

	// Checker
	if cfg.Checker.MaxInputLength == 0 {
		cfg.Checker.MaxInputLength = DefaultMaxInputLength
	}
	if cfg.Checker.MaxBatchSize == 0 {
		cfg.Checker.MaxBatchSize = DefaultMaxBatchSize
	}
	if cfg.Checker.BatchConcurrency == 0 {
		cfg.Checker.BatchConcurrency = DefaultBatchConcurrency
	}
	if cfg.Checker.HistoryLimit == 0 {
		cfg.Checker.HistoryLimit = DefaultHistoryLimit
	}
	if cfg.Checker.RequestTimeout == 0 {
		cfg.Checker.RequestTimeout = 30 * time.Second
	}

	// Worker
	if cfg.Worker.MaxRetries == 0 {
		cfg.Worker.MaxRetries = 3
	}
	if cfg.Worker.RetryBackoff == 0 {
		cfg.Worker.RetryBackoff = 500 * time.Millisecond
	}
	if cfg.Worker.MaxBackoff == 0 {
		cfg.Worker.MaxBackoff = 10 * time.Second
	}
	if cfg.Worker.Source == "" {
		cfg.Worker.Source = "chemcheck-worker"
	}
}

// Default returns a Config with every default applied.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
